package installer

// MockRunner implements Runner for testing.
// RunFunc controls the result; when nil every command succeeds.
type MockRunner struct {
	RunFunc func(argv []string) (int, error)
	Calls   [][]string
}

// Run records argv and delegates to RunFunc
func (m *MockRunner) Run(argv []string) (int, error) {
	m.Calls = append(m.Calls, append([]string(nil), argv...))
	if m.RunFunc != nil {
		return m.RunFunc(argv)
	}
	return 0, nil
}

// Ensure MockRunner implements Runner interface
var _ Runner = (*MockRunner)(nil)

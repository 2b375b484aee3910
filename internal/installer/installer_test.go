package installer

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/obentoo/pipinside/internal/common/output"
	"github.com/obentoo/pipinside/internal/pipcmd"
)

func newTestInstaller(runner *MockRunner, registry Registry, opts ...Option) (*Installer, *bytes.Buffer) {
	output.NoColor()
	buf := new(bytes.Buffer)
	opts = append([]Option{WithRunner(runner), WithRegistry(registry), WithOutput(buf)}, opts...)
	return New("/usr/bin/python3", opts...), buf
}

func TestInstallRunsPipUnderInterpreter(t *testing.T) {
	runner := &MockRunner{}
	inst, buf := newTestInstaller(runner, NewStaticRegistry())

	opts := pipcmd.NewOptions().SetFlag("user", true)
	code, err := inst.Install([]string{"some_pkg"}, opts)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	want := [][]string{{"/usr/bin/python3", "-m", "pip", "install", "--user", "some_pkg"}}
	if !reflect.DeepEqual(runner.Calls, want) {
		t.Errorf("runner calls = %q, want %q", runner.Calls, want)
	}
	if got := buf.String(); got != "Trying  pip install --user some_pkg  ...\n" {
		t.Errorf("output = %q", got)
	}
}

func TestInstallReportsAlreadyLoadedOnSuccess(t *testing.T) {
	registry := NewStaticRegistry(
		Module{Name: "numpy", Path: "/site/numpy/__init__.py"},
		Module{Name: "requests", Path: "/site/requests/__init__.py"},
		Module{Name: "yaml"},
	)
	runner := &MockRunner{}
	inst, buf := newTestInstaller(runner, registry)

	code, err := inst.Install([]string{"pip install -U requests yaml flask"}, nil)
	if err != nil || code != 0 {
		t.Fatalf("Install = %d, %v", code, err)
	}

	got := buf.String()
	if !strings.Contains(got, "already loaded") {
		t.Fatalf("missing restart hint: %q", got)
	}
	if !strings.Contains(got, "  requests (/site/requests/__init__.py)\n  yaml\n") {
		t.Errorf("already-loaded list wrong: %q", got)
	}
	if strings.Contains(got, "numpy") {
		t.Errorf("numpy is not a target and must not be listed: %q", got)
	}
}

func TestInstallFailureSkipsAlreadyLoaded(t *testing.T) {
	runner := &MockRunner{
		RunFunc: func(argv []string) (int, error) { return 1, nil },
	}
	inst, buf := newTestInstaller(runner, ModuleNames("requests"))

	code, err := inst.Install([]string{"requests"}, nil)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	var subErr *SubprocessError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected *SubprocessError, got %v", err)
	}
	if subErr.ExitCode != 1 {
		t.Errorf("SubprocessError.ExitCode = %d, want 1", subErr.ExitCode)
	}
	if !errors.Is(err, ErrSubprocess) {
		t.Errorf("error should wrap ErrSubprocess: %v", err)
	}
	if strings.Contains(buf.String(), "already loaded") {
		t.Errorf("already-loaded list printed after failure: %q", buf.String())
	}
}

func TestInstallStartFailure(t *testing.T) {
	runner := &MockRunner{
		RunFunc: func(argv []string) (int, error) { return -1, errors.Join(ErrStart, errors.New("no such file")) },
	}
	inst, _ := newTestInstaller(runner, NewStaticRegistry())

	_, err := inst.Install([]string{"requests"}, nil)
	if !errors.Is(err, ErrStart) {
		t.Errorf("expected ErrStart, got %v", err)
	}
}

func TestInstallInvalidArgumentRunsNothing(t *testing.T) {
	runner := &MockRunner{}
	inst, buf := newTestInstaller(runner, NewStaticRegistry())

	opts := pipcmd.NewOptions().SetFlag("no_index", false)
	_, err := inst.Install([]string{"pkg"}, opts)
	if !errors.Is(err, pipcmd.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(runner.Calls) != 0 {
		t.Errorf("runner should not be called, got %q", runner.Calls)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be printed, got %q", buf.String())
	}
}

func TestInstallUnknownOptionIsParseError(t *testing.T) {
	runner := &MockRunner{}
	inst, _ := newTestInstaller(runner, NewStaticRegistry())

	_, err := inst.Install([]string{"pip install --definitely-not-an-option pkg"}, nil)
	if !errors.Is(err, pipcmd.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if len(runner.Calls) != 0 {
		t.Errorf("runner should not be called")
	}
}

// driftParser pretends pip's grammar changed shape
type driftParser struct{}

func (driftParser) Parse(tokens []string) (*pipcmd.Parsed, error) {
	return &pipcmd.Parsed{Args: tokens[1:]}, nil
}

func (driftParser) MinPipVersion() string { return "0" }

func TestInstallDetectsParserDrift(t *testing.T) {
	runner := &MockRunner{}
	inst, _ := newTestInstaller(runner, NewStaticRegistry(), WithParser(driftParser{}))

	_, err := inst.Install([]string{"requests"}, nil)
	if !errors.Is(err, ErrParserDrift) {
		t.Fatalf("expected ErrParserDrift, got %v", err)
	}
	if len(runner.Calls) != 0 {
		t.Errorf("runner should not be called")
	}
}

func TestInstallRegistryError(t *testing.T) {
	registryErr := errors.New("registry gone")
	registry := RegistryFunc(func() (map[string]Module, error) { return nil, registryErr })
	inst, _ := newTestInstaller(&MockRunner{}, registry)

	_, err := inst.Install([]string{"requests"}, nil)
	if !errors.Is(err, registryErr) {
		t.Errorf("expected registry error, got %v", err)
	}
}

func TestPlan(t *testing.T) {
	defaults := pipcmd.NewOptions().SetFlag("user", true).SetString("index_url", "https://mirror/simple")

	tests := []struct {
		name    string
		args    []string
		opts    *pipcmd.Options
		command []string
		targets []string
		loaded  []string
	}{
		{
			name:    "defaults precede call options",
			args:    []string{"a", "b"},
			opts:    pipcmd.NewOptions().SetFlag("upgrade", true),
			command: []string{"pip", "install", "--user", "--index-url", "https://mirror/simple", "--upgrade", "a", "b"},
			targets: []string{"a", "b"},
			loaded:  []string{"a"},
		},
		{
			name:    "call options override defaults in place",
			args:    []string{"b"},
			opts:    pipcmd.NewOptions().SetString("index_url", "https://other/simple").SetFlag("user", true),
			command: []string{"pip", "install", "--user", "--index-url", "https://other/simple", "b"},
			targets: []string{"b"},
			loaded:  []string{},
		},
		{
			name:    "full command ignores defaults",
			args:    []string{"pip install -r reqs.txt a a"},
			command: []string{"pip", "install", "-r", "reqs.txt", "a", "a"},
			targets: []string{"a"},
			loaded:  []string{"a"},
		},
		{
			name:    "option values are not targets",
			args:    []string{"pip install --target /tmp/t a"},
			command: []string{"pip", "install", "--target", "/tmp/t", "a"},
			targets: []string{"a"},
			loaded:  []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := New("python", WithDefaults(defaults), WithRegistry(ModuleNames("a", "/tmp/t")))

			plan, err := inst.Plan(tt.args, tt.opts)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if !reflect.DeepEqual(plan.Command, tt.command) {
				t.Errorf("Command = %q, want %q", plan.Command, tt.command)
			}
			if !reflect.DeepEqual(plan.Targets, tt.targets) {
				t.Errorf("Targets = %q, want %q", plan.Targets, tt.targets)
			}
			loaded := make([]string, 0, len(plan.AlreadyLoaded))
			for name := range plan.AlreadyLoaded {
				loaded = append(loaded, name)
			}
			if !reflect.DeepEqual(loaded, tt.loaded) {
				t.Errorf("AlreadyLoaded = %q, want %q", loaded, tt.loaded)
			}
		})
	}
}

func TestPlanArgv(t *testing.T) {
	plan := &Plan{Command: []string{"pip", "install", "x"}}
	want := []string{"/py", "-m", "pip", "install", "x"}
	if got := plan.Argv("/py"); !reflect.DeepEqual(got, want) {
		t.Errorf("Argv = %q, want %q", got, want)
	}
}

func TestSubprocessErrorMessage(t *testing.T) {
	err := &SubprocessError{Command: []string{"pip", "install", "a b"}, ExitCode: 2}
	if got := err.Error(); got != "pip install 'a b': exit status 2" {
		t.Errorf("Error() = %q", got)
	}
}

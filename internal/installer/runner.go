package installer

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

var ErrStart = errors.New("failed to start command")

// Runner executes a command line and reports the child's exit code
type Runner interface {
	// Run starts argv[0] with the remaining arguments and waits for it.
	// A child that exits non-zero is not an error; the code is returned as is.
	Run(argv []string) (int, error)
}

// ProcessRunner runs commands as child processes with the given streams
type ProcessRunner struct {
	workDir string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewProcessRunner creates a ProcessRunner that inherits the current
// process's standard streams. An empty workDir means the current directory.
func NewProcessRunner(workDir string) *ProcessRunner {
	return &ProcessRunner{
		workDir: workDir,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run executes argv and waits for it to finish
func (r *ProcessRunner) Run(argv []string) (int, error) {
	if len(argv) == 0 {
		return -1, errors.Join(ErrStart, errors.New("empty command"))
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = r.workDir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, errors.Join(ErrStart, err)
}

var _ Runner = (*ProcessRunner)(nil)

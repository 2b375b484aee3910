// Package interpreter locates the Python executable pip runs under and
// checks that pip is usable for it.
package interpreter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrPythonNotFound = errors.New("python interpreter not found")
	ErrPipUnavailable = errors.New("pip is not available")
	ErrPipTooOld      = errors.New("pip is too old")
)

// EnvPython names the environment variable that overrides interpreter lookup
const EnvPython = "PIPIN_PYTHON"

// Overridable for tests
var (
	lookPath = exec.LookPath
	getenv   = os.Getenv
)

// runCombined executes a command and returns stdout, stderr, and any error
var runCombined = func(name string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(name, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err = cmd.Run()
	return stdoutBuf.String(), stderrBuf.String(), err
}

// Interpreter is a Python executable with a working pip
type Interpreter struct {
	Path       string
	PipVersion string
}

// Detect locates the interpreter and verifies its pip is at least minPip.
// An empty minPip skips the version check.
func Detect(explicit, minPip string) (*Interpreter, error) {
	path, err := Locate(explicit)
	if err != nil {
		return nil, err
	}

	version, err := PipVersion(path)
	if err != nil {
		return nil, err
	}

	if minPip != "" && !AtLeast(version, minPip) {
		return nil, fmt.Errorf("%w: %s has pip %s, need %s or newer", ErrPipTooOld, path, version, minPip)
	}

	return &Interpreter{Path: path, PipVersion: version}, nil
}

// Locate returns the Python executable to use.
// Priority: explicit argument > $PIPIN_PYTHON > active $VIRTUAL_ENV > python3/python on PATH
func Locate(explicit string) (string, error) {
	if explicit == "" {
		explicit = getenv(EnvPython)
	}
	if explicit != "" {
		return resolveExplicit(explicit)
	}

	if venv := getenv("VIRTUAL_ENV"); venv != "" {
		candidate := filepath.Join(venv, binDir(), pythonExe())
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}

	for _, name := range []string{"python3", "python"} {
		path, err := lookPath(name)
		if err != nil {
			continue
		}
		// Windows ships store placeholders named python.exe
		if strings.Contains(path, `Microsoft\WindowsApps`) {
			continue
		}
		return path, nil
	}

	return "", fmt.Errorf("%w: tried python3 and python on PATH", ErrPythonNotFound)
}

// resolveExplicit resolves a user-supplied interpreter name or path
func resolveExplicit(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		if !isExecutableFile(name) {
			return "", fmt.Errorf("%w: %s", ErrPythonNotFound, name)
		}
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", err
		}
		return abs, nil
	}

	path, err := lookPath(name)
	if err != nil {
		return "", errors.Join(ErrPythonNotFound, err)
	}
	return path, nil
}

// PipVersion runs "<python> -m pip --version" and returns pip's version
func PipVersion(python string) (string, error) {
	stdout, stderr, err := runCombined(python, "-m", "pip", "--version")
	if err != nil {
		msg := fmt.Sprintf("please install pip for the current interpreter (%s)", python)
		if stderr = strings.TrimSpace(stderr); stderr != "" {
			msg += ": " + stderr
		}
		return "", fmt.Errorf("%w: %s", ErrPipUnavailable, msg)
	}

	version, err := ParsePipVersion(stdout)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPipUnavailable, err)
	}
	return version, nil
}

func binDir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

func pythonExe() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}
	return "python"
}

// isExecutableFile checks that path exists and is not a directory
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}

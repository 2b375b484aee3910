// Package installer runs pip install for a built command line and reports
// targets that the host process had already imported.
package installer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/obentoo/pipinside/internal/common/logger"
	"github.com/obentoo/pipinside/internal/common/output"
	"github.com/obentoo/pipinside/internal/pipcmd"
)

var (
	ErrParserDrift = errors.New("parsed command does not start with pip install")
	ErrSubprocess  = errors.New("pip install failed")
)

// SubprocessError reports a pip child that exited non-zero
type SubprocessError struct {
	Command  []string
	ExitCode int
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("%s: exit status %d", pipcmd.FormatCommand(e.Command), e.ExitCode)
}

// Unwrap returns ErrSubprocess
func (e *SubprocessError) Unwrap() error {
	return ErrSubprocess
}

// Installer invokes pip for one interpreter
type Installer struct {
	python   string
	parser   pipcmd.Parser
	registry Registry
	runner   Runner
	out      io.Writer
	defaults *pipcmd.Options
}

// Option configures an Installer
type Option func(*Installer)

// WithParser sets the pip grammar adapter used to extract targets
func WithParser(p pipcmd.Parser) Option {
	return func(i *Installer) { i.parser = p }
}

// WithRegistry sets the provider of already-loaded modules
func WithRegistry(r Registry) Option {
	return func(i *Installer) { i.registry = r }
}

// WithRunner sets how the pip child is executed
func WithRunner(r Runner) Option {
	return func(i *Installer) { i.runner = r }
}

// WithOutput sets where diagnostics are written
func WithOutput(w io.Writer) Option {
	return func(i *Installer) { i.out = w }
}

// WithDefaults sets options applied beneath every call's options
func WithDefaults(opts *pipcmd.Options) Option {
	return func(i *Installer) { i.defaults = opts }
}

// New creates an Installer that runs "<python> -m pip install ...".
// Without options it parses with PipInstallParser, sees no loaded modules,
// runs pip with inherited stdio and writes diagnostics to stdout.
func New(python string, opts ...Option) *Installer {
	i := &Installer{
		python:   python,
		parser:   pipcmd.NewPipInstallParser(),
		registry: NewStaticRegistry(),
		runner:   NewProcessRunner(""),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Python returns the interpreter path pip runs under
func (i *Installer) Python() string {
	return i.python
}

// Plan is what Install would do for a call, computed without running pip
type Plan struct {
	Command       []string
	Targets       []string
	AlreadyLoaded map[string]Module
}

// Argv returns the full child command line
func (p *Plan) Argv(python string) []string {
	argv := make([]string, 0, len(p.Command)+2)
	argv = append(argv, python, "-m")
	return append(argv, p.Command...)
}

// Plan builds and parses the command and snapshots already-loaded targets
func (i *Installer) Plan(args []string, opts *pipcmd.Options) (*Plan, error) {
	cmd, err := pipcmd.Build(args, i.defaults.Merge(opts))
	if err != nil {
		return nil, err
	}

	parsed, err := i.parser.Parse(cmd)
	if err != nil {
		return nil, err
	}

	prefix := pipcmd.Prefix()
	if len(parsed.Args) < len(prefix) || parsed.Args[0] != prefix[0] || parsed.Args[1] != prefix[1] {
		return nil, fmt.Errorf("%w: got %q", ErrParserDrift, parsed.Args)
	}

	targets := make(map[string]struct{})
	for _, arg := range parsed.Args[len(prefix):] {
		targets[arg] = struct{}{}
	}

	loaded, err := i.registry.Loaded()
	if err != nil {
		return nil, fmt.Errorf("failed to read loaded modules: %w", err)
	}

	plan := &Plan{
		Command:       cmd,
		Targets:       make([]string, 0, len(targets)),
		AlreadyLoaded: make(map[string]Module),
	}
	for name := range targets {
		plan.Targets = append(plan.Targets, name)
		if m, ok := loaded[name]; ok {
			plan.AlreadyLoaded[name] = m
		}
	}
	sort.Strings(plan.Targets)

	return plan, nil
}

// Install runs pip install and returns its exit code.
// A non-zero exit returns the code together with a *SubprocessError.
func (i *Installer) Install(args []string, opts *pipcmd.Options) (int, error) {
	plan, err := i.Plan(args, opts)
	if err != nil {
		return -1, err
	}

	output.Trying(i.out, pipcmd.FormatCommand(plan.Command))

	argv := plan.Argv(i.python)
	logger.Debug("running %q", argv)

	code, err := i.runner.Run(argv)
	if err != nil {
		return code, err
	}
	if code != 0 {
		return code, &SubprocessError{Command: plan.Command, ExitCode: code}
	}

	if len(plan.AlreadyLoaded) > 0 {
		locations := make(map[string]string, len(plan.AlreadyLoaded))
		for name, m := range plan.AlreadyLoaded {
			locations[name] = m.Path
		}
		output.AlreadyLoaded(i.out, locations)
	}

	return 0, nil
}

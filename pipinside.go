// Package pipinside installs Python packages into an interpreter's
// environment by building a pip install command line from positional
// arguments and keyword options, running it, and reporting targets the
// host process had already imported.
package pipinside

import (
	"fmt"
	"os"
	"sync"

	"github.com/obentoo/pipinside/internal/common/config"
	"github.com/obentoo/pipinside/internal/common/logger"
	"github.com/obentoo/pipinside/internal/installer"
	"github.com/obentoo/pipinside/internal/interpreter"
	"github.com/obentoo/pipinside/internal/lockfile"
	"github.com/obentoo/pipinside/internal/pipcmd"
)

// Re-export option and installer types for convenience
type (
	Options              = pipcmd.Options
	Option               = pipcmd.Option
	Value                = pipcmd.Value
	InvalidArgumentError = pipcmd.InvalidArgumentError
	Installer            = installer.Installer
	InstallerOption      = installer.Option
	Plan                 = installer.Plan
	Module               = installer.Module
	Registry             = installer.Registry
	RegistryFunc         = installer.RegistryFunc
	SubprocessError      = installer.SubprocessError
)

// Re-export errors
var (
	ErrInvalidArgument = pipcmd.ErrInvalidArgument
	ErrParse           = pipcmd.ErrParse
	ErrParserDrift     = installer.ErrParserDrift
	ErrSubprocess      = installer.ErrSubprocess
	ErrPythonNotFound  = interpreter.ErrPythonNotFound
	ErrPipUnavailable  = interpreter.ErrPipUnavailable
	ErrPipTooOld       = interpreter.ErrPipTooOld
)

// Re-export installer options
var (
	WithRegistry = installer.WithRegistry
	WithRunner   = installer.WithRunner
	WithOutput   = installer.WithOutput
	WithDefaults = installer.WithDefaults
)

// NewOptions returns an empty ordered option set
func NewOptions() *Options { return pipcmd.NewOptions() }

// String is an option with a value, passed as "--key value"
func String(s string) Value { return pipcmd.String(s) }

// Flag is a presence option: "--key" when on, "--no-key" when off
func Flag(on bool) Value { return pipcmd.Flag(on) }

// Absent is an option that is left out of the command
func Absent() Value { return pipcmd.Absent() }

// ModuleNames builds a registry of loaded modules from bare names
func ModuleNames(names ...string) Registry { return installer.ModuleNames(names...) }

// Build returns the pip install command line for args and opts without
// running anything
func Build(args []string, opts *Options) ([]string, error) {
	return pipcmd.Build(args, opts)
}

// FormatCommand renders a command line as it would be typed in a shell
func FormatCommand(tokens []string) string {
	return pipcmd.FormatCommand(tokens)
}

// NewInstaller locates python (see interpreter lookup order when empty),
// checks that its pip understands the install grammar, and returns an
// Installer for it.
func NewInstaller(python string, opts ...InstallerOption) (*Installer, error) {
	parser := pipcmd.NewPipInstallParser()
	interp, err := interpreter.Detect(python, parser.MinPipVersion())
	if err != nil {
		return nil, err
	}
	if notice := grammarNotice(interp.PipVersion, parser.GrammarPipVersion()); notice != "" {
		logger.Debug("%s", notice)
	}
	opts = append([]InstallerOption{installer.WithParser(parser)}, opts...)
	return installer.New(interp.Path, opts...), nil
}

// grammarNotice explains that pip options newer than the parser's grammar
// will be rejected, or returns "" when pip is not newer
func grammarNotice(pipVersion, grammarVersion string) string {
	if !interpreter.NewerRelease(pipVersion, grammarVersion) {
		return ""
	}
	return fmt.Sprintf("pip %s is newer than the pip %s option set pipin parses; options added since then are rejected before pip runs", pipVersion, grammarVersion)
}

// Settings is the merged user and project configuration
type Settings struct {
	Python   string
	Defaults *Options
	Config   *config.Config
	Project  *config.Project
}

// LoadSettings reads the user config at configPath (the standard location
// when empty) and the project config for dir. The interpreter is taken from
// python, then the project, then the user config. Defaults merge user
// beneath project.
func LoadSettings(configPath, dir, python string) (*Settings, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	project, err := config.LoadProject(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	s := &Settings{
		Python:   python,
		Defaults: cfg.Defaults.Merge(project.Defaults),
		Config:   cfg,
		Project:  project,
	}
	if s.Python == "" {
		s.Python = project.Python
	}
	if s.Python == "" {
		s.Python = cfg.Python
	}
	return s, nil
}

// WarnLockfiles emits the lock file warning for dir once per process,
// unless the configuration disables it
func (s *Settings) WarnLockfiles(dir string) {
	if !s.Config.WarnLockfiles() {
		return
	}
	lockfile.WarnOnce(dir, s.Config.LockfileDepth(), s.Config.LockfileNames())
}

var (
	defaultOnce      sync.Once
	defaultInstaller *Installer
	defaultErr       error
)

// Default returns the process-wide installer used by Install. It is built
// on first use from the configuration and the working directory; a failure
// is returned on every later call too.
func Default() (*Installer, error) {
	defaultOnce.Do(func() {
		dir, err := os.Getwd()
		if err != nil {
			defaultErr = err
			return
		}
		settings, err := LoadSettings("", dir, "")
		if err != nil {
			defaultErr = err
			return
		}
		settings.WarnLockfiles(dir)
		defaultInstaller, defaultErr = NewInstaller(settings.Python, WithDefaults(settings.Defaults))
	})
	return defaultInstaller, defaultErr
}

// Install builds and runs pip install with the default installer and
// returns pip's exit code.
//
// A single argument starting with "pip install " is used as the whole
// command line and opts are ignored. Otherwise opts become options, in
// order, followed by args:
//
//	Install([]string{"pip install --user --upgrade some_pkg"}, nil)
//	Install([]string{"some_pkg"}, NewOptions().SetFlag("user", true).SetFlag("upgrade", true))
func Install(args []string, opts *Options) (int, error) {
	inst, err := Default()
	if err != nil {
		return -1, err
	}
	return inst.Install(args, opts)
}

package main

import (
	"fmt"
	"strings"

	"github.com/obentoo/pipinside/internal/installer"
	"github.com/obentoo/pipinside/internal/pipcmd"
	"github.com/spf13/pflag"
)

// optionCollector gathers --opt, --flag, --unflag and --unset into one
// ordered option set, in command line order
type optionCollector struct {
	opts *pipcmd.Options
}

func newOptionCollector() *optionCollector {
	return &optionCollector{opts: pipcmd.NewOptions()}
}

// Options returns the collected options
func (c *optionCollector) Options() *pipcmd.Options {
	return c.opts
}

func (c *optionCollector) reset() {
	c.opts = pipcmd.NewOptions()
}

// register adds the option flags to fs
func (c *optionCollector) register(fs *pflag.FlagSet) {
	fs.Var(&optionFlag{c: c, kind: kindValue}, "opt", "Keyword option key=value, passed as --key value (repeatable)")
	fs.Var(&optionFlag{c: c, kind: kindOn}, "flag", "Keyword flag key, passed as --key (repeatable)")
	fs.Var(&optionFlag{c: c, kind: kindOff}, "unflag", "Keyword flag key, passed as --no-key (repeatable)")
	fs.Var(&optionFlag{c: c, kind: kindUnset}, "unset", "Drop a configured default option (repeatable)")
}

type optionKind int

const (
	kindValue optionKind = iota
	kindOn
	kindOff
	kindUnset
)

// optionFlag is a pflag.Value writing into a shared collector
type optionFlag struct {
	c    *optionCollector
	kind optionKind
}

func (f *optionFlag) String() string { return "" }

func (f *optionFlag) Type() string {
	if f.kind == kindValue {
		return "key=value"
	}
	return "key"
}

func (f *optionFlag) Set(s string) error {
	if f.kind == kindValue {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return fmt.Errorf("expected key=value, got %q", s)
		}
		f.c.opts.SetString(key, value)
		return nil
	}

	if s == "" || strings.Contains(s, "=") {
		return fmt.Errorf("expected an option name, got %q", s)
	}
	switch f.kind {
	case kindOn:
		f.c.opts.SetFlag(s, true)
	case kindOff:
		f.c.opts.SetFlag(s, false)
	default:
		f.c.opts.Set(s, pipcmd.Absent())
	}
	return nil
}

// loadedFlags selects the registry of already-loaded modules
type loadedFlags struct {
	names []string
	file  string
}

func (l *loadedFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&l.names, "loaded", nil, "Module names the calling process has imported")
	fs.StringVar(&l.file, "loaded-from", "", "YAML or JSON file listing imported modules (names, or name: path)")
}

func (l *loadedFlags) reset() {
	l.names = nil
	l.file = ""
}

// registry combines the file and the name list; names without a path do
// not replace entries from the file
func (l *loadedFlags) registry() (*installer.StaticRegistry, error) {
	var modules []installer.Module
	if l.file != "" {
		fromFile, err := installer.LoadRegistryFile(l.file)
		if err != nil {
			return nil, err
		}
		loaded, _ := fromFile.Loaded()
		for _, m := range loaded {
			modules = append(modules, m)
		}
	}

	known := make(map[string]bool, len(modules))
	for _, m := range modules {
		known[m.Name] = true
	}
	for _, name := range l.names {
		if name != "" && !known[name] {
			modules = append(modules, installer.Module{Name: name})
			known[name] = true
		}
	}
	return installer.NewStaticRegistry(modules...), nil
}

package pipcmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// ErrParse is returned when a command line does not fit pip's install grammar
var ErrParse = errors.New("cannot parse pip install command")

// Parsed is the result of parsing an install command line
type Parsed struct {
	// Args holds the positional tokens in order, starting with the
	// program and subcommand when the command is well formed.
	Args []string
	// Set holds the long names of the options present on the command line.
	Set []string
}

// Parser extracts positionals from an install command line.
// Implementations mirror a specific pip release's option grammar.
type Parser interface {
	Parse(tokens []string) (*Parsed, error)
	// MinPipVersion is the oldest pip whose grammar the parser understands.
	MinPipVersion() string
}

type optionArity int

const (
	takesValue optionArity = iota
	boolean
	counter
)

type optionSpec struct {
	long  string
	short string
	arity optionArity
}

// installGrammar lists pip install's options, general options included,
// as of pip 23.1.
var installGrammar = []optionSpec{
	// install options
	{"requirement", "r", takesValue},
	{"constraint", "c", takesValue},
	{"editable", "e", takesValue},
	{"target", "t", takesValue},
	{"platform", "", takesValue},
	{"python-version", "", takesValue},
	{"implementation", "", takesValue},
	{"abi", "", takesValue},
	{"root", "", takesValue},
	{"prefix", "", takesValue},
	{"src", "", takesValue},
	{"upgrade-strategy", "", takesValue},
	{"config-settings", "C", takesValue},
	{"global-option", "", takesValue},
	{"no-binary", "", takesValue},
	{"only-binary", "", takesValue},
	{"progress-bar", "", takesValue},
	{"root-user-action", "", takesValue},
	{"report", "", takesValue},
	{"index-url", "i", takesValue},
	{"extra-index-url", "", takesValue},
	{"find-links", "f", takesValue},
	{"user", "", boolean},
	{"upgrade", "U", boolean},
	{"force-reinstall", "", boolean},
	{"ignore-installed", "I", boolean},
	{"ignore-requires-python", "", boolean},
	{"no-deps", "", boolean},
	{"pre", "", boolean},
	{"dry-run", "", boolean},
	{"no-build-isolation", "", boolean},
	{"use-pep517", "", boolean},
	{"no-use-pep517", "", boolean},
	{"check-build-dependencies", "", boolean},
	{"break-system-packages", "", boolean},
	{"compile", "", boolean},
	{"no-compile", "", boolean},
	{"no-warn-script-location", "", boolean},
	{"no-warn-conflicts", "", boolean},
	{"prefer-binary", "", boolean},
	{"require-hashes", "", boolean},
	{"no-clean", "", boolean},
	{"no-index", "", boolean},

	// general options
	{"log", "", takesValue},
	{"python", "", takesValue},
	{"keyring-provider", "", takesValue},
	{"proxy", "", takesValue},
	{"retries", "", takesValue},
	{"timeout", "", takesValue},
	{"exists-action", "", takesValue},
	{"trusted-host", "", takesValue},
	{"cert", "", takesValue},
	{"client-cert", "", takesValue},
	{"cache-dir", "", takesValue},
	{"use-feature", "", takesValue},
	{"use-deprecated", "", takesValue},
	{"help", "h", boolean},
	{"debug", "", boolean},
	{"isolated", "", boolean},
	{"require-virtualenv", "", boolean},
	{"no-input", "", boolean},
	{"no-cache-dir", "", boolean},
	{"disable-pip-version-check", "", boolean},
	{"no-color", "", boolean},
	{"no-python-version-warning", "", boolean},
	{"version", "V", boolean},
	{"verbose", "v", counter},
	{"quiet", "q", counter},
}

// PipInstallParser parses command lines with pip install's option grammar.
// Options may appear anywhere; "--" ends option parsing; unknown options
// are an error, as they are for pip itself.
type PipInstallParser struct{}

// NewPipInstallParser creates a parser for pip install command lines
func NewPipInstallParser() *PipInstallParser {
	return &PipInstallParser{}
}

// grammarPipVersion is the pip release installGrammar was taken from
const grammarPipVersion = "23.1"

// MinPipVersion returns the oldest pip release matching installGrammar
func (p *PipInstallParser) MinPipVersion() string {
	return grammarPipVersion
}

// GrammarPipVersion returns the newest pip release whose install options
// installGrammar declares. Options introduced after it fail with ErrParse
// even when the installed pip accepts them.
func (p *PipInstallParser) GrammarPipVersion() string {
	return grammarPipVersion
}

// Parse parses tokens, which include the leading "pip install"
func (p *PipInstallParser) Parse(tokens []string) (*Parsed, error) {
	fs := newFlagSet()
	if err := fs.Parse(tokens); err != nil {
		return nil, fmt.Errorf("%w: %v (options known as of pip %s)", ErrParse, err, grammarPipVersion)
	}

	parsed := &Parsed{Args: fs.Args()}
	fs.Visit(func(f *pflag.Flag) {
		parsed.Set = append(parsed.Set, f.Name)
	})
	return parsed, nil
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(Program+" "+Subcommand, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SetInterspersed(true)

	for _, spec := range installGrammar {
		switch spec.arity {
		case takesValue:
			fs.StringArrayP(spec.long, spec.short, nil, "")
		case boolean:
			fs.BoolP(spec.long, spec.short, false, "")
		case counter:
			fs.CountP(spec.long, spec.short, "")
		}
	}
	return fs
}

// Ensure PipInstallParser implements Parser interface
var _ Parser = (*PipInstallParser)(nil)

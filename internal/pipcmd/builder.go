package pipcmd

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/shlex"
)

const (
	// Program is the package manager invoked by every command
	Program = "pip"
	// Subcommand is the only pip subcommand this package builds
	Subcommand = "install"

	negationPrefix = "no-"
)

// Prefix returns the fixed leading tokens of every install command
func Prefix() []string {
	return []string{Program, Subcommand}
}

// fullCommandPrefix marks a single argument holding a whole command line
var fullCommandPrefix = Program + " " + Subcommand + " "

// ErrInvalidArgument is returned for arguments rejected before anything runs
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError describes a rejected keyword option or command string
type InvalidArgumentError struct {
	Key        string // option name as passed by the caller
	Reason     string
	Suggestion string // optional replacement the caller should use instead
}

func (e *InvalidArgumentError) Error() string {
	msg := "invalid argument"
	if e.Key != "" {
		msg += " " + e.Key
	}
	msg += ": " + e.Reason
	if e.Suggestion != "" {
		msg += "; " + e.Suggestion
	}
	return msg
}

// Unwrap lets errors.Is match ErrInvalidArgument
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// IsFullCommand reports whether args is a single full "pip install ..." string
func IsFullCommand(args []string) bool {
	return len(args) == 1 && strings.HasPrefix(args[0], fullCommandPrefix)
}

// Build returns the pip install command line for args and opts.
//
// A single argument beginning with "pip install " is split with shell
// quoting rules and returned as is; opts are ignored in that case.
// Otherwise the command is "pip install", then one or two tokens per
// option in opts order, then args unchanged.
func Build(args []string, opts *Options) ([]string, error) {
	if IsFullCommand(args) {
		tokens, err := shlex.Split(args[0])
		if err != nil {
			return nil, &InvalidArgumentError{
				Reason: fmt.Sprintf("cannot split command %q: %v", args[0], err),
			}
		}
		return tokens, nil
	}

	cmd := Prefix()
	for _, opt := range opts.Entries() {
		tokens, err := optionTokens(opt.Key, opt.Value)
		if err != nil {
			return nil, err
		}
		cmd = append(cmd, tokens...)
	}
	return append(cmd, args...), nil
}

// optionTokens translates one keyword option into its command-line tokens
func optionTokens(rawKey string, v Value) ([]string, error) {
	name := OptionName(rawKey)

	if strings.HasPrefix(name, negationPrefix) {
		return nil, &InvalidArgumentError{
			Key:        rawKey,
			Reason:     fmt.Sprintf("option names must not start with %q", negationPrefix),
			Suggestion: negationSuggestion(rawKey, name, v),
		}
	}

	switch v.Kind() {
	case KindString:
		if v.Text() == "" {
			return nil, &InvalidArgumentError{
				Key:    rawKey,
				Reason: fmt.Sprintf("empty string passed as value for option %s", name),
			}
		}
		return []string{FlagToken(name), v.Text()}, nil
	case KindFlag:
		if !v.Bool() {
			name = negationPrefix + name
		}
		return []string{FlagToken(name)}, nil
	default:
		return nil, nil
	}
}

// negationSuggestion proposes the non-negated form of a no- option.
// A string value cannot be flipped, so the caller is pointed at passing
// the option positionally, which Build leaves untouched.
func negationSuggestion(rawKey, name string, v Value) string {
	suffix := rawKey[len(negationPrefix):]
	var proposed Value
	switch v.Kind() {
	case KindFlag:
		proposed = Flag(!v.Bool())
	case KindString:
		return fmt.Sprintf("rather than '%s=%s', pass %q, %q as positional arguments",
			rawKey, v.GoString(), FlagToken(name), v.Text())
	default:
		proposed = Absent()
	}
	return fmt.Sprintf("rather than '%s=%s', try '%s=%s'", rawKey, v.GoString(), suffix, proposed.GoString())
}

// OptionName converts an identifier-style key to its long option name
func OptionName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// FlagToken returns "-k" for single-character names and "--name" otherwise
func FlagToken(name string) string {
	if utf8.RuneCountInString(name) == 1 {
		return "-" + name
	}
	return "--" + name
}

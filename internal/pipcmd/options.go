// Package pipcmd translates positional arguments and keyword options into a
// pip install command line, and parses such command lines back with pip's
// install option grammar.
package pipcmd

import (
	"fmt"
	"strconv"
)

// Kind identifies what a Value carries
type Kind int

const (
	// KindAbsent omits the option entirely
	KindAbsent Kind = iota
	// KindFlag is a presence flag: true includes it, false includes its no- form
	KindFlag
	// KindString is a value-bearing option
	KindString
)

// Value is the tagged value of a keyword option
type Value struct {
	kind Kind
	flag bool
	str  string
}

// String returns a value-bearing option value
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Flag returns a presence flag value
func Flag(on bool) Value {
	return Value{kind: KindFlag, flag: on}
}

// Absent returns a value that omits the option
func Absent() Value {
	return Value{kind: KindAbsent}
}

// Kind returns the value's kind
func (v Value) Kind() Kind {
	return v.kind
}

// Bool returns the flag state. Only meaningful for KindFlag.
func (v Value) Bool() bool {
	return v.flag
}

// Text returns the string payload. Only meaningful for KindString.
func (v Value) Text() string {
	return v.str
}

// GoString renders the value the way a caller would write it, used in
// error suggestions.
func (v Value) GoString() string {
	switch v.kind {
	case KindFlag:
		return strconv.FormatBool(v.flag)
	case KindString:
		return strconv.Quote(v.str)
	default:
		return "nil"
	}
}

func (v Value) String() string {
	return v.GoString()
}

// Option is a single keyword option
type Option struct {
	Key   string
	Value Value
}

// Options is an insertion-ordered mapping from option name to Value.
// The zero value is ready to use.
type Options struct {
	entries []Option
	index   map[string]int
}

// NewOptions returns an empty Options
func NewOptions() *Options {
	return &Options{}
}

// Set assigns key. An existing key keeps its original position.
func (o *Options) Set(key string, v Value) *Options {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.entries[i].Value = v
		return o
	}
	o.index[key] = len(o.entries)
	o.entries = append(o.entries, Option{Key: key, Value: v})
	return o
}

// SetString is shorthand for Set(key, String(s))
func (o *Options) SetString(key, s string) *Options {
	return o.Set(key, String(s))
}

// SetFlag is shorthand for Set(key, Flag(on))
func (o *Options) SetFlag(key string, on bool) *Options {
	return o.Set(key, Flag(on))
}

// Get returns the value stored under key
func (o *Options) Get(key string) (Value, bool) {
	if o == nil || o.index == nil {
		return Value{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.entries[i].Value, true
}

// Len returns the number of options
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Entries returns a copy of the options in insertion order
func (o *Options) Entries() []Option {
	if o == nil {
		return nil
	}
	out := make([]Option, len(o.entries))
	copy(out, o.entries)
	return out
}

// Keys returns the option names in insertion order
func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.Key
	}
	return keys
}

// Merge returns a new Options holding o's entries overlaid with other's.
// Keys already in o keep their position; new keys from other follow in
// other's order. Either side may be nil.
func (o *Options) Merge(other *Options) *Options {
	merged := NewOptions()
	for _, e := range o.Entries() {
		merged.Set(e.Key, e.Value)
	}
	for _, e := range other.Entries() {
		merged.Set(e.Key, e.Value)
	}
	return merged
}

func (o *Options) String() string {
	s := "{"
	for i, e := range o.Entries() {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%s", e.Key, e.Value.GoString())
	}
	return s + "}"
}

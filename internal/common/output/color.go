package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

var (
	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header  = color.New(color.FgWhite, color.Bold)
	Module  = color.New(color.FgBlue, color.Bold)
	Command = color.New(color.FgCyan, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// Fprintf prints with color to w
func Fprintf(w io.Writer, c *color.Color, format string, args ...interface{}) {
	c.Fprintf(w, format, args...)
}

// FormatModule formats a loaded module name, with its location when known
func FormatModule(name, location string) string {
	if location == "" {
		return Module.Sprint(name)
	}
	return Module.Sprint(name) + " " + Dim.Sprintf("(%s)", location)
}

// Trying writes the line announcing a command that is about to run
func Trying(w io.Writer, commandLine string) {
	fmt.Fprintf(w, "Trying  %s  ...\n", Command.Sprint(commandLine))
}

// AlreadyLoaded writes the restart hint followed by one line per module,
// sorted by name. modules maps module name to its location.
func AlreadyLoaded(w io.Writer, modules map[string]string) {
	if len(modules) == 0 {
		return
	}

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	Warning.Fprintln(w, "The following modules were already loaded. You may need to restart python to see changes:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", FormatModule(name, modules[name]))
	}
}

// Package lockfile finds dependency lock files that pipin install bypasses.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/obentoo/pipinside/internal/common/logger"
)

const (
	// DefaultParents is how many parent directories above the start are searched
	DefaultParents = 3
	pipfileName    = "Pipfile"
)

// DefaultNames returns the file names searched when none are configured
func DefaultNames() []string {
	return []string{pipfileName}
}

// Found is a lock file located by Scan
type Found struct {
	Path string
	// Packages is the number of packages the file declares, or -1 when
	// the file was not decoded.
	Packages int
}

// Scan looks for names in dir and up to parents directories above it.
// Names may be glob patterns; they are matched against entry names only, so
// metacharacters in the directory path are taken literally. Paths are
// absolute, nearest directory first.
func Scan(dir string, parents int, names []string) ([]Found, error) {
	for _, name := range names {
		if _, err := filepath.Match(name, ""); err != nil {
			return nil, fmt.Errorf("bad lock file pattern %q: %w", name, err)
		}
	}

	start, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var found []Found
	current := start
	for level := 0; level <= parents; level++ {
		for _, path := range matchEntries(current, names) {
			found = append(found, Found{Path: path, Packages: countPackages(path)})
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return found, nil
}

// matchEntries returns the regular files in dir whose name matches any of
// names, sorted. An unreadable directory yields nothing.
func matchEntries(dir string, names []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Debug("cannot list %s: %v", dir, err)
		return nil
	}

	var matches []string
	for _, entry := range entries {
		for _, name := range names {
			if ok, _ := filepath.Match(name, entry.Name()); !ok {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				matches = append(matches, path)
			}
			break
		}
	}
	sort.Strings(matches)
	return matches
}

// pipfile is the part of a Pipfile that declares packages
type pipfile struct {
	Packages    map[string]toml.Primitive `toml:"packages"`
	DevPackages map[string]toml.Primitive `toml:"dev-packages"`
}

// countPackages returns the packages declared by a Pipfile, or -1
func countPackages(path string) int {
	if filepath.Base(path) != pipfileName {
		return -1
	}
	var p pipfile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		logger.Debug("could not decode %s: %v", path, err)
		return -1
	}
	return len(p.Packages) + len(p.DevPackages)
}

// FormatWarning renders the bypass warning for found, or "" when empty
func FormatWarning(found []Found) string {
	if len(found) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Warning: the following lock files will be bypassed by pipin install:")
	for _, f := range found {
		b.WriteString("\n\t")
		b.WriteString(f.Path)
		switch {
		case f.Packages == 1:
			b.WriteString(" (1 package)")
		case f.Packages >= 0:
			fmt.Fprintf(&b, " (%d packages)", f.Packages)
		}
	}
	return b.String()
}

var warnOnce sync.Once

// WarnOnce scans from dir and logs the bypass warning.
// Only the first call in a process does anything.
func WarnOnce(dir string, parents int, names []string) {
	warnOnce.Do(func() {
		found, err := Scan(dir, parents, names)
		if err != nil {
			logger.Debug("lock file scan failed: %v", err)
			return
		}
		if msg := FormatWarning(found); msg != "" {
			logger.Warn("%s", msg)
		}
	})
}

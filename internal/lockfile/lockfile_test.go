package lockfile

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/obentoo/pipinside/internal/common/logger"
)

// nestedDirs creates root/d1/d2/d3/d4 and returns the directories, root first
func nestedDirs(t *testing.T) []string {
	t.Helper()
	dirs := []string{t.TempDir()}
	for i := 1; i <= 4; i++ {
		dirs = append(dirs, filepath.Join(dirs[i-1], "d"+string(rune('0'+i))))
	}
	if err := os.MkdirAll(dirs[len(dirs)-1], 0755); err != nil {
		t.Fatal(err)
	}
	return dirs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDepth(t *testing.T) {
	dirs := nestedDirs(t)
	deepest := dirs[4]

	tests := []struct {
		name  string
		level int // parents above deepest
		found bool
	}{
		{name: "same directory", level: 0, found: true},
		{name: "one parent", level: 1, found: true},
		{name: "three parents", level: 3, found: true},
		{name: "four parents is too far", level: 4, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dirs[4-tt.level], "Pipfile")
			writeFile(t, path, "")
			defer os.Remove(path)

			found, err := Scan(deepest, DefaultParents, DefaultNames())
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if got := len(found) == 1; got != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if tt.found && found[0].Path != path {
				t.Errorf("Path = %q, want %q", found[0].Path, path)
			}
		})
	}
}

func TestScanOrderAndCounts(t *testing.T) {
	dirs := nestedDirs(t)
	writeFile(t, filepath.Join(dirs[2], "Pipfile"), `
[[source]]
url = "https://pypi.org/simple"

[packages]
requests = "*"
numpy = {version = ">=1.20"}

[dev-packages]
pytest = "*"
`)
	writeFile(t, filepath.Join(dirs[4], "Pipfile"), "not [valid toml")
	writeFile(t, filepath.Join(dirs[3], "poetry.lock"), "")

	found, err := Scan(dirs[4], DefaultParents, []string{"Pipfile", "*.lock"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []Found{
		{Path: filepath.Join(dirs[4], "Pipfile"), Packages: -1},
		{Path: filepath.Join(dirs[3], "poetry.lock"), Packages: -1},
		{Path: filepath.Join(dirs[2], "Pipfile"), Packages: 3},
	}
	if len(found) != len(want) {
		t.Fatalf("found %v, want %v", found, want)
	}
	for i := range want {
		if found[i] != want[i] {
			t.Errorf("found[%d] = %v, want %v", i, found[i], want[i])
		}
	}
}

func TestScanTreatsDirectoryNamesLiterally(t *testing.T) {
	for _, dirName := range []string{"proj[1]", "a*b", "x?", "[abc"} {
		t.Run(dirName, func(t *testing.T) {
			if runtime.GOOS == "windows" && strings.ContainsAny(dirName, "*?") {
				t.Skip("not a valid file name on Windows")
			}
			dir := filepath.Join(t.TempDir(), dirName)
			nested := filepath.Join(dir, "src")
			if err := os.MkdirAll(nested, 0755); err != nil {
				t.Fatal(err)
			}
			path := filepath.Join(dir, "Pipfile")
			writeFile(t, path, "[packages]\nsix = \"*\"\n")

			found, err := Scan(nested, 1, DefaultNames())
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if len(found) != 1 || found[0].Path != path {
				t.Fatalf("found = %v, want %s", found, path)
			}
			if found[0].Packages != 1 {
				t.Errorf("Packages = %d, want 1", found[0].Packages)
			}
		})
	}
}

func TestScanRejectsBadPattern(t *testing.T) {
	if _, err := Scan(t.TempDir(), 0, []string{"["}); err == nil {
		t.Error("expected an error for a malformed pattern")
	}
}

func TestScanIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "Pipfile"), 0755); err != nil {
		t.Fatal(err)
	}

	found, err := Scan(dir, 0, DefaultNames())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("directories must not match: %v", found)
	}
}

func TestFormatWarning(t *testing.T) {
	tests := []struct {
		name     string
		found    []Found
		expected string
	}{
		{name: "nothing found", found: nil, expected: ""},
		{
			name: "counts when known",
			found: []Found{
				{Path: "/a/Pipfile", Packages: 1},
				{Path: "/Pipfile", Packages: 4},
				{Path: "/b/Pipfile", Packages: -1},
			},
			expected: "Warning: the following lock files will be bypassed by pipin install:" +
				"\n\t/a/Pipfile (1 package)\n\t/Pipfile (4 packages)\n\t/b/Pipfile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatWarning(tt.found); got != tt.expected {
				t.Errorf("FormatWarning() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWarnOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Pipfile"), "[packages]\nsix = \"*\"\n")

	var buf bytes.Buffer
	logger.Default().SetOutput(&buf)
	defer logger.Default().SetOutput(os.Stderr)
	warnOnce = sync.Once{}

	WarnOnce(dir, 0, DefaultNames())
	WarnOnce(dir, 0, DefaultNames())

	if n := strings.Count(buf.String(), "will be bypassed"); n != 1 {
		t.Errorf("warning printed %d times, want 1: %q", n, buf.String())
	}
	if !strings.Contains(buf.String(), "(1 package)") {
		t.Errorf("warning should include the package count: %q", buf.String())
	}
}

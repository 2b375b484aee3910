package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTerminalThreshold(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    []string
		hidden  []string
	}{
		{
			name:   "default shows warnings and errors",
			want:   []string{"lock file found", "pip failed"},
			hidden: []string{"running pip"},
		},
		{
			name:    "verbose adds debug",
			verbose: true,
			want:    []string{"running pip", "lock file found", "pip failed"},
		},
		{
			name:   "quiet keeps only errors",
			quiet:  true,
			want:   []string{"pip failed"},
			hidden: []string{"running pip", "lock file found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			log := New(buf)
			log.SetVerbose(tt.verbose)
			log.SetQuiet(tt.quiet)

			log.Debug("running pip")
			log.Warn("lock file found")
			log.Error("pip failed")

			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output should contain %q: %q", s, out)
				}
			}
			for _, s := range tt.hidden {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q: %q", s, out)
				}
			}
		})
	}
}

func TestFileKeepsDebugLinesWhenTerminalIsNot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pipin.log")
	term := new(bytes.Buffer)
	log := New(term)
	log.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	if err := log.EnableFileLogging(path); err != nil {
		t.Fatalf("EnableFileLogging: %v", err)
	}
	log.Debug("running %q", []string{"python3", "-m", "pip"})
	log.Warn("lock file found")
	log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		`[2024-05-01 12:30:00] DEBUG: running ["python3" "-m" "pip"]`,
		"[2024-05-01 12:30:00] WARN: lock file found",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q: %q", want, content)
		}
	}
	if strings.Contains(term.String(), "running") {
		t.Errorf("debug line leaked to the terminal: %q", term.String())
	}
}

func TestCloseDetachesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipin.log")
	log := New(new(bytes.Buffer))

	if err := log.EnableFileLogging(path); err != nil {
		t.Fatalf("EnableFileLogging: %v", err)
	}
	log.Close()
	log.Error("after close")
	log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("nothing should be written after Close, got %q", data)
	}
}

func TestEnableFileLoggingDefaultPath(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	log := New(new(bytes.Buffer))
	if err := log.EnableFileLogging(""); err != nil {
		t.Fatalf("EnableFileLogging: %v", err)
	}
	log.Warn("hello")
	log.Close()

	data, err := os.ReadFile(filepath.Join(state, "pipin", "logs", "pipin.log"))
	if err != nil {
		t.Fatalf("default log file not created: %v", err)
	}
	if !strings.Contains(string(data), "WARN: hello") {
		t.Errorf("default log file = %q", data)
	}
}

func TestSetOutputRedirectsTerminalOutput(t *testing.T) {
	first, second := new(bytes.Buffer), new(bytes.Buffer)
	log := New(first)

	log.SetOutput(second)
	log.Warn("hello")

	if first.Len() != 0 {
		t.Errorf("old output should stay empty, got %q", first.String())
	}
	if second.String() != "hello\n" {
		t.Errorf("new output = %q, want %q", second.String(), "hello\n")
	}
}

func TestLevelString(t *testing.T) {
	for lv, want := range map[Level]string{LevelDebug: "DEBUG", LevelWarn: "WARN", LevelError: "ERROR"} {
		if got := lv.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", lv, got, want)
		}
	}
}

func TestPackageLevelFunctionsUseDefault(t *testing.T) {
	once = sync.Once{}
	defaultLogger = nil
	t.Cleanup(func() {
		once = sync.Once{}
		defaultLogger = nil
	})

	buf := new(bytes.Buffer)
	Default().SetOutput(buf)
	SetVerbose(true)

	Debug("debug test")
	Warn("warn test")
	Error("error test")

	for _, want := range []string{"debug test", "warn test", "error test"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("package-level output missing %q: %q", want, buf.String())
		}
	}
}

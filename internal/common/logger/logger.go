package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level orders pipin's messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelWarn
	LevelError
)

func (lv Level) String() string {
	switch lv {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// Logger writes pipin's diagnostics to the terminal and, once a log file
// is attached, keeps a timestamped copy there.
//
// The terminal threshold follows --verbose and --quiet. The file records
// every level, so a log of a failed install always carries the pip argv.
type Logger struct {
	mu        sync.Mutex
	threshold Level
	terminal  io.Writer
	file      *os.File
	now       func() time.Time
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New returns a logger that shows warnings and errors on w.
func New(w io.Writer) *Logger {
	return &Logger{threshold: LevelWarn, terminal: w, now: time.Now}
}

// Default returns the process-wide logger writing to stderr.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr)
	})
	return defaultLogger
}

// SetVerbose lowers the terminal threshold to debug.
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.setThreshold(LevelDebug)
	}
}

// SetQuiet raises the terminal threshold so only errors are shown.
func (l *Logger) SetQuiet(quiet bool) {
	if quiet {
		l.setThreshold(LevelError)
	}
}

func (l *Logger) setThreshold(lv Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.threshold = lv
}

// SetOutput redirects terminal output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.terminal = w
}

// EnableFileLogging appends log lines to path.
// An empty path selects pipin.log in LogDir.
func (l *Logger) EnableFileLogging(path string) error {
	if path == "" {
		dir, err := LogDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "pipin.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = f
	return nil
}

// Close detaches and closes the log file, if any.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// LogDir is $XDG_STATE_HOME/pipin/logs, falling back to ~/.local/state.
func LogDir() (string, error) {
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "pipin", "logs"), nil
}

func (l *Logger) write(lv Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if lv >= l.threshold && l.terminal != nil {
		fmt.Fprintln(l.terminal, msg)
	}
	if l.file != nil {
		fmt.Fprintf(l.file, "[%s] %s: %s\n", l.now().Format("2006-01-02 15:04:05"), lv, msg)
	}
}

// Debug records detail shown only with --verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, format, args...)
}

// Warn records a message shown unless --quiet is set.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, format, args...)
}

// Error records a message that is always shown.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, format, args...)
}

func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }
func Warn(format string, args ...interface{})  { Default().Warn(format, args...) }
func Error(format string, args ...interface{}) { Default().Error(format, args...) }
func SetVerbose(v bool)                        { Default().SetVerbose(v) }
func SetQuiet(q bool)                          { Default().SetQuiet(q) }
func EnableFileLogging(path string) error      { return Default().EnableFileLogging(path) }
func Close()                                   { Default().Close() }

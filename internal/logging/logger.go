// Package logging provides a leveled, optionally colored logger with an
// optional append-only file sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/backmassage/audioconv/internal/config"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// Logger writes timestamped, leveled lines to stdout (errors to stderr) and,
// when configured, to a log file. All methods are goroutine-safe.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	color    bool
	minLevel int
	file     *os.File

	// beforeWrite runs under mu before each console line; the progress bar
	// uses it to clear its line.
	beforeWrite func()
}

// NewLogger resolves the color mode and level from cfg and optionally opens
// cfg.LogFile for appending. Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	l := &Logger{
		out:      os.Stdout,
		errOut:   os.Stderr,
		color:    ColorEnabled(cfg.ColorMode),
		minLevel: levelFor(cfg.LogLevel),
	}
	if cfg.Verbose && l.minLevel > levelDebug {
		l.minLevel = levelDebug
	}
	color.NoColor = !l.color

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

// New returns a console-less logger writing plain lines to w at the given
// level. Used by tests and by callers that capture output.
func New(w io.Writer, level config.LogLevel) *Logger {
	return &Logger{out: w, errOut: w, minLevel: levelFor(level)}
}

// ColorEnabled resolves mode against the terminal and NO_COLOR
// (https://no-color.org).
func ColorEnabled(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func levelFor(l config.LogLevel) int {
	switch l {
	case config.LevelDebug:
		return levelDebug
	case config.LevelWarn:
		return levelWarn
	case config.LevelError:
		return levelError
	default:
		return levelInfo
	}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// SetBeforeWrite installs a hook that runs before every console line.
func (l *Logger) SetBeforeWrite(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beforeWrite = fn
}

// Colored reports whether console output carries ANSI colors.
func (l *Logger) Colored() bool { return l.color }

var levelColors = map[string]*color.Color{
	"DEBUG":   color.New(color.FgCyan, color.Bold),
	"INFO":    color.New(color.FgHiBlue, color.Bold),
	"SUCCESS": color.New(color.FgHiGreen, color.Bold),
	"WARN":    color.New(color.FgHiYellow, color.Bold),
	"ERROR":   color.New(color.FgHiRed, color.Bold),
}

func (l *Logger) line(level int, tag, text string) {
	if level < l.minLevel {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	plain := ts + " [" + tag + "] " + text + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.beforeWrite != nil {
		l.beforeWrite()
	}
	out := l.out
	if level == levelError {
		out = l.errOut
	}
	if l.color {
		_, _ = io.WriteString(out, ts+" "+levelColors[tag].Sprint("["+tag+"]")+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Debug logs at DEBUG level (cyan); shown with --verbose or --log-level debug.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.line(levelDebug, "DEBUG", fmt.Sprintf(format, args...))
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(levelInfo, "INFO", fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green). It is filtered like INFO.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(levelInfo, "SUCCESS", fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(levelWarn, "WARN", fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(levelError, "ERROR", fmt.Sprintf(format, args...))
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures the file logger.
type Options struct {
	// Level is the minimum level (debug, info, warn, error)
	Level string
	// Prefix is the component name prefix
	Prefix string
	// ReportCaller adds file:line to entries
	ReportCaller bool
}

// Logger appends structured entries to .tirereq/logs/tirereq.log. The TUI owns
// the terminal, so nothing is written to stdout or stderr.
type Logger struct {
	*log.Logger
	file *os.File
}

// ParseLevel converts a level name to log.Level. Unknown names map to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// LevelFromEnv returns TIREREQ_LOG_LEVEL when set, otherwise fallback.
func LevelFromEnv(fallback string) string {
	if level := strings.TrimSpace(os.Getenv("TIREREQ_LOG_LEVEL")); level != "" {
		return level
	}
	return fallback
}

// New creates (or reuses) the log file at path.
func New(path string, opts Options) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{Logger: newLogger(f, opts), file: f}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: newLogger(io.Discard, Options{Level: "error"})}
}

func newLogger(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      time.RFC3339,
		ReportCaller:    opts.ReportCaller,
		ReportTimestamp: true,
	})
}

// SetLevelName changes the minimum level at runtime.
func (l *Logger) SetLevelName(level string) {
	if l == nil || l.Logger == nil {
		return
	}
	l.SetLevel(ParseLevel(level))
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

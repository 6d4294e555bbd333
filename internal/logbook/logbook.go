// Package logbook keeps the session journal shown in the TUI's log panel: one
// plain-text line per user-visible event (submits, saves, deletes, approvals).
// Structured diagnostics go to internal/logging instead.
package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one parsed journal line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// String renders the entry for the log panel.
func (e Entry) String() string {
	return fmt.Sprintf("%s %-5s %s", e.Time.Local().Format("15:04:05"), e.Level, e.Message)
}

// ParseEntry reads a line written by Append. Lines that don't carry a timestamp
// and level come back as an info entry holding the raw text.
func ParseEntry(line string) Entry {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(fields) == 2 {
		if at, err := time.Parse(time.RFC3339, fields[0]); err == nil {
			rest := strings.TrimLeft(fields[1], " ")
			level, message, _ := strings.Cut(rest, " ")
			switch Level(level) {
			case LevelInfo, LevelWarn, LevelError:
				return Entry{Time: at, Level: Level(level), Message: strings.TrimSpace(message)}
			}
		}
	}
	return Entry{Level: LevelInfo, Message: strings.TrimSpace(line)}
}

// Option customizes a Logbook.
type Option func(*Logbook)

// DefaultCacheSize is how many recent entries a Logbook keeps in memory.
const DefaultCacheSize = 64

// WithCacheSize bounds the in-memory tail. Tail never returns more than this.
func WithCacheSize(n int) Option {
	return func(l *Logbook) {
		if n > 0 {
			l.cacheSize = n
		}
	}
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(clock func() time.Time) Option {
	return func(l *Logbook) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// Logbook appends journal entries to a text file and serves the most recent
// ones from memory. The file is read once, on the first Tail; after that the
// logbook assumes it is the only writer. It is safe for concurrent use.
type Logbook struct {
	path      string
	clock     func() time.Time
	cacheSize int

	mu     sync.Mutex
	loaded bool
	recent []Entry
	total  int
}

// New creates a logbook that writes to the provided path.
func New(path string, opts ...Option) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure dir: %w", err)
	}
	l := &Logbook{path: path, clock: time.Now, cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry. Multi-line messages are folded onto one line.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	message = strings.Join(strings.Fields(message), " ")
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("%s %-5s %s", l.clock().UTC().Format(time.RFC3339), level, message)
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	if _, err := file.WriteString(line + "\n"); err != nil {
		return
	}
	if l.loaded {
		l.remember(ParseEntry(line))
	}
}

// Tail returns up to maxEntries of the most recent entries, oldest first, and
// the total number of entries in the file.
func (l *Logbook) Tail(maxEntries int) ([]Entry, int) {
	if l == nil || maxEntries <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		l.load()
	}
	if len(l.recent) == 0 {
		return nil, l.total
	}
	n := min(maxEntries, len(l.recent))
	return append([]Entry(nil), l.recent[len(l.recent)-n:]...), l.total
}

// load scans the existing journal once, keeping only the newest entries.
func (l *Logbook) load() {
	l.loaded = true
	file, err := os.Open(l.path)
	if err != nil {
		return
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		l.remember(ParseEntry(scanner.Text()))
	}
}

func (l *Logbook) remember(entry Entry) {
	l.total++
	l.recent = append(l.recent, entry)
	if over := len(l.recent) - l.cacheSize; over > 0 {
		l.recent = append(l.recent[:0], l.recent[over:]...)
	}
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWritesStructuredEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tirereq.log")
	logger, err := New(path, Options{Level: "info", Prefix: "test"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hidden", "id", 1)
	logger.Info("submit accepted", "id", 42)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "submit accepted") || !strings.Contains(text, "id=42") {
		t.Fatalf("missing entry in %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Fatalf("debug entry written at info level")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"debug":   log.DebugLevel,
		" WARN ":  log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"verbose": log.InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("TIREREQ_LOG_LEVEL", "debug")
	if got := LevelFromEnv("info"); got != "debug" {
		t.Fatalf("level = %q", got)
	}
	t.Setenv("TIREREQ_LOG_LEVEL", "")
	if got := LevelFromEnv("warn"); got != "warn" {
		t.Fatalf("level = %q", got)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.SetLevelName("debug")
	if err := l.Close(); err != nil {
		t.Fatalf("close nil: %v", err)
	}
	Discard().Info("dropped")
}

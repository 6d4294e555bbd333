package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitDirWritesDefaultConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir returned error: %v", err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if _, err := os.Stat(cfg.LogsDir()); err != nil {
		t.Fatalf("expected logs dir: %v", err)
	}
	g := cfg.Project.Gateway
	if g.Latency == nil || *g.Latency != time.Second {
		t.Fatalf("expected default latency 1s, got %v", g.Latency)
	}
	if g.ItemFailureRate == nil || *g.ItemFailureRate != 0.1 {
		t.Fatalf("expected item failure rate 0.1, got %v", g.ItemFailureRate)
	}
	if cfg.Project.Form.ClearOnSubmit || cfg.Project.Form.RevalidateOnSave {
		t.Fatalf("form toggles should default to false")
	}

	// A second init must not overwrite user edits.
	custom := "version: 1\nlogging:\n  level: debug\n"
	if err := os.WriteFile(cfg.ConfigPath(), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("second InitDir: %v", err)
	}
	data, _ := os.ReadFile(cfg.ConfigPath())
	if string(data) != custom {
		t.Fatalf("InitDir overwrote existing config")
	}
}

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	pc, err := LoadProjectConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadProjectConfig returned error: %v", err)
	}
	if pc.Version != 1 || pc.Logging.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", pc)
	}
	if pc.Gateway.Latency != nil || pc.Gateway.ItemFailureRate != nil {
		t.Fatalf("gateway overrides should be unset")
	}
}

func TestParseProjectConfig(t *testing.T) {
	pc, err := ParseProjectConfig([]byte(strings.TrimSpace(`
version: 1
gateway:
  latency: 250ms
  submit_failure_rate: 0.5
  item_failure_rate: 0
form:
  clear_on_submit: true
logging:
  level: " Warning "
`)))
	if err != nil {
		t.Fatalf("ParseProjectConfig returned error: %v", err)
	}
	if *pc.Gateway.Latency != 250*time.Millisecond {
		t.Fatalf("latency = %s", *pc.Gateway.Latency)
	}
	if *pc.Gateway.SubmitFailureRate != 0.5 || *pc.Gateway.ItemFailureRate != 0 {
		t.Fatalf("rates = %v / %v", *pc.Gateway.SubmitFailureRate, *pc.Gateway.ItemFailureRate)
	}
	if !pc.Form.ClearOnSubmit || pc.Form.RevalidateOnSave {
		t.Fatalf("form = %+v", pc.Form)
	}
	if pc.Logging.Level != "warn" {
		t.Fatalf("level = %q", pc.Logging.Level)
	}
}

func TestParseProjectConfigValidation(t *testing.T) {
	tests := map[string]string{
		"rate above one":   "gateway:\n  item_failure_rate: 1.5\n",
		"negative rate":    "gateway:\n  submit_failure_rate: -0.1\n",
		"negative latency": "gateway:\n  latency: -1s\n",
		"bad level":        "logging:\n  level: loud\n",
		"bad version":      "version: -1\n",
		"not yaml":         "gateway: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseProjectConfig([]byte(body)); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.ConfigPath(), []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if cfg.Project.Logging.Level != "info" {
		t.Fatalf("failed reload replaced config: %+v", cfg.Project.Logging)
	}
}

func TestWatchReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan ProjectConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(pc ProjectConfig, err error) {
			if err != nil {
				return
			}
			select {
			case changes <- pc:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("version: 1\nform:\n  revalidate_on_save: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case pc := <-changes:
			reloaded = pc.Form.RevalidateOnSave
		case <-timeout:
			t.Fatalf("timed out waiting for config change")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Watch did not stop after cancel")
	}
}

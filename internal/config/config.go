// internal/config/config.go
//
// This package handles configuration and the .tirereq directory structure.
// The directory is created next to wherever tirereq is launched and holds the
// config file and the logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in the working directory
	Dir = ".tirereq"

	// ConfigFile is the file name of the config inside Dir
	ConfigFile = "config.yaml"

	defaultLogLevel = "info"
)

const defaultProjectConfigYAML = `# tirereq configuration
version: 1

# Simulated backend. Every call waits for latency and then fails with the given
# probability (0 never fails, 1 always fails).
gateway:
  latency: 1s
  submit_failure_rate: 0
  item_failure_rate: 0.1

form:
  # Reset the request form after a successful submission.
  clear_on_submit: false
  # Re-run the field rules before saving an edited request.
  revalidate_on_save: false

logging:
  # debug, info, warn or error
  level: info
`

// GatewayConfig tunes the simulated backend. Unset rates fall back to defaults.
type GatewayConfig struct {
	Latency           *time.Duration `yaml:"latency,omitempty"`
	SubmitFailureRate *float64       `yaml:"submit_failure_rate,omitempty"`
	ItemFailureRate   *float64       `yaml:"item_failure_rate,omitempty"`
}

// FormConfig toggles request form behaviour.
type FormConfig struct {
	ClearOnSubmit    bool `yaml:"clear_on_submit"`
	RevalidateOnSave bool `yaml:"revalidate_on_save"`
}

// LoggingConfig controls the structured log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ProjectConfig models .tirereq/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Gateway GatewayConfig `yaml:"gateway"`
	Form    FormConfig    `yaml:"form"`
	Logging LoggingConfig `yaml:"logging"`
}

// Config holds the runtime configuration for tirereq.
type Config struct {
	// ProjectDir is the directory where the user ran `tirereq` from
	ProjectDir string

	// StateDir is ProjectDir/.tirereq
	StateDir string

	Project ProjectConfig
}

// InitDir creates the .tirereq directory structure in the given directory and
// writes a default config file if none exists.
//
// .tirereq/
// ├── config.yaml
// └── logs/
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return fmt.Errorf("config: create %s: %w", stateDir, err)
	}
	return ensureProjectConfig(filepath.Join(stateDir, ConfigFile))
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   filepath.Join(projectDir, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.Reload(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// LogPath returns the structured log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "tirereq.log")
}

// JournalPath returns the activity journal shown in the log panel.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// ConfigPath returns the on-disk location for the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.StateDir, ConfigFile)
}

// Reload re-reads the config file. A missing file leaves the defaults in place.
// On error the previous values are kept.
func (c *Config) Reload() error {
	parsed, err := LoadProjectConfig(c.ConfigPath())
	if err != nil {
		return err
	}
	c.Project = parsed
	return nil
}

// LoadProjectConfig reads and validates a config file.
func LoadProjectConfig(path string) (ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultProjectConfig(), nil
		}
		return ProjectConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseProjectConfig(data)
}

// ParseProjectConfig decodes config YAML and applies defaults.
func ParseProjectConfig(data []byte) (ProjectConfig, error) {
	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: parse: %w", err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: %w", err)
	}
	return parsed, nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Logging: LoggingConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	if pc.Logging.Level == "warning" {
		pc.Logging.Level = "warn"
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if err := pc.Gateway.validate(); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

func (g GatewayConfig) validate() error {
	if g.Latency != nil && *g.Latency < 0 {
		return fmt.Errorf("latency must not be negative")
	}
	if err := validateRate("submit_failure_rate", g.SubmitFailureRate); err != nil {
		return err
	}
	return validateRate("item_failure_rate", g.ItemFailureRate)
}

func validateRate(name string, rate *float64) error {
	if rate == nil {
		return nil
	}
	if *rate < 0 || *rate > 1 || *rate != *rate {
		return fmt.Errorf("%s must be between 0 and 1", name)
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

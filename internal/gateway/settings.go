package gateway

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/tirereq/internal/config"
)

// SettingsFromConfig builds Settings using the project's .tirereq config and environment overrides.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		settings := DefaultSettings()
		settings.applyEnvOverrides()
		return settings.normalized()
	}
	return SettingsFromProject(cfg.Project)
}

// SettingsFromProject builds Settings from a parsed config file. The config
// watcher calls it on every reload.
func SettingsFromProject(pc config.ProjectConfig) Settings {
	settings := DefaultSettings()
	raw := pc.Gateway
	if raw.Latency != nil {
		settings.Latency = *raw.Latency
	}
	if raw.SubmitFailureRate != nil {
		settings.SubmitFailureRate = *raw.SubmitFailureRate
	}
	if raw.ItemFailureRate != nil {
		settings.ItemFailureRate = *raw.ItemFailureRate
	}
	settings.applyEnvOverrides()
	return settings.normalized()
}

func (s *Settings) applyEnvOverrides() {
	if s == nil {
		return
	}
	if value := strings.TrimSpace(os.Getenv("TIREREQ_LATENCY")); value != "" {
		if latency, err := time.ParseDuration(value); err == nil && latency >= 0 {
			s.Latency = latency
		}
	}
	if value := strings.TrimSpace(os.Getenv("TIREREQ_SUBMIT_FAILURE_RATE")); value != "" {
		if rate, err := strconv.ParseFloat(value, 64); err == nil {
			s.SubmitFailureRate = rate
		}
	}
	if value := strings.TrimSpace(os.Getenv("TIREREQ_ITEM_FAILURE_RATE")); value != "" {
		if rate, err := strconv.ParseFloat(value, 64); err == nil {
			s.ItemFailureRate = rate
		}
	}
}

package gateway

import (
	"testing"
	"time"

	"github.com/kingrea/tirereq/internal/config"
)

func TestSettingsFromProjectDefaults(t *testing.T) {
	got := SettingsFromProject(config.ProjectConfig{})
	if got != DefaultSettings() {
		t.Fatalf("settings = %+v, want defaults", got)
	}
}

func TestSettingsFromProjectOverrides(t *testing.T) {
	latency := 50 * time.Millisecond
	zero := 0.0
	pc := config.ProjectConfig{Gateway: config.GatewayConfig{Latency: &latency, ItemFailureRate: &zero}}
	got := SettingsFromProject(pc)
	if got.Latency != latency || got.ItemFailureRate != 0 || got.SubmitFailureRate != DefaultSubmitFailureRate {
		t.Fatalf("settings = %+v", got)
	}
}

func TestSettingsEnvOverrides(t *testing.T) {
	t.Setenv("TIREREQ_LATENCY", "5ms")
	t.Setenv("TIREREQ_SUBMIT_FAILURE_RATE", "0.25")
	t.Setenv("TIREREQ_ITEM_FAILURE_RATE", "not-a-number")
	got := SettingsFromConfig(nil)
	if got.Latency != 5*time.Millisecond || got.SubmitFailureRate != 0.25 {
		t.Fatalf("settings = %+v", got)
	}
	if got.ItemFailureRate != DefaultItemFailureRate {
		t.Fatalf("invalid override should be ignored, got %v", got.ItemFailureRate)
	}
}

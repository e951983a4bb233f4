package feasibility_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/feasibility/assessment"
	"github.com/tailored-agentic-units/feasibility/feasibility"
)

func TestDefaultConfig(t *testing.T) {
	cfg := feasibility.DefaultConfig()

	if cfg.Policy.GoThreshold != 0.8 {
		t.Errorf("got GoThreshold %v, want 0.8", cfg.Policy.GoThreshold)
	}
	if cfg.Consumption.MREsPerPersonDay != 3.0 {
		t.Errorf("got MREsPerPersonDay %v, want 3.0", cfg.Consumption.MREsPerPersonDay)
	}
	if len(cfg.Supplies) != 2 || cfg.Supplies[0] != assessment.SupplyMREs || cfg.Supplies[1] != assessment.SupplyFuel {
		t.Errorf("got Supplies %v, want [MREs fuel]", cfg.Supplies)
	}
	if cfg.CacheSize != 256 {
		t.Errorf("got CacheSize %d, want 256", cfg.CacheSize)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := feasibility.DefaultConfig()

	source := &feasibility.Config{
		Supplies:  []string{"water"},
		Observers: []string{"slog"},
		CacheSize: 16,
		NoCache:   true,
	}
	source.Policy.CaveatThreshold = 0.6

	cfg.Merge(source)

	if cfg.Policy.CaveatThreshold != 0.6 {
		t.Errorf("got CaveatThreshold %v, want 0.6", cfg.Policy.CaveatThreshold)
	}
	if cfg.Policy.GoThreshold != 0.8 {
		t.Errorf("got GoThreshold %v, want 0.8 (preserved default)", cfg.Policy.GoThreshold)
	}
	if len(cfg.Supplies) != 1 || cfg.Supplies[0] != "water" {
		t.Errorf("got Supplies %v, want [water]", cfg.Supplies)
	}
	if cfg.CacheSize != 16 || !cfg.NoCache {
		t.Errorf("got CacheSize %d NoCache %v, want 16 true", cfg.CacheSize, cfg.NoCache)
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := feasibility.DefaultConfig()
	original := cfg

	cfg.Merge(&feasibility.Config{})

	if cfg.Policy != original.Policy {
		t.Errorf("got Policy %+v, want %+v (preserved default)", cfg.Policy, original.Policy)
	}
	if cfg.Consumption != original.Consumption {
		t.Errorf("got Consumption %+v, want %+v", cfg.Consumption, original.Consumption)
	}
	if cfg.MailboxSize != original.MailboxSize {
		t.Errorf("got MailboxSize %d, want %d", cfg.MailboxSize, original.MailboxSize)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	content := `{
		"policy": {
			"go_threshold": 0.85,
			"threat_critical_level": "HIGH"
		},
		"consumption": {
			"fuel_gallons_per_hour": 40
		},
		"observers": ["slog"]
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := feasibility.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Policy.GoThreshold != 0.85 {
		t.Errorf("got GoThreshold %v, want 0.85", cfg.Policy.GoThreshold)
	}
	if cfg.Policy.ThreatCriticalLevel != assessment.ThreatHigh {
		t.Errorf("got ThreatCriticalLevel %q, want HIGH", cfg.Policy.ThreatCriticalLevel)
	}
	if cfg.Consumption.FuelGallonsPerHour != 40 {
		t.Errorf("got FuelGallonsPerHour %v, want 40", cfg.Consumption.FuelGallonsPerHour)
	}
	if cfg.Consumption.MREsPerPersonDay != 3.0 {
		t.Errorf("got MREsPerPersonDay %v, want 3.0 (preserved default)", cfg.Consumption.MREsPerPersonDay)
	}
	if len(cfg.Observers) != 1 || cfg.Observers[0] != "slog" {
		t.Errorf("got Observers %v, want [slog]", cfg.Observers)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
policy:
  wind_max_mph: 30
  comms_caution_penalty: 0.2
supplies: [MREs, fuel, water]
mailbox_size: 128
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := feasibility.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Policy.WindMaxMPH != 30 {
		t.Errorf("got WindMaxMPH %d, want 30", cfg.Policy.WindMaxMPH)
	}
	if cfg.Policy.CommsCautionPenalty != 0.2 {
		t.Errorf("got CommsCautionPenalty %v, want 0.2", cfg.Policy.CommsCautionPenalty)
	}
	if len(cfg.Supplies) != 3 {
		t.Errorf("got Supplies %v, want 3 entries", cfg.Supplies)
	}
	if cfg.MailboxSize != 128 {
		t.Errorf("got MailboxSize %d, want 128", cfg.MailboxSize)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := feasibility.LoadConfig("/nonexistent/config.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.json")

	if err := os.WriteFile(configPath, []byte("{invalid"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := feasibility.LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

package feasibility

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/feasibility/assessment"
	"github.com/tailored-agentic-units/feasibility/decision"
)

const (
	defaultCacheSize   = 256
	defaultMailboxSize = 64
)

// Config holds initialization parameters for the feasibility service.
// Each section delegates to that subsystem's Merge.
type Config struct {
	Policy      decision.Policy             `json:"policy" yaml:"policy"`
	Consumption assessment.ConsumptionRates `json:"consumption" yaml:"consumption"`
	Supplies    []string                    `json:"supplies,omitempty" yaml:"supplies,omitempty"`
	Observers   []string                    `json:"observers,omitempty" yaml:"observers,omitempty"`
	CacheSize   int                         `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
	NoCache     bool                        `json:"no_cache,omitempty" yaml:"no_cache,omitempty"`
	MailboxSize int                         `json:"mailbox_size,omitempty" yaml:"mailbox_size,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Policy:      decision.DefaultPolicy(),
		Consumption: assessment.DefaultConsumptionRates(),
		Supplies:    []string{assessment.SupplyMREs, assessment.SupplyFuel},
		CacheSize:   defaultCacheSize,
		MailboxSize: defaultMailboxSize,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Policy.Merge(&source.Policy)
	c.Consumption.Merge(&source.Consumption)

	if len(source.Supplies) > 0 {
		c.Supplies = source.Supplies
	}
	if len(source.Observers) > 0 {
		c.Observers = source.Observers
	}
	if source.CacheSize > 0 {
		c.CacheSize = source.CacheSize
	}
	if source.NoCache {
		c.NoCache = true
	}
	if source.MailboxSize > 0 {
		c.MailboxSize = source.MailboxSize
	}
}

// LoadConfig reads a JSON or YAML config file (chosen by extension), merges
// it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

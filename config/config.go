package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"school-transport-service/core/orchestrator"
	"school-transport-service/core/replacement"
	"school-transport-service/infra/metrics"
	"school-transport-service/infra/mqtt"
)

// ReplacementConfig tunes the suggestion engine.
type ReplacementConfig struct {
	// FreshnessMinutes is how long a cached suggestion stays valid.
	FreshnessMinutes int                 `json:"freshness_minutes"`
	Weights          replacement.Weights `json:"weights"`
}

// SetDefaults applies sane defaults.
func (c *ReplacementConfig) SetDefaults() {
	if c.FreshnessMinutes == 0 {
		c.FreshnessMinutes = int(replacement.DefaultFreshness / time.Minute)
	}
	if c.Weights == (replacement.Weights{}) {
		c.Weights = replacement.DefaultWeights()
	}
}

// Validate checks the tuning is usable.
func (c ReplacementConfig) Validate() error {
	if c.FreshnessMinutes < 0 {
		return fmt.Errorf("freshness_minutes must not be negative")
	}
	if c.Weights.Disruption < 0 || c.Weights.HoursFit < 0 || c.Weights.VehicleFit < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	return nil
}

// Freshness returns the freshness window as a duration.
func (c ReplacementConfig) Freshness() time.Duration {
	return time.Duration(c.FreshnessMinutes) * time.Minute
}

// Config aggregates every component configuration.
type Config struct {
	MQTT         mqtt.Config         `json:"mqtt"`
	Orchestrator orchestrator.Config `json:"orchestrator"`
	Replacement  ReplacementConfig   `json:"replacement"`
	Metrics      metrics.Config      `json:"metrics"`
	// FixturesPath points at the seed data file for directories and
	// schedules. Empty means start empty.
	FixturesPath string `json:"fixtures_path"`
}

// Load reads the configuration from a JSON or YAML file, with optional
// environment overrides prefixed ST_ (double underscore as separator).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("ST_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "st_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Orchestrator.SetDefaults()
	cfg.Replacement.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Orchestrator.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Replacement.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

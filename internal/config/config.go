package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for FleetPlan.
type Config struct {
	APIServer APIServerConfig `yaml:"apiServer"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Database  DatabaseConfig  `yaml:"database"`
	Audit     AuditConfig     `yaml:"audit"`
}

type APIServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

type PricingConfig struct {
	// LiveRates enables the AWS Pricing API overlay. When false (or when the
	// API is unreachable) estimates use the built-in rate card.
	LiveRates bool `yaml:"liveRates"`
	// RefreshSchedule is a standard cron expression for table reseeds.
	RefreshSchedule string `yaml:"refreshSchedule"`
}

type AdvisorConfig struct {
	Enabled bool          `yaml:"enabled"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type DatabaseConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retentionDays"`
}

type AuditConfig struct {
	MaxEvents int `yaml:"maxEvents"` // in-memory ring size
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIServer: APIServerConfig{
			Address: "0.0.0.0",
			Port:    8080,
		},
		Pricing: PricingConfig{
			LiveRates:       false,
			RefreshSchedule: "0 */12 * * *",
		},
		Advisor: AdvisorConfig{
			Enabled: false,
			Timeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:          "/var/lib/fleetplan/fleetplan.db",
			RetentionDays: 90,
		},
		Audit: AuditConfig{
			MaxEvents: 1000,
		},
	}
}

// LoadFromFile loads config from a YAML file, overlaying on defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

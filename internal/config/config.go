// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"codeblue-sim/internal/streak"
)

// Defaults applied after decoding.
const (
	DefaultScenario     = "cardiac-arrest"
	DefaultTickInterval = "1s"
	DefaultLogLevel     = "info"
	DefaultStreakDB     = "data/streak.db"
	DefaultBaseXP       = 100
	DefaultBaseFunds    = 500
)

// StreakConfig locates the streak store and optionally replaces the tier table.
type StreakConfig struct {
	DB    string        `yaml:"db"`
	Tiers []streak.Tier `yaml:"tiers,omitempty"`
}

// RewardConfig is the base reward a won scenario pays before tier bonuses.
type RewardConfig struct {
	BaseXP    int `yaml:"base_xp"`
	BaseFunds int `yaml:"base_funds"`
}

// GreptimeConfig enables the GreptimeDB writer when Host is set.
type GreptimeConfig struct {
	Host     string `yaml:"host"`
	Database string `yaml:"database"`
}

// OutputConfig selects event log writers in addition to stdout.
type OutputConfig struct {
	File     string          `yaml:"file"`
	TUI      bool            `yaml:"tui"`
	Greptime *GreptimeConfig `yaml:"greptime,omitempty"`
}

// AdminConfig enables the admin HTTP server when Addr is set.
type AdminConfig struct {
	Addr string `yaml:"addr"`
}

// SimulationConfig is the root configuration for a training session.
type SimulationConfig struct {
	Scenario     string       `yaml:"scenario"`
	ScenarioFile string       `yaml:"scenario_file"`
	CatalogFile  string       `yaml:"catalog_file"`
	Difficulty   int          `yaml:"difficulty"`
	TickInterval string       `yaml:"tick_interval"`
	Seed         uint64       `yaml:"seed"`
	SessionID    string       `yaml:"session_id"`
	LogLevel     string       `yaml:"log_level"`
	Streak       StreakConfig `yaml:"streak"`
	Reward       RewardConfig `yaml:"reward"`
	Output       OutputConfig `yaml:"output"`
	Admin        AdminConfig  `yaml:"admin"`
}

// Default returns a configuration with every default applied.
func Default() *SimulationConfig {
	cfg := &SimulationConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load loads YAML config and validates it against a CUE schema. An empty
// cueSchemaPath uses the embedded schema.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// Validate with CUE first
	if err := ValidateWithCue(configPath, data, cueSchemaPath); err != nil {
		return nil, fmt.Errorf("config %s: %w", configPath, err)
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *SimulationConfig) applyDefaults() {
	if c.Scenario == "" && c.ScenarioFile == "" {
		c.Scenario = DefaultScenario
	}
	if c.TickInterval == "" {
		c.TickInterval = DefaultTickInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Streak.DB == "" {
		c.Streak.DB = DefaultStreakDB
	}
	if c.Reward.BaseXP == 0 {
		c.Reward.BaseXP = DefaultBaseXP
	}
	if c.Reward.BaseFunds == 0 {
		c.Reward.BaseFunds = DefaultBaseFunds
	}
}

// ApplyEnv overrides fields from TICK_INTERVAL, SESSION_ID and STREAK_DB.
func (c *SimulationConfig) ApplyEnv() error {
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("TICK_INTERVAL: %w", err)
		}
		c.TickInterval = v
	}
	if v := os.Getenv("SESSION_ID"); v != "" {
		c.SessionID = v
	}
	if v := os.Getenv("STREAK_DB"); v != "" {
		c.Streak.DB = v
	}
	return nil
}

// Tick returns the parsed tick interval.
func (c *SimulationConfig) Tick() (time.Duration, error) {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("tick_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick_interval must be positive, got %s", d)
	}
	return d, nil
}

// TierTable returns the configured tiers, or streak.DefaultTiers when none are set.
func (c *SimulationConfig) TierTable() streak.Table {
	if len(c.Streak.Tiers) == 0 {
		return streak.DefaultTiers
	}
	return streak.Table(c.Streak.Tiers).Sorted()
}

// Package daemon manages the Ember daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Engine    EngineConfig    `toml:"engine"`
	Coaching  CoachingConfig  `toml:"coaching"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// EngineConfig exposes the accountability engine's tuning parameters.
// These are product knobs, not correctness invariants.
type EngineConfig struct {
	StreakThreshold   float64 `toml:"streak_threshold"`    // min completion rate to keep a streak
	ProgressStepCap   float64 `toml:"progress_step_cap"`   // max progress points per check-in
	HighRiskThreshold float64 `toml:"high_risk_threshold"` // drift date predicted at/above this
	EventWindowDays   int     `toml:"event_window_days"`   // feature extraction lookback
	HorizonDays       int     `toml:"horizon_days"`        // drift prediction window
}

// CoachingConfig controls the Language Model Service collaborator.
// Leave endpoint empty to disable LLM replies entirely.
type CoachingConfig struct {
	LLMEndpoint string `toml:"llm_endpoint"`
	LLMAPIKey   string `toml:"llm_api_key"`
	LLMModel    string `toml:"llm_model"`
}

// TelemetryConfig controls observability.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8490,
		},
		Engine: EngineConfig{
			StreakThreshold:   0.6,
			ProgressStepCap:   5,
			HighRiskThreshold: 0.7,
			EventWindowDays:   30,
			HorizonDays:       14,
		},
		Coaching: CoachingConfig{
			LLMModel: "gpt-4o-mini",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from $EMBER_HOME/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(emberHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to $EMBER_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(emberHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// emberHome returns the Ember data directory.
func emberHome() string {
	if env := os.Getenv("EMBER_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ember")
}

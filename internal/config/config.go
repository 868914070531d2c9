// Package config loads service configuration from an optional YAML file
// with environment-variable overrides. Env wins over file wins over
// defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Limits struct {
	// MaxCustomers caps inline and generated instance sizes per request.
	MaxCustomers int `yaml:"maxCustomers"`
	// MaxSATimeMs caps the per-request annealing budget.
	MaxSATimeMs int `yaml:"maxSaTimeMs"`
}

type SolverDefaults struct {
	InitTemp float64 `yaml:"initTemp"`
	Cooling  float64 `yaml:"cooling"`
}

type Config struct {
	Addr        string         `yaml:"addr"`
	DatabaseURL string         `yaml:"databaseUrl"`
	RedisURL    string         `yaml:"redisUrl"`
	RateRPS     float64        `yaml:"rateRps"`
	RateBurst   int            `yaml:"rateBurst"`
	Limits      Limits         `yaml:"limits"`
	Solver      SolverDefaults `yaml:"solver"`
}

func Default() Config {
	return Config{
		Addr:      ":8080",
		RateRPS:   20,
		RateBurst: 40,
		Limits:    Limits{MaxCustomers: 1000, MaxSATimeMs: 60_000},
		Solver:    SolverDefaults{InitTemp: 1.0, Cooling: 0.997},
	}
}

// Load reads the YAML file at path (skipped when path is empty), then
// applies env overrides: PORT, DATABASE_URL, REDIS_URL.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	if c.RateRPS < 0 || c.RateBurst < 0 {
		return fmt.Errorf("config: rate limits must be >= 0")
	}
	if c.Solver.Cooling != 0 && (c.Solver.Cooling <= 0 || c.Solver.Cooling >= 1) {
		return fmt.Errorf("config: cooling must be in (0,1)")
	}
	return nil
}

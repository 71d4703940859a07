// Package btconfig loads the runtime configuration for the demo host: a
// YAML file describing which tree to run and how fast to tick it, layered
// with environment overrides loaded from .env via godotenv.
package btconfig

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the demo host's runtime configuration.
type Config struct {
	LogLevel  string  `yaml:"logLevel"`
	TreeFile  string  `yaml:"treeFile"`
	TickRate  float32 `yaml:"tickRate"`
	RandSeed  uint64  `yaml:"randSeed"`
	TreeName  string  `yaml:"treeName"`
	MaxTicks  int     `yaml:"maxTicks"`
}

func defaults() Config {
	return Config{
		LogLevel: "info",
		TreeFile: "testdata/patrol.json",
		TickRate: 0.1,
		RandSeed: 1,
		TreeName: "patrol",
		MaxTicks: 0,
	}
}

// Load reads path as YAML into a Config seeded with defaults, then applies
// any BT_-prefixed environment variables found after loading envFile (a
// missing envFile is not an error: .env is optional in production).
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("btconfig: loading %s: %w", envFile, err)
		}
	}

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("btconfig: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("btconfig: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BT_TREE_FILE"); v != "" {
		cfg.TreeFile = v
	}
	if v := os.Getenv("BT_TREE_NAME"); v != "" {
		cfg.TreeName = v
	}
	if v := os.Getenv("BT_TICK_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.TickRate = float32(f)
		}
	}
	if v := os.Getenv("BT_RAND_SEED"); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.RandSeed = u
		}
	}
	if v := os.Getenv("BT_MAX_TICKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTicks = n
		}
	}
}

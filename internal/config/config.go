package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration (config.yaml).
type Config struct {
	// SaveRoot holds one directory per world plus index.db.
	SaveRoot  string `yaml:"save_root"`
	WorldName string `yaml:"world_name"`
	Seed      int64  `yaml:"seed"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	ViewRadiusChunks   int `yaml:"view_radius_chunks"`
	AutosaveEveryTicks int `yaml:"autosave_every_ticks"`

	GenWorkers        int `yaml:"gen_workers"`
	GenQueueCapacity  int `yaml:"gen_queue_capacity"`
	GenPollIntervalMS int `yaml:"gen_poll_interval_ms"`

	IndexDB bool `yaml:"index_db"`
}

func Defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		SaveRoot:  filepath.Join(home, ".voxelkeep", "saves"),
		WorldName: "world",
		Seed:      12345,

		TickRateHz:         20,
		ViewRadiusChunks:   6,
		AutosaveEveryTicks: 600,

		GenWorkers:        2,
		GenQueueCapacity:  256,
		GenPollIntervalMS: 100,

		IndexDB: true,
	}
}

// Load reads config.yaml at path, layering it over defaults. An empty
// path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config.yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) Normalize() {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.ViewRadiusChunks < 1 {
		c.ViewRadiusChunks = 1
	}
	if c.AutosaveEveryTicks <= 0 {
		c.AutosaveEveryTicks = 600
	}
	if c.GenWorkers < 1 {
		c.GenWorkers = 1
	}
	if c.GenQueueCapacity < 1 {
		c.GenQueueCapacity = 256
	}
	if c.GenPollIntervalMS <= 0 {
		c.GenPollIntervalMS = 100
	}
}

// GenPollInterval is the worker poll bound as a duration.
func (c Config) GenPollInterval() time.Duration {
	return time.Duration(c.GenPollIntervalMS) * time.Millisecond
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SaveRoot) == "" {
		return fmt.Errorf("save_root must not be empty")
	}
	if strings.TrimSpace(c.WorldName) == "" {
		return fmt.Errorf("world_name must not be empty")
	}
	if strings.ContainsAny(c.WorldName, `/\`) {
		return fmt.Errorf("world_name must not contain path separators: %q", c.WorldName)
	}
	return nil
}

// WorldDir is the save directory for the configured world.
func (c Config) WorldDir() string {
	return filepath.Join(c.SaveRoot, c.WorldName)
}

// IndexDBPath is the shared index database location.
func (c Config) IndexDBPath() string {
	return filepath.Join(c.SaveRoot, "index.db")
}

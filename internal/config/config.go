package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Database struct {
		// Driver is one of "sqlite", "postgres" or "memory".
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Quiz struct {
		Dir string `yaml:"dir"`
	} `yaml:"quiz"`
	Report struct {
		Days     int    `yaml:"days"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"report"`
}

// Load reads YAML config from path. A missing file yields the defaults so the
// tool runs on a fresh station without any setup.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return withDefaults(cfg), nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return withDefaults(cfg), nil
}

func withDefaults(cfg Config) Config {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "quizdesk.db"
	}
	if cfg.Quiz.Dir == "" {
		cfg.Quiz.Dir = "quizzes"
	}
	if cfg.Report.Days <= 0 {
		cfg.Report.Days = 5
	}
	return cfg
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

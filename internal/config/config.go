package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Dataset   DatasetConfig    `yaml:"dataset"`
	Database  DatabaseConfig   `yaml:"database"`
	Hermes    HermesConfig     `yaml:"hermes"`
	Selection selection.Bounds `yaml:"selection"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
	Logging   LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

// Dataset sources.
const (
	SourceExcel    = "excel"
	SourcePostgres = "postgres"
)

type DatasetConfig struct {
	Source      string  `yaml:"source"`
	Path        string  `yaml:"path"`
	Sheet       string  `yaml:"sheet"`
	YieldColumn string  `yaml:"yield_column"`
	UTSColumn   string  `yaml:"uts_column"`
	GradeColumn string  `yaml:"grade_column"`
	Density     float64 `yaml:"density"`
	Watch       bool    `yaml:"watch"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Dataset: DatasetConfig{
			Source:      SourceExcel,
			Path:        "Final_Steel_Selection_Results.xlsx",
			YieldColumn: "Yield_Strength",
			UTSColumn:   "UTS",
			GradeColumn: "Steel_Grade",
			Density:     selection.DefaultDensity,
			Watch:       true,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Selection: selection.DefaultBounds(),
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case SourceExcel:
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path required for source %q", SourceExcel)
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url required for source %q", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown dataset source %q", c.Dataset.Source)
	}
	if c.Dataset.Density <= 0 {
		return fmt.Errorf("dataset.density must be positive, got %v", c.Dataset.Density)
	}
	b := c.Selection
	if b.MinFactorOfSafety <= 0 || b.MaxFactorOfSafety < b.MinFactorOfSafety {
		return fmt.Errorf("invalid factor of safety range [%v, %v]", b.MinFactorOfSafety, b.MaxFactorOfSafety)
	}
	if b.DefaultFactorOfSafety < b.MinFactorOfSafety || b.DefaultFactorOfSafety > b.MaxFactorOfSafety {
		return fmt.Errorf("default factor of safety %v outside [%v, %v]", b.DefaultFactorOfSafety, b.MinFactorOfSafety, b.MaxFactorOfSafety)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ALLOY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ALLOY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("ALLOY_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("ALLOY_DATASET_SOURCE"); v != "" {
		cfg.Dataset.Source = v
	}
	if v := os.Getenv("ALLOY_DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("ALLOY_DATASET_SHEET"); v != "" {
		cfg.Dataset.Sheet = v
	}
	if v := os.Getenv("ALLOY_DATASET_DENSITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Dataset.Density = f
		}
	}
	if v := os.Getenv("ALLOY_DATASET_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Dataset.Watch = b
		}
	}
	if v := os.Getenv("ALLOY_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ALLOY_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("ALLOY_RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("ALLOY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ALLOY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

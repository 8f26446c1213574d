package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultSummaryLimit = 200

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Rules    string         `yaml:"rules"`
	Worlds   string         `yaml:"worlds"`
	Share    ShareConfig    `yaml:"share"`
	Scripts  ScriptsConfig  `yaml:"scripts"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ShareConfig struct {
	SummaryLimit int `yaml:"summary_limit"`
}

type ScriptsConfig struct {
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if cfg.Share.SummaryLimit == 0 {
		cfg.Share.SummaryLimit = DefaultSummaryLimit
	}

	return &cfg, nil
}

// DatabaseDriver reports which store backend a DSN selects.
func DatabaseDriver(dsn string) (string, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database dsn scheme: %q", dsn)
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if _, err := DatabaseDriver(cfg.Database.DSN); err != nil {
		return err
	}
	if cfg.Share.SummaryLimit < 0 {
		return fmt.Errorf("share summary_limit must not be negative")
	}
	for i, path := range cfg.Scripts.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("script path %d is empty", i)
		}
	}

	return nil
}

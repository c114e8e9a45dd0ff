package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const DefaultDSN = "sqlite://realmlog.db"

// DefaultFiles are the config names looked up in the working directory, in
// order.
var DefaultFiles = []string{"realmlog.yaml", "realmlog.yml", "realmlog.toml"}

type ProjectConfig struct {
	Project  string         `yaml:"project" toml:"project"`
	Version  int            `yaml:"version" toml:"version"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Game     GameConfig     `yaml:"game" toml:"game"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" toml:"dsn"`
}

type GameConfig struct {
	InvestMode string `yaml:"invest_mode" toml:"invest_mode"`
	// Layout is a path to a layout file, relative to the config file.
	Layout string `yaml:"layout" toml:"layout"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

func Default() *ProjectConfig {
	cfg := &ProjectConfig{Project: "realmlog", Version: 1}
	applyDefaults(cfg)
	return cfg
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)
	if cfg.Game.Layout != "" && !filepath.IsAbs(cfg.Game.Layout) {
		cfg.Game.Layout = filepath.Join(filepath.Dir(path), cfg.Game.Layout)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// FindProjectConfig returns the first default config file in dir, or "" when
// there is none.
func FindProjectConfig(dir string) string {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func applyDefaults(cfg *ProjectConfig) {
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		cfg.Database.DSN = DefaultDSN
	}
	if cfg.Game.InvestMode == "" {
		cfg.Game.InvestMode = "pool"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	dsn := cfg.Database.DSN
	if !strings.HasPrefix(dsn, "sqlite://") && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("database dsn must start with sqlite:// or postgres://")
	}

	switch cfg.Game.InvestMode {
	case "pool", "direct":
	default:
		return fmt.Errorf("unknown invest_mode %q (want pool or direct)", cfg.Game.InvestMode)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}

	return nil
}

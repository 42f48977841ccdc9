package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file at the project root.
const FileName = "coa.yaml"

// Storage drivers.
const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Environment variables that override the file.
const (
	EnvDatabaseDSN = "COA_DATABASE_DSN"
	EnvHTTPAddr    = "COA_HTTP_ADDR"
)

// Config represents the top-level coa.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Display  DisplayConfig  `yaml:"display"`
	Git      GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business that owns the chart.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// StorageConfig selects where accounts are kept.
type StorageConfig struct {
	Driver string `yaml:"driver"`        // "csv" or "postgres"
	DSN    string `yaml:"dsn,omitempty"` // postgres only
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	CORSOrigins string `yaml:"cors_origins,omitempty"` // comma-separated
}

// DisplayConfig controls tree rendering.
type DisplayConfig struct {
	Language string `yaml:"language"` // "en" or "ar"
	Indent   int    `yaml:"indent"`   // spaces per level
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a coa.yaml file from disk and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	// Keys missing from the file keep their defaults; explicit values win.
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Storage: StorageConfig{
			Driver: DriverCSV,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Display: DisplayConfig{
			Language: "en",
			Indent:   2,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Chart Keeper",
			AuthorEmail: "chart@ledgerdesk.dev",
		},
	}
}

// Validate rejects settings the commands cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverCSV:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("invalid config: storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Display.Language != "en" && c.Display.Language != "ar" {
		return fmt.Errorf("invalid config: display.language must be en or ar, got %q", c.Display.Language)
	}
	if c.Display.Indent < 0 {
		return fmt.Errorf("invalid config: display.indent must not be negative, got %d", c.Display.Indent)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.Server.Addr = v
	}
}

// fillDefaults covers keys present in the file but left empty.
func (c *Config) fillDefaults() {
	def := Default(c.Business.Name)
	if c.Storage.Driver == "" {
		c.Storage.Driver = def.Storage.Driver
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Display.Language == "" {
		c.Display.Language = def.Display.Language
	}
}

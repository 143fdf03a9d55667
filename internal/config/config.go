// Package config loads the server and CLI configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Catalog sources.
const (
	SourceEmbedded = "embedded"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type CatalogConfig struct {
	Source      string `yaml:"source"` // embedded, sqlite, postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	LoadTimeout string `yaml:"load_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
			AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Catalog: CatalogConfig{
			Source:      SourceEmbedded,
			SQLitePath:  "slic.db",
			LoadTimeout: "30s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if path := os.Getenv("SLIC_DB_PATH"); path != "" {
		c.Catalog.SQLitePath = path
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Catalog.PostgresDSN = dsn
	}
	if src := os.Getenv("BV_CATALOG_SOURCE"); src != "" {
		c.Catalog.Source = src
	}
	if lvl := os.Getenv("BV_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// GetShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetLoadTimeout returns the catalog population timeout.
func (c *Config) GetLoadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.LoadTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var err error
	if c.Server.Addr == "" {
		err = multierr.Append(err, fmt.Errorf("server.addr is empty"))
	}
	if _, e := time.ParseDuration(c.Server.ShutdownTimeout); e != nil {
		err = multierr.Append(err, fmt.Errorf("server.shutdown_timeout: %w", e))
	}
	if _, e := time.ParseDuration(c.Catalog.LoadTimeout); e != nil {
		err = multierr.Append(err, fmt.Errorf("catalog.load_timeout: %w", e))
	}

	switch c.Catalog.Source {
	case SourceEmbedded:
	case SourceSQLite:
		if c.Catalog.SQLitePath == "" {
			err = multierr.Append(err, fmt.Errorf("catalog.sqlite_path is required for the sqlite source"))
		}
	case SourcePostgres:
		if c.Catalog.PostgresDSN == "" {
			err = multierr.Append(err, fmt.Errorf("catalog.postgres_dsn is required for the postgres source (set DATABASE_URL)"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("invalid catalog source %q (valid: embedded, sqlite, postgres)", c.Catalog.Source))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}
	return err
}

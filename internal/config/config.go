// Package config loads runtime configuration for the API and UI servers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting.
type Config struct {
	Env  string   `yaml:"env" env:"BARANG_ENV" env-default:"local" env-description:"deployment environment (local, dev, prod)"`
	Log  Log      `yaml:"log"`
	DB   Database `yaml:"db"`
	HTTP HTTP     `yaml:"http"`
	UI   UI       `yaml:"ui"`
}

// Log configures structured logging.
type Log struct {
	Format string `yaml:"format" env:"BARANG_LOG_FORMAT" env-description:"log format (text, json, pretty); defaults to pretty for local, json otherwise"`
	Level  string `yaml:"level" env:"BARANG_LOG_LEVEL" env-description:"minimum log level; defaults to info for prod, debug otherwise"`
	File   string `yaml:"file" env:"BARANG_LOG_FILE" env-description:"also append logs to this file"`
}

// Database configures the item store.
type Database struct {
	Driver string `yaml:"driver" env:"BARANG_DB_DRIVER" env-default:"sqlite" env-description:"database driver (sqlite, postgres)"`
	DSN    string `yaml:"dsn" env:"BARANG_DB_DSN" env-default:"barang.sqlite3" env-description:"SQLite path or PostgreSQL connection string"`
}

// HTTP configures the item API server.
type HTTP struct {
	Addr            string        `yaml:"addr" env:"BARANG_HTTP_ADDR" env-default:":3000" env-description:"API listen address"`
	AllowedOrigin   string        `yaml:"allowed_origin" env:"BARANG_ALLOWED_ORIGIN" env-default:"http://localhost:5173" env-description:"the only origin allowed to call the API from a browser"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BARANG_SHUTDOWN_TIMEOUT" env-default:"5s" env-description:"graceful shutdown deadline"`
}

// UI configures the form UI server.
type UI struct {
	Addr   string `yaml:"addr" env:"BARANG_UI_ADDR" env-default:":5173" env-description:"UI listen address"`
	APIURL string `yaml:"api_url" env:"BARANG_API_URL" env-default:"http://localhost:3000" env-description:"base URL of the item API"`
}

// Load reads configuration. Variables from a .env file in the working
// directory are added to the environment first, without overriding it. If
// path is set, the YAML file is read and environment variables override it;
// otherwise only the environment and defaults are used.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.Log.applyEnvDefaults(cfg.Env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvDefaults fills the log format and level left unset by the file and
// environment: readable debug output locally, JSON elsewhere, and no debug
// records in production.
func (l *Log) applyEnvDefaults(env string) {
	format, level := "json", "debug"
	switch env {
	case "local":
		format = "pretty"
	case "prod":
		level = "info"
	}

	if l.Format == "" {
		l.Format = format
	}
	if l.Level == "" {
		l.Level = level
	}
}

// Validate rejects unsupported option values.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}

	switch c.Log.Format {
	case "text", "json", "pretty":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}

	switch c.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("unsupported environment %q", c.Env)
	}

	if c.DB.DSN == "" {
		return errors.New("database DSN is required")
	}
	return nil
}

// Usage describes every environment variable, for help output.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

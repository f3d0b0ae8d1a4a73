package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the exhibition engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (the database password) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:""`
	Version  string `yaml:"-"` // Set at load time, not from config

	// MigrationsPath is the directory holding golang-migrate SQL files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	Database DatabaseConfig `yaml:"database"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"exhibitions"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"exhibitions"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// IngestConfig holds ingestion behavior settings.
type IngestConfig struct {
	// Workers bounds how many museum batches run concurrently. Keep it
	// below the database connection limit.
	Workers int `yaml:"workers" env:"INGEST_WORKERS" env-default:"4"`
	// RescrapeAfterDays is the staleness window for MuseumsDue.
	RescrapeAfterDays int `yaml:"rescrape_after_days" env:"INGEST_RESCRAPE_AFTER_DAYS" env-default:"90"`
	// LeadArtistMain assigns role "main" to the first-listed artist of a
	// record; when false every artist is "featured" unless the caller says
	// otherwise.
	LeadArtistMain bool `yaml:"lead_artist_main" env:"INGEST_LEAD_ARTIST_MAIN" env-default:"true"`
}

// RescrapeWindow converts the configured staleness window to a duration.
func (c IngestConfig) RescrapeWindow() time.Duration {
	return time.Duration(c.RescrapeAfterDays) * 24 * time.Hour
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is fine: everything has an env default.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Ingest.Workers < 1 {
		return nil, fmt.Errorf("ingest.workers must be at least 1, got %d", cfg.Ingest.Workers)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers understood by storage.Open.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`
	DeveloperID   string `env:"DEVELOPER_ID"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"json"`
	StoragePath   string `env:"STORAGE_PATH"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
	LogFile   string `env:"LOG_FILE"`

	CooldownSweepInterval time.Duration `env:"COOLDOWN_SWEEP_INTERVAL" envDefault:"1m"`
	IgnoreBots            bool          `env:"IGNORE_BOTS" envDefault:"true"`
	ConsoleAuthLevel      int           `env:"CONSOLE_AUTH_LEVEL" envDefault:"100"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverJSON:
		if c.StoragePath == "" {
			c.StoragePath = "datastore.json"
		}
	case DriverSQLite:
		if c.StoragePath == "" {
			c.StoragePath = "datastore.db"
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverJSON, DriverSQLite, c.StorageDriver)
	}
	if c.CooldownSweepInterval <= 0 {
		return fmt.Errorf("COOLDOWN_SWEEP_INTERVAL must be positive, got %s", c.CooldownSweepInterval)
	}
	return nil
}

// RequireDiscord reports an error when the Discord adapter cannot start.
func (c *Config) RequireDiscord() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	return nil
}

// IsDeveloper reports whether userID is the configured bot owner.
func (c *Config) IsDeveloper(userID string) bool {
	return c.DeveloperID != "" && c.DeveloperID == userID
}

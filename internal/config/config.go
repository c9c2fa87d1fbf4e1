package config

import (
	"fmt"

	"valentinelink/internal/shortener"
)

// Database drivers supported by the link store.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Game      GameConfig
	Logging   LoggingConfig
	Shortener shortener.Config
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port      string
	ServerURL string
}

// DatabaseConfig holds database-related configuration. Path is the
// SQLite file, DSN the Postgres connection string; only the one
// matching Driver is consulted.
type DatabaseConfig struct {
	Driver string
	Path   string
	DSN    string
}

// GameConfig holds game tuning configuration
type GameConfig struct {
	SettingsPath string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Verbose bool
}

// New creates a new config with the given parameters
func New(port, serverURL, driver, dbPath, dbDSN, settingsPath string, verbose bool, shortenerConfig shortener.Config) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:      port,
			ServerURL: serverURL,
		},
		Database: DatabaseConfig{
			Driver: driver,
			Path:   dbPath,
			DSN:    dbDSN,
		},
		Game: GameConfig{
			SettingsPath: settingsPath,
		},
		Logging: LoggingConfig{
			Verbose: verbose,
		},
		Shortener: shortenerConfig,
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Server.ServerURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path cannot be empty")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Shortener.Length <= 0 {
		return fmt.Errorf("shortener id length must be positive, got: %d", c.Shortener.Length)
	}

	return nil
}

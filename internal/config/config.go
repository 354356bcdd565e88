package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Engine   EngineConfig   `mapstructure:"engine"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile enables rotating file output in addition to stdout when set.
	LogFile         string        `mapstructure:"log_file"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the store implementation: postgres (pgx), sqlite (modernc) or sqlite3 (cgo).
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite sqlite3"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
}

// IsSQLite reports whether the configured driver is one of the SQLite drivers.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite" || d.Driver == "sqlite3"
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// CatalogConfig locates the challenge and reward catalog.
type CatalogConfig struct {
	// Path to a catalog JSON file. Empty uses the embedded default catalog.
	Path string `mapstructure:"path"`
}

// EngineConfig tunes the rewards engine.
type EngineConfig struct {
	LockTimeout        time.Duration `mapstructure:"lock_timeout"        validate:"gt=0"`
	RecentTransactions int           `mapstructure:"recent_transactions" validate:"gt=0"`
	VerifyLedger       bool          `mapstructure:"verify_ledger"`
	GraceWindowDays    int           `mapstructure:"grace_window_days"   validate:"gt=0"`
	FallbackCount      int           `mapstructure:"fallback_count"      validate:"gt=0"`
}

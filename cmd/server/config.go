package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/ecorewards-api/internal/config"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
)

// loadAppConfig loads the configuration from the environment and config.yaml.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger installs the application logger and logs the loaded
// configuration without secrets.
func setupAppLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	log, closer, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("catalog_embedded", cfg.Catalog.Path == ""),
		slog.Bool("verify_ledger", cfg.Engine.VerifyLedger))
	log.Debug("engine configuration",
		slog.Duration("lock_timeout", cfg.Engine.LockTimeout),
		slog.Int("grace_window_days", cfg.Engine.GraceWindowDays),
		slog.Int("fallback_count", cfg.Engine.FallbackCount),
		slog.Int("recent_transactions", cfg.Engine.RecentTransactions))
	return log, closer, nil
}

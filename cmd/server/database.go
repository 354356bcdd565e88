package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/ecorewards-api/internal/config"
	"github.com/phrazzld/ecorewards-api/internal/platform/migrations"
	"github.com/phrazzld/ecorewards-api/internal/platform/sqlite"

	// Registers "pgx" for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Registers "sqlite3"; requires cgo.
	_ "github.com/mattn/go-sqlite3"
)

// setupAppDatabase opens the configured database and returns it with the
// migration dialect matching its driver.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, migrations.Dialect, error) {
	if cfg.IsSQLite() {
		db, err := sqlite.Open(ctx, cfg.Driver, cfg.URL)
		if err != nil {
			return nil, "", err
		}
		log.Info("database connection established",
			slog.String("driver", cfg.Driver))
		return db, migrations.SQLite, nil
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(max(1, cfg.MaxOpenConns/2))
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established",
		slog.String("driver", cfg.Driver),
		slog.Int("max_open_conns", cfg.MaxOpenConns))
	return db, migrations.Postgres, nil
}

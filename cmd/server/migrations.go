package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/ecorewards-api/internal/platform/migrations"
)

// runMigrations executes a migrate subcommand. Status output goes to out.
func runMigrations(
	ctx context.Context,
	db *sql.DB,
	dialect migrations.Dialect,
	command string,
	log *slog.Logger,
	out io.Writer,
) error {
	log.Info("executing migrations",
		slog.String("command", command),
		slog.String("dialect", string(dialect)))

	switch command {
	case "", "up":
		return migrations.Up(ctx, db, dialect, log)
	case "down":
		return migrations.Down(ctx, db, dialect, log)
	case "status":
		statuses, err := migrations.Status(ctx, db, dialect)
		if err != nil {
			return err
		}
		return printMigrationStatus(out, statuses)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}

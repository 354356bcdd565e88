package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/platform/migrations"
	"github.com/phrazzld/ecorewards-api/internal/service/auth"
)

// runContext is passed to every command's Run method.
type runContext struct {
	Stdout io.Writer
}

type serveCmd struct {
	Migrate bool `help:"Apply pending migrations before serving."`
}

func (c *serveCmd) Run(rc *runContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	log, logCloser, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	db, dialect, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if c.Migrate {
		if err := migrations.Up(ctx, db, dialect, log); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

type migrateCmd struct {
	Command string `arg:"" optional:"" enum:"up,down,status" default:"up" help:"One of up, down or status."`
}

func (c *migrateCmd) Run(rc *runContext) error {
	ctx := context.Background()

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	log, logCloser, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	db, dialect, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return runMigrations(ctx, db, dialect, c.Command, log, rc.Stdout)
}

type tokenCmd struct {
	User string `required:"" help:"User id (UUID) the token is issued for."`
}

func (c *tokenCmd) Run(rc *runContext) error {
	userID, err := uuid.Parse(c.User)
	if err != nil || userID == uuid.Nil {
		return fmt.Errorf("invalid user id %q", c.User)
	}

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	token, err := jwtService.GenerateToken(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	_, err = fmt.Fprintln(rc.Stdout, token)
	return err
}

func printMigrationStatus(w io.Writer, statuses []migrations.MigrationStatus) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tFILE")
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, state, s.Path)
	}
	return tw.Flush()
}

// Package main implements the ecorewards API server: the HTTP surface of the
// habit tracker, wallet ledger and recommendation engine, plus migration and
// token tooling.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type cli struct {
	Version kong.VersionFlag `help:"Print the version and exit."`
	EnvFile string           `help:"Dotenv file loaded before configuration." default:".env" type:"path"`

	Serve   serveCmd   `cmd:"" help:"Run the HTTP server." default:"1"`
	Migrate migrateCmd `cmd:"" help:"Apply, roll back or inspect database migrations."`
	Token   tokenCmd   `cmd:"" help:"Print an access token for a user (local testing)."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("ecorewards-api"),
		kong.Description("Habit-formation rewards engine"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	if err := loadEnvFile(c.EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(&runContext{Stdout: os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

package testutils

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	// pgx registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/ecorewards-api/internal/platform/migrations"
	"github.com/phrazzld/ecorewards-api/internal/platform/sqlite"
	"github.com/stretchr/testify/require"
)

// IsIntegrationTestEnvironment reports whether DATABASE_URL points at a
// PostgreSQL database for integration tests.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv("DATABASE_URL") != ""
}

// NewSQLiteDB returns a migrated in-memory SQLite database that is closed
// when the test ends.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, sqlite.DriverModernc, sqlite.MemoryPath)
	require.NoError(t, err, "failed to open in-memory sqlite")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(ctx, db, migrations.SQLite, nil), "failed to migrate sqlite")
	return db
}

// NewPostgresDB returns a migrated connection to the database at DATABASE_URL.
// The test is skipped when DATABASE_URL is unset.
func NewPostgresDB(t *testing.T) *sql.DB {
	t.Helper()
	if !IsIntegrationTestEnvironment() {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL test")
	}

	db, err := sql.Open("pgx", os.Getenv("DATABASE_URL"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to reach DATABASE_URL")
	require.NoError(t, migrations.Up(ctx, db, migrations.Postgres, nil), "failed to migrate postgres")
	return db
}

package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/ecorewards-api/internal/platform/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestUpStatusDown(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	statuses, err := migrations.Status(ctx, db, migrations.SQLite)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	assert.False(t, statuses[0].Applied)

	require.NoError(t, migrations.Up(ctx, db, migrations.SQLite, nil))
	for _, table := range []string{
		"active_habits", "wallets", "ledger_entries", "redemption_claims",
		"onboarding_submissions", "onboarding_answers", "badges",
	} {
		assert.True(t, tableExists(t, db, table), table)
	}

	statuses, err = migrations.Status(ctx, db, migrations.SQLite)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.True(t, s.Applied, "migration %d", s.Version)
	}

	// Re-running is a no-op.
	require.NoError(t, migrations.Up(ctx, db, migrations.SQLite, nil))

	require.NoError(t, migrations.Down(ctx, db, migrations.SQLite, nil))
	assert.False(t, tableExists(t, db, "ledger_entries"))
}

func TestLedgerIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)
	require.NoError(t, migrations.Up(ctx, db, migrations.SQLite, nil))

	_, err := db.Exec(`INSERT INTO ledger_entries (id, user_id, kind, amount, created_at)
		VALUES ('e1', 'u1', 'earn', 50, '2026-01-01T00:00:00.000000000Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE ledger_entries SET amount = 5000 WHERE id = 'e1'`)
	assert.ErrorContains(t, err, "append-only")

	_, err = db.Exec(`DELETE FROM ledger_entries WHERE id = 'e1'`)
	assert.ErrorContains(t, err, "append-only")
}

func TestSchemaRejectsInvalidRows(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)
	require.NoError(t, migrations.Up(ctx, db, migrations.SQLite, nil))

	_, err := db.Exec(`INSERT INTO ledger_entries (id, user_id, kind, amount, created_at)
		VALUES ('e1', 'u1', 'earn', -5, '2026-01-01T00:00:00.000000000Z')`)
	assert.Error(t, err, "earn entries must be positive")

	_, err = db.Exec(`INSERT INTO wallets (user_id, balance, updated_at)
		VALUES ('u1', -1, '2026-01-01T00:00:00.000000000Z')`)
	assert.Error(t, err, "balance cannot be negative")
}

func TestUnsupportedDialect(t *testing.T) {
	_, err := migrations.NewProvider(openMemoryDB(t), migrations.Dialect("mysql"))
	assert.ErrorContains(t, err, "unsupported")
}

package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/platform/sqlite"
	"github.com/phrazzld/ecorewards-api/internal/store"
	"github.com/phrazzld/ecorewards-api/internal/store/storetest"
	"github.com/phrazzld/ecorewards-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) (*sql.DB, store.Stores) {
	db := testutils.NewSQLiteDB(t)
	return db, sqlite.NewStores(db, nil)
}

func TestSQLiteStores(t *testing.T) {
	storetest.Run(t, newStores)
}

func TestDSN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		driver string
		path   string
		want   string
	}{
		{
			name:   "modernc memory",
			driver: sqlite.DriverModernc,
			path:   sqlite.MemoryPath,
			want:   "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate",
		},
		{
			name:   "modernc file uses wal",
			driver: sqlite.DriverModernc,
			path:   "/var/lib/ecorewards/rewards.db",
			want: "file:/var/lib/ecorewards/rewards.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" +
				"&_txlock=immediate&_pragma=journal_mode(WAL)",
		},
		{
			name:   "cgo driver spelling",
			driver: sqlite.DriverCgo,
			path:   "rewards.db",
			want:   "file:rewards.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL",
		},
		{
			name:   "existing query string",
			driver: sqlite.DriverModernc,
			path:   "file:rewards.db?cache=shared",
			want: "file:rewards.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" +
				"&_txlock=immediate&_pragma=journal_mode(WAL)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sqlite.DSN(tc.driver, tc.path))
		})
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", errors.New("constraint failed: UNIQUE constraint failed: badges.user_id"), store.ErrDuplicate},
		{"check", errors.New("CHECK constraint failed: balance >= 0"), store.ErrInvalidEntity},
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), store.ErrInvalidEntity},
		{"trigger", errors.New("ledger_entries is append-only"), store.ErrUpdateFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := sqlite.MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.want)
			assert.ErrorIs(t, mapped, tc.err)
		})
	}

	assert.NoError(t, sqlite.MapError(nil))
	other := errors.New("disk I/O error")
	assert.Equal(t, other, sqlite.MapError(other))
}

func TestLedgerRejectsMutation(t *testing.T) {
	db, s := newStores(t)
	ctx := context.Background()
	userID := uuid.New()

	entry, err := domain.NewEarnEntry(userID, 25, "Walk to the shop", "walk-to-shop", storeNow())
	require.NoError(t, err)
	require.NoError(t, s.Ledger.Append(ctx, entry))

	_, err = db.ExecContext(ctx, "UPDATE ledger_entries SET amount = 1000 WHERE id = ?", entry.ID.String())
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrUpdateFailed)

	_, err = db.ExecContext(ctx, "DELETE FROM ledger_entries WHERE id = ?", entry.ID.String())
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrUpdateFailed)
}

func TestOpenFileDatabase(t *testing.T) {
	path := t.TempDir() + "/rewards.db"
	db, err := sqlite.Open(context.Background(), "", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

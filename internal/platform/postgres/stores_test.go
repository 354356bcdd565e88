package postgres_test

import (
	"database/sql"
	"testing"

	"github.com/phrazzld/ecorewards-api/internal/platform/postgres"
	"github.com/phrazzld/ecorewards-api/internal/store"
	"github.com/phrazzld/ecorewards-api/internal/store/storetest"
	"github.com/phrazzld/ecorewards-api/internal/testutils"
)

// TestPostgresStores runs the store contract against DATABASE_URL.
// Each test uses fresh user IDs, so existing rows do not interfere.
func TestPostgresStores(t *testing.T) {
	if !testutils.IsIntegrationTestEnvironment() {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL store tests")
	}
	storetest.Run(t, func(t *testing.T) (*sql.DB, store.Stores) {
		db := testutils.NewPostgresDB(t)
		return db, postgres.NewStores(db, nil)
	})
}

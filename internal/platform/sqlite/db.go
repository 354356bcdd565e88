package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Pure-Go driver registered as "sqlite".
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DSN builds a data source name for path with foreign keys, a busy timeout,
// WAL journaling and immediate write transactions enabled. The two drivers
// spell connection pragmas differently.
func DSN(driver, path string) string {
	var params []string
	switch driver {
	case DriverCgo:
		params = []string{"_foreign_keys=on", "_busy_timeout=5000", "_txlock=immediate"}
		if path != MemoryPath {
			params = append(params, "_journal_mode=WAL")
		}
	default:
		params = []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)", "_txlock=immediate"}
		if path != MemoryPath {
			params = append(params, "_pragma=journal_mode(WAL)")
		}
	}

	base := path
	if !strings.HasPrefix(base, "file:") {
		base = "file:" + base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + strings.Join(params, "&")
}

// Open opens the SQLite database at path with the named driver and verifies
// the connection. The pool is limited to one connection: SQLite allows a
// single writer, and an in-memory database lives only as long as its connection.
func Open(ctx context.Context, driver, path string) (*sql.DB, error) {
	if driver == "" {
		driver = DriverModernc
	}

	db, err := sql.Open(driver, DSN(driver, path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}

const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

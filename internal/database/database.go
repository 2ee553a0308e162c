package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	_ "modernc.org/sqlite"

	"charkeep/internal/config"
)

var sqlOpen = sql.Open

// BuildSQLiteDSN constructs a DSN for the embedded SQLite record store.
// Example: file:data/charkeep.db?_pragma=busy_timeout%285000%29
func BuildSQLiteDSN(c config.StoreConfig) (string, error) {
	if c.SQLitePath == "" {
		return "", fmt.Errorf("invalid store config: sqlite path is required")
	}

	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")

	return "file:" + c.SQLitePath + "?" + q.Encode(), nil
}

// NewSQLite opens a database/sql connection using the pure-Go sqlite
// driver wrapped with otelsql instrumentation.
func NewSQLite(c config.StoreConfig) (*sql.DB, error) {
	dsn, err := BuildSQLiteDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("sqlite",
		otelsql.WithAttributes(semconv.DBSystemSqlite),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	// Single writer: sqlite serializes writes anyway, and one connection
	// avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	// Verify connectivity with a short timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

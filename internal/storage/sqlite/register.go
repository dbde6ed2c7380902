// Package sqlite registers the "sqlite" storage kind on the pure-Go
// modernc.org/sqlite driver.
//
// DSN is a file path or ":memory:"; driver options go in the URI query
// (e.g. "file:load.db?_pragma=busy_timeout(5000)").
package sqlite

import (
	"context"

	_ "modernc.org/sqlite"

	"csvload/internal/sqlgen"
	"csvload/internal/storage"
	"csvload/internal/storage/sqldb"
)

func init() {
	storage.Register("sqlite", Open)
}

// Open opens a single-connection SQLite session.
func Open(ctx context.Context, cfg storage.Config) (storage.Session, error) {
	return sqldb.Open(ctx, "sqlite", cfg.DSN, sqlgen.SQLite)
}

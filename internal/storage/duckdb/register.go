// Package duckdb registers the "duckdb" storage kind on go-duckdb.
//
// An empty DSN opens an in-memory database; otherwise DSN is a file path.
package duckdb

import (
	"context"

	_ "github.com/marcboeker/go-duckdb"

	"csvload/internal/sqlgen"
	"csvload/internal/storage"
	"csvload/internal/storage/sqldb"
)

func init() {
	storage.Register("duckdb", Open)
}

func Open(ctx context.Context, cfg storage.Config) (storage.Session, error) {
	return sqldb.Open(ctx, "duckdb", cfg.DSN, sqlgen.DuckDB)
}

// Package sqldb implements storage.Session over database/sql. The sqlite,
// mssql and duckdb backends share it; each only supplies a driver name and a
// dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"csvload/internal/sqlgen"
	"csvload/internal/storage"
)

// Session is a storage.Session backed by a *sql.DB pinned to one connection.
type Session struct {
	db      *sql.DB
	dialect sqlgen.Dialect
}

// Open opens driver with dsn, pins the pool to a single connection and
// verifies connectivity.
//
// A single connection keeps session-scoped state stable: an in-memory SQLite
// or DuckDB database lives exactly as long as its connection.
func Open(ctx context.Context, driver, dsn string, d sqlgen.Dialect) (*Session, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return New(db, d), nil
}

// New wraps an existing *sql.DB. Callers own the pool settings.
func New(db *sql.DB, d sqlgen.Dialect) *Session {
	return &Session{db: db, dialect: d}
}

// DB exposes the underlying pool for read-back in tests and tools.
func (s *Session) DB() *sql.DB { return s.db }

func (s *Session) Dialect() sqlgen.Dialect { return s.dialect }

func (s *Session) Exec(ctx context.Context, stmt string) (int64, error) {
	return execResult(s.db.ExecContext(ctx, stmt))
}

func (s *Session) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Tx wraps *sql.Tx.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Exec(ctx context.Context, stmt string) (int64, error) {
	return execResult(t.tx.ExecContext(ctx, stmt))
}

func (t *Tx) Commit(context.Context) error { return t.tx.Commit() }

// Rollback aborts the transaction. Rolling back an already finished
// transaction is not an error.
func (t *Tx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// execResult reports RowsAffected, treating drivers that cannot report it
// as 0 rather than failing the statement.
func execResult(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

var (
	_ storage.Session = (*Session)(nil)
	_ storage.Tx      = (*Tx)(nil)
)

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"csvload/internal/sqlgen"
	"csvload/internal/storage"
)

/*
Session implements storage.Session for PostgreSQL on a single pgx connection.

A load needs exactly one session: DDL runs on it directly, then one
transaction carries every INSERT. A pool would add nothing but the chance of
DDL and rows landing on different backends.
*/
type Session struct {
	conn *pgx.Conn
}

// Open connects to cfg.DSN (URL or key=value form).
func Open(ctx context.Context, cfg storage.Config) (storage.Session, error) {
	conn, err := pgx.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", describe(err))
	}
	return &Session{conn: conn}, nil
}

func (s *Session) Dialect() sqlgen.Dialect { return sqlgen.Postgres }

func (s *Session) Exec(ctx context.Context, stmt string) (int64, error) {
	tag, err := s.conn.Exec(ctx, stmt)
	if err != nil {
		return 0, describe(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Session) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, describe(err)
	}
	return &Tx{tx: tx}, nil
}

// Close closes the connection. It uses a fresh context so a cancelled load
// still terminates the session cleanly.
func (s *Session) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close(context.Background())
}

// Tx wraps pgx.Tx.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) Exec(ctx context.Context, stmt string) (int64, error) {
	tag, err := t.tx.Exec(ctx, stmt)
	if err != nil {
		return 0, describe(err)
	}
	return tag.RowsAffected(), nil
}

func (t *Tx) Commit(ctx context.Context) error { return describe(t.tx.Commit(ctx)) }

// Rollback aborts the transaction; rolling back a closed transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return describe(err)
	}
	return nil
}

// ServerError carries the server's SQLSTATE alongside the pgconn error.
type ServerError struct {
	Code string
	Err  *pgconn.PgError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s (SQLSTATE %s)", e.Err.Message, e.Code)
}

func (e *ServerError) Unwrap() error { return e.Err }

// describe lifts a *pgconn.PgError into a ServerError so the SQLSTATE shows
// up in logs and CLI output. Other errors pass through unchanged.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &ServerError{Code: pgErr.Code, Err: pgErr}
	}
	return err
}

var (
	_ storage.Session = (*Session)(nil)
	_ storage.Tx      = (*Tx)(nil)
)

// Package storage defines the statement-executor contract the loader writes
// through and a registry of backend factories.
//
// Backends (postgres, sqlite, mssql, duckdb) live in sub-packages and register
// themselves from init(). Import csvload/internal/storage/all to link all of
// them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"csvload/internal/sqlgen"
)

// Executor runs one complete SQL statement and reports the affected row count.
// Drivers that cannot report a count return 0.
type Executor interface {
	Exec(ctx context.Context, stmt string) (int64, error)
}

// Tx is an open transaction. Exactly one of Commit or Rollback ends it.
type Tx interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Session is one live database session exclusively owned by its caller.
//
// Exec on the session runs outside any transaction. While a Tx from Begin is
// open, callers must route statements through the Tx.
type Session interface {
	Executor
	Begin(ctx context.Context) (Tx, error)
	Dialect() sqlgen.Dialect
	Close() error
}

// Config selects a backend and carries its connection string.
//
// Edge cases:
//   - Kind is matched after NormalizeKind, so "postgresql" and "pg" select postgres.
//   - DSN is passed through to the backend; validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// ErrUnsupportedKind is returned by Open when no backend is registered for
// the requested kind.
var ErrUnsupportedKind = errors.New("storage: unsupported kind")

// Factory opens a Session for cfg.
type Factory func(ctx context.Context, cfg Config) (Session, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

var kindAliases = map[string]string{
	"postgresql": "postgres",
	"pg":         "postgres",
	"pgx":        "postgres",
	"sqlite3":    "sqlite",
	"sqlserver":  "mssql",
	"duck":       "duckdb",
}

// NormalizeKind lower-cases kind and resolves known aliases.
func NormalizeKind(kind string) string {
	k := strings.ToLower(strings.TrimSpace(kind))
	if alias, ok := kindAliases[k]; ok {
		return alias
	}
	return k
}

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//
// Panics:
//   - If kind is empty or f is nil.
//   - If kind is already registered. Ambiguous backend selection fails fast.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	kind = NormalizeKind(kind)
	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Open constructs a Session using the registered backend factory.
//
// Errors:
//   - ErrUnsupportedKind (wrapped) if cfg.Kind is empty or not registered.
//   - Whatever error the factory returns, typically a connection failure.
func Open(ctx context.Context, cfg Config) (Session, error) {
	kind := NormalizeKind(cfg.Kind)
	if kind == "" {
		return nil, fmt.Errorf("%w: storage.kind is empty", ErrUnsupportedKind)
	}

	mu.RLock()
	f := factories[kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnsupportedKind, cfg.Kind, strings.Join(Kinds(), ", "))
	}
	cfg.Kind = kind
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

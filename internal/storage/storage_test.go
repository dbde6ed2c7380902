package storage

import (
	"context"
	"errors"
	"testing"

	"csvload/internal/sqlgen"
)

type fakeSession struct {
	cfg   Config
	execs []string
}

func (f *fakeSession) Exec(_ context.Context, stmt string) (int64, error) {
	f.execs = append(f.execs, stmt)
	return 1, nil
}

func (f *fakeSession) Begin(context.Context) (Tx, error) { return nil, errors.New("not supported") }
func (f *fakeSession) Dialect() sqlgen.Dialect           { return sqlgen.SQLite }
func (f *fakeSession) Close() error                      { return nil }

func TestRegisterAndOpen(t *testing.T) {
	Register("fake-open", func(_ context.Context, cfg Config) (Session, error) {
		return &fakeSession{cfg: cfg}, nil
	})

	s, err := Open(context.Background(), Config{Kind: " FAKE-OPEN ", DSN: "x"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	fs := s.(*fakeSession)
	if fs.cfg.Kind != "fake-open" || fs.cfg.DSN != "x" {
		t.Fatalf("factory got cfg=%+v", fs.cfg)
	}

	found := false
	for _, k := range Kinds() {
		if k == "fake-open" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Kinds() = %v, missing fake-open", Kinds())
	}
}

func TestOpen_UnsupportedKind(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"", "nope"} {
		_, err := Open(context.Background(), Config{Kind: kind})
		if !errors.Is(err, ErrUnsupportedKind) {
			t.Fatalf("Open(kind=%q) err = %v, want ErrUnsupportedKind", kind, err)
		}
	}
}

func TestRegister_Panics(t *testing.T) {
	f := func(context.Context, Config) (Session, error) { return nil, nil }
	Register("fake-dup", f)

	tests := []struct {
		name string
		kind string
		f    Factory
	}{
		{"empty kind", " ", f},
		{"nil factory", "fake-nil", nil},
		{"duplicate", "fake-dup", f},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			Register(tt.kind, tt.f)
		})
	}
}

func TestNormalizeKind(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Postgres":   "postgres",
		"postgresql": "postgres",
		"pg":         "postgres",
		"sqlite3":    "sqlite",
		"SQLServer":  "mssql",
		"duckdb":     "duckdb",
		"other":      "other",
	}
	for in, want := range tests {
		if got := NormalizeKind(in); got != want {
			t.Fatalf("NormalizeKind(%q) = %q, want %q", in, got, want)
		}
	}
}

package config

import (
	"fmt"
	"strings"

	"csvload/internal/sqlgen"
	"csvload/internal/storage"
)

// Severity classifies a validation Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding. Path is the dotted config key.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateConfig checks cfg for problems that would make a load fail before
// it reaches the database. Warnings do not block a run.
//
// requireSource is false for callers that supply the input themselves.
func ValidateConfig(cfg Config, requireSource bool) []Issue {
	var out []Issue
	errf := func(path, format string, a ...any) {
		out = append(out, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		out = append(out, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, a...)})
	}

	if requireSource && strings.TrimSpace(cfg.Source.Path) == "" {
		errf("source.path", "input is required (file path, http(s) URL or - for stdin)")
	}

	if strings.TrimSpace(cfg.Storage.Table) == "" {
		errf("storage.table", "table name is required")
	} else {
		for _, part := range strings.Split(cfg.Storage.Table, ".") {
			if strings.TrimSpace(part) == "" {
				errf("storage.table", "empty name part in %q", cfg.Storage.Table)
				break
			}
		}
	}

	kind := storage.NormalizeKind(cfg.Storage.Kind)
	if _, err := sqlgen.DialectFor(kind); err != nil {
		errf("storage.kind", "unsupported kind %q (want postgres, sqlite, mssql or duckdb)", cfg.Storage.Kind)
	} else if strings.TrimSpace(cfg.Storage.DSN) == "" {
		if kind == "duckdb" {
			warnf("storage.dsn", "empty dsn opens an in-memory duckdb database; loaded data is discarded at exit")
		} else {
			errf("storage.dsn", "dsn is required for storage kind %q", kind)
		}
	}

	if cfg.Load.SampleLimit < 1 {
		errf("load.sample_limit", "must be at least 1, got %d", cfg.Load.SampleLimit)
	}

	opts := cfg.Parser.Options
	switch h := strings.ToLower(opts.String("header", "auto")); h {
	case "", "auto", "true", "yes", "false", "no":
	default:
		errf("parser.options.header", "want auto, true or false, got %q", h)
	}
	if raw := opts.String("comma", ","); raw != "" && !strings.EqualFold(raw, "auto") {
		r, err := ParseRune(raw)
		switch {
		case err != nil:
			errf("parser.options.comma", "%v", err)
		case r == '"' || r == '\r' || r == '\n':
			errf("parser.options.comma", "%q cannot be used as a delimiter", r)
		}
	}

	switch b := strings.ToLower(strings.TrimSpace(cfg.Metrics.Backend)); b {
	case "", "none", "datadog", "dd":
	default:
		warnf("metrics.backend", "unknown backend %q; metrics disabled", cfg.Metrics.Backend)
	}

	return out
}

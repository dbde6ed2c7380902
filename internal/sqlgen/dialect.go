// Package sqlgen renders the statements a load executes: the table definition
// synthesized from inferred column types and one INSERT per data row.
//
// All statements are plain SQL text. Values are embedded as literals, escaped
// by doubling single quotes; no placeholders are used.
package sqlgen

import (
	"fmt"
	"strings"

	"csvload/internal/probe"
)

// Dialect captures the per-engine differences in identifier quoting, type
// names and table (re)creation.
//
// table arguments are raw, possibly schema-qualified names ("public.people");
// the dialect quotes them itself.
type Dialect interface {
	Name() string
	QuoteIdent(name string) string
	TypeName(t probe.SemanticType) string

	// Literal renders a normalized value for a column of type t. Dialects
	// whose storage types accept every FormatValue literal delegate to it.
	Literal(value string, t probe.SemanticType) string

	// DropTable returns the statements removing any existing table of that
	// name. They must succeed when the table does not exist.
	DropTable(table string) []string

	// CreateTable returns the statements creating the table with an
	// auto-incrementing primary key column named key, followed by defs.
	CreateTable(table, key string, defs []string) []string
}

var canonicalTypes = [...]string{
	probe.Text:    "TEXT",
	probe.Boolean: "BOOLEAN",
	probe.Integer: "INTEGER",
	probe.Float:   "FLOAT",
	probe.Date:    "DATE",
}

// CanonicalTypeName maps a SemanticType to its ANSI-style storage type name.
// Unknown values map to TEXT.
func CanonicalTypeName(t probe.SemanticType) string {
	if t < 0 || int(t) >= len(canonicalTypes) {
		return "TEXT"
	}
	return canonicalTypes[t]
}

// QuoteTable quotes a possibly schema-qualified table name part by part.
//
// Example:
//
//	QuoteTable(Postgres, "public.people") -> "public"."people"
func QuoteTable(d Dialect, name string) string {
	parts := strings.Split(strings.TrimSpace(name), ".")
	for i := range parts {
		parts[i] = d.QuoteIdent(strings.TrimSpace(parts[i]))
	}
	return strings.Join(parts, ".")
}

func doubleQuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ansiDialect covers engines that accept the canonical types and a single
// CREATE TABLE with an inline auto-increment key.
type ansiDialect struct {
	name    string
	keyType string
}

func (d ansiDialect) Name() string                       { return d.name }
func (ansiDialect) QuoteIdent(name string) string        { return doubleQuoteIdent(name) }
func (ansiDialect) TypeName(t probe.SemanticType) string { return CanonicalTypeName(t) }

func (ansiDialect) Literal(v string, t probe.SemanticType) string {
	return FormatValue(v, t)
}

func (d ansiDialect) DropTable(table string) []string {
	return []string{"DROP TABLE IF EXISTS " + QuoteTable(d, table)}
}

func (d ansiDialect) CreateTable(table, key string, defs []string) []string {
	cols := make([]string, 0, len(defs)+1)
	cols = append(cols, d.QuoteIdent(key)+" "+d.keyType)
	cols = append(cols, defs...)
	return []string{fmt.Sprintf("CREATE TABLE %s (%s)", QuoteTable(d, table), strings.Join(cols, ", "))}
}

// duckDialect backs the key column with an explicit sequence; DuckDB has no
// SERIAL or AUTOINCREMENT.
type duckDialect struct{}

func (duckDialect) Name() string                         { return "duckdb" }
func (duckDialect) QuoteIdent(name string) string        { return doubleQuoteIdent(name) }
func (duckDialect) TypeName(t probe.SemanticType) string { return CanonicalTypeName(t) }

func (duckDialect) Literal(v string, t probe.SemanticType) string {
	return FormatValue(v, t)
}

func (duckDialect) sequence(table string) string {
	return strings.TrimSpace(table) + "_id_seq"
}

func (d duckDialect) DropTable(table string) []string {
	return []string{
		"DROP TABLE IF EXISTS " + QuoteTable(d, table),
		"DROP SEQUENCE IF EXISTS " + QuoteTable(d, d.sequence(table)),
	}
}

func (d duckDialect) CreateTable(table, key string, defs []string) []string {
	seq := d.sequence(table)
	cols := make([]string, 0, len(defs)+1)
	cols = append(cols, fmt.Sprintf("%s BIGINT PRIMARY KEY DEFAULT nextval('%s')", d.QuoteIdent(key), EscapeLiteral(seq)))
	cols = append(cols, defs...)
	return []string{
		"CREATE SEQUENCE " + QuoteTable(d, seq),
		fmt.Sprintf("CREATE TABLE %s (%s)", QuoteTable(d, table), strings.Join(cols, ", ")),
	}
}

// mssqlDialect uses bracket quoting and T-SQL types for the two canonical
// names SQL Server does not accept.
type mssqlDialect struct{}

func (mssqlDialect) Name() string { return "mssql" }

func (mssqlDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (mssqlDialect) TypeName(t probe.SemanticType) string {
	switch t {
	case probe.Boolean:
		return "BIT"
	case probe.Text:
		return "NVARCHAR(MAX)"
	}
	return CanonicalTypeName(t)
}

// Literal writes Boolean values as BIT literals. SQL Server converts only
// 'TRUE', 'FALSE' and numeric strings to BIT, so 'yes' and 'no' would fail.
func (mssqlDialect) Literal(v string, t probe.SemanticType) string {
	if t == probe.Boolean {
		switch strings.ToLower(v) {
		case "true", "yes", "1":
			return "1"
		case "false", "no", "0":
			return "0"
		}
	}
	return FormatValue(v, t)
}

func (d mssqlDialect) DropTable(table string) []string {
	q := QuoteTable(d, table)
	return []string{fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s", EscapeLiteral(q), q)}
}

func (d mssqlDialect) CreateTable(table, key string, defs []string) []string {
	cols := make([]string, 0, len(defs)+1)
	cols = append(cols, d.QuoteIdent(key)+" INT IDENTITY(1,1) PRIMARY KEY")
	cols = append(cols, defs...)
	return []string{fmt.Sprintf("CREATE TABLE %s (%s)", QuoteTable(d, table), strings.Join(cols, ", "))}
}

// Built-in dialects.
var (
	Postgres Dialect = ansiDialect{name: "postgres", keyType: "SERIAL PRIMARY KEY"}
	SQLite   Dialect = ansiDialect{name: "sqlite", keyType: "INTEGER PRIMARY KEY AUTOINCREMENT"}
	DuckDB   Dialect = duckDialect{}
	MSSQL    Dialect = mssqlDialect{}
)

// DialectFor returns the built-in dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	case "duckdb":
		return DuckDB, nil
	case "mssql":
		return MSSQL, nil
	}
	return nil, fmt.Errorf("sqlgen: unknown dialect %q", name)
}

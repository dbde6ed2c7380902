package sqlgen

import (
	"strings"

	"csvload/internal/probe"
)

// EscapeLiteral doubles every single quote so value can sit between quotes
// in a SQL string literal. Nothing else is escaped.
func EscapeLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// FormatValue renders a normalized value as a SQL literal for a column of
// type t.
//
//   - ""                    -> NULL, for every type
//   - Text, Date, Boolean   -> 'escaped'
//   - Integer, Float        -> escaped, unquoted
//
// Numeric values are not validated here; a value that does not parse is left
// for the engine to reject.
func FormatValue(value string, t probe.SemanticType) string {
	if value == "" {
		return "NULL"
	}
	switch t {
	case probe.Integer, probe.Float:
		return EscapeLiteral(value)
	default:
		return "'" + EscapeLiteral(value) + "'"
	}
}

// InsertBuilder renders INSERT statements for a fixed table and column list.
// The column list is rendered once.
type InsertBuilder struct {
	d      Dialect
	prefix string
	cols   []probe.Column
	b      strings.Builder
}

// NewInsertBuilder returns a builder for table with cols in position order.
func NewInsertBuilder(d Dialect, table string, cols []probe.Column) *InsertBuilder {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(QuoteTable(d, table))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(c.Name))
	}
	b.WriteString(") VALUES (")
	return &InsertBuilder{d: d, prefix: b.String(), cols: cols}
}

// Build renders the INSERT for one raw row. Each field is normalized first
// and rendered with the dialect's Literal; missing trailing fields become NULL
// and extra fields are ignored.
//
// The builder is not safe for concurrent use.
func (ib *InsertBuilder) Build(row []string) string {
	ib.b.Reset()
	ib.b.WriteString(ib.prefix)
	for i, c := range ib.cols {
		if i > 0 {
			ib.b.WriteString(", ")
		}
		v := ""
		if i < len(row) {
			v = probe.Normalize(row[i])
		}
		ib.b.WriteString(ib.d.Literal(v, c.Type))
	}
	ib.b.WriteString(")")
	return ib.b.String()
}

// BuildInsert renders a single INSERT statement. Use an InsertBuilder when
// rendering many rows for the same table.
func BuildInsert(d Dialect, table string, cols []probe.Column, row []string) string {
	return NewInsertBuilder(d, table, cols).Build(row)
}

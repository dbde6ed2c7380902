package sqlgen

import (
	"strings"

	"csvload/internal/probe"
)

// KeyColumn is the preferred name of the surrogate primary key column.
const KeyColumn = "id"

// KeyColumnName returns KeyColumn, prefixed with underscores until it no
// longer collides (case-insensitively) with a data column name.
func KeyColumnName(cols []probe.Column) string {
	used := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		used[strings.ToLower(c.Name)] = struct{}{}
	}
	key := KeyColumn
	for {
		if _, dup := used[key]; !dup {
			return key
		}
		key = "_" + key
	}
}

// DDL is the ordered statement list that recreates a table.
//
// Statements are executed one at a time; none carries a trailing semicolon.
type DDL struct {
	Table      string
	Key        string
	Statements []string
}

// String renders the statements for display, one per line.
func (d DDL) String() string {
	if len(d.Statements) == 0 {
		return ""
	}
	return strings.Join(d.Statements, ";\n") + ";"
}

// ColumnDef renders one column definition: quoted name and storage type.
func ColumnDef(d Dialect, c probe.Column) string {
	return d.QuoteIdent(c.Name) + " " + d.TypeName(c.Type)
}

// BuildSchema synthesizes the DDL for table from classified columns.
//
// The result first drops any existing table of the same name, then creates it
// with an auto-incrementing primary key followed by the columns in position
// order. Running it twice yields the same empty table.
func BuildSchema(d Dialect, table string, cols []probe.Column) DDL {
	key := KeyColumnName(cols)

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = ColumnDef(d, c)
	}

	stmts := append([]string{}, d.DropTable(table)...)
	stmts = append(stmts, d.CreateTable(table, key, defs)...)

	return DDL{Table: table, Key: key, Statements: stmts}
}

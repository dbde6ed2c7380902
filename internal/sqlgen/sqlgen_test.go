package sqlgen

import (
	"strings"
	"testing"

	"csvload/internal/probe"
)

func cols(pairs ...any) []probe.Column {
	out := make([]probe.Column, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, probe.Column{
			Position: i / 2,
			Name:     pairs[i].(string),
			Type:     pairs[i+1].(probe.SemanticType),
		})
	}
	return out
}

func TestEscapeLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"O'Brien", "O''Brien"},
		{"''", "''''"},
		{"plain", "plain"},
		{"", ""},
		{`back\slash "dq"`, `back\slash "dq"`},
	}
	for _, tt := range tests {
		if got := EscapeLiteral(tt.in); got != tt.want {
			t.Fatalf("EscapeLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		typ   probe.SemanticType
		want  string
	}{
		{"integer unquoted", "42", probe.Integer, "42"},
		{"integer as text quoted", "42", probe.Text, "'42'"},
		{"float unquoted", "-0.5", probe.Float, "-0.5"},
		{"date quoted", "2024-01-31", probe.Date, "'2024-01-31'"},
		{"boolean quoted", "yes", probe.Boolean, "'yes'"},
		{"text escaped", "O'Brien", probe.Text, "'O''Brien'"},
		{"numeric still escaped", "4'2", probe.Integer, "4''2"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatValue(tt.value, tt.typ); got != tt.want {
				t.Fatalf("FormatValue(%q,%v) = %q, want %q", tt.value, tt.typ, got, tt.want)
			}
		})
	}

	for _, st := range []probe.SemanticType{probe.Text, probe.Boolean, probe.Integer, probe.Float, probe.Date} {
		if got := FormatValue("", st); got != "NULL" {
			t.Fatalf("FormatValue(\"\", %v) = %q, want NULL", st, got)
		}
	}
}

func TestBuildSchema_Postgres(t *testing.T) {
	t.Parallel()

	ddl := BuildSchema(Postgres, "people", cols("name", probe.Text, "age", probe.Integer))

	want := []string{
		`DROP TABLE IF EXISTS "people"`,
		`CREATE TABLE "people" ("id" SERIAL PRIMARY KEY, "name" TEXT, "age" INTEGER)`,
	}
	if len(ddl.Statements) != len(want) {
		t.Fatalf("statements = %q", ddl.Statements)
	}
	for i := range want {
		if ddl.Statements[i] != want[i] {
			t.Fatalf("stmt[%d] = %q, want %q", i, ddl.Statements[i], want[i])
		}
	}
	if ddl.Key != "id" || ddl.Table != "people" {
		t.Fatalf("key=%q table=%q", ddl.Key, ddl.Table)
	}
	if s := ddl.String(); !strings.HasSuffix(s, ");") || strings.Count(s, ";\n") != 1 {
		t.Fatalf("String() = %q", s)
	}
}

func TestBuildSchema_AllCanonicalTypes(t *testing.T) {
	t.Parallel()

	ddl := BuildSchema(SQLite, "t", cols(
		"b", probe.Boolean, "i", probe.Integer, "f", probe.Float, "d", probe.Date, "x", probe.Text,
	))
	create := ddl.Statements[len(ddl.Statements)-1]
	for _, want := range []string{
		`"id" INTEGER PRIMARY KEY AUTOINCREMENT`,
		`"b" BOOLEAN`, `"i" INTEGER`, `"f" FLOAT`, `"d" DATE`, `"x" TEXT`,
	} {
		if !strings.Contains(create, want) {
			t.Fatalf("create missing %q: %s", want, create)
		}
	}
}

func TestBuildSchema_DuckDBSequence(t *testing.T) {
	t.Parallel()

	ddl := BuildSchema(DuckDB, "people", cols("name", probe.Text))
	want := []string{
		`DROP TABLE IF EXISTS "people"`,
		`DROP SEQUENCE IF EXISTS "people_id_seq"`,
		`CREATE SEQUENCE "people_id_seq"`,
		`CREATE TABLE "people" ("id" BIGINT PRIMARY KEY DEFAULT nextval('people_id_seq'), "name" TEXT)`,
	}
	if strings.Join(ddl.Statements, "\n") != strings.Join(want, "\n") {
		t.Fatalf("statements:\n%s\nwant:\n%s", strings.Join(ddl.Statements, "\n"), strings.Join(want, "\n"))
	}
}

func TestBuildSchema_MSSQL(t *testing.T) {
	t.Parallel()

	ddl := BuildSchema(MSSQL, "dbo.people", cols("ok", probe.Boolean, "note]x", probe.Text, "n", probe.Float))
	if got, want := ddl.Statements[0], `IF OBJECT_ID(N'[dbo].[people]', N'U') IS NOT NULL DROP TABLE [dbo].[people]`; got != want {
		t.Fatalf("drop = %q, want %q", got, want)
	}
	if got, want := ddl.Statements[1], `CREATE TABLE [dbo].[people] ([id] INT IDENTITY(1,1) PRIMARY KEY, [ok] BIT, [note]]x] NVARCHAR(MAX), [n] FLOAT)`; got != want {
		t.Fatalf("create = %q, want %q", got, want)
	}
}

func TestBuildSchema_QuotedNames(t *testing.T) {
	t.Parallel()

	ddl := BuildSchema(Postgres, "public.my table", cols(`we"ird`, probe.Text, "select", probe.Integer))
	create := ddl.Statements[1]
	for _, want := range []string{`"public"."my table"`, `"we""ird" TEXT`, `"select" INTEGER`} {
		if !strings.Contains(create, want) {
			t.Fatalf("create missing %q: %s", want, create)
		}
	}
}

func TestKeyColumnName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cols []probe.Column
		want string
	}{
		{"no clash", cols("name", probe.Text), "id"},
		{"clash", cols("ID", probe.Integer), "_id"},
		{"double clash", cols("id", probe.Integer, "_Id", probe.Text), "__id"},
		{"no columns", nil, "id"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KeyColumnName(tt.cols); got != tt.want {
				t.Fatalf("KeyColumnName = %q, want %q", got, tt.want)
			}
		})
	}

	ddl := BuildSchema(Postgres, "t", cols("id", probe.Integer))
	if !strings.Contains(ddl.Statements[1], `"_id" SERIAL PRIMARY KEY, "id" INTEGER`) {
		t.Fatalf("create = %s", ddl.Statements[1])
	}
}

func TestBuildInsert(t *testing.T) {
	t.Parallel()

	c := cols("name", probe.Text, "age", probe.Integer)

	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"full row", []string{"Alice", "30"}, `INSERT INTO "people" ("name", "age") VALUES ('Alice', 30)`},
		{"empty becomes null", []string{"Bob", ""}, `INSERT INTO "people" ("name", "age") VALUES ('Bob', NULL)`},
		{"short row padded", []string{"Carol"}, `INSERT INTO "people" ("name", "age") VALUES ('Carol', NULL)`},
		{"long row truncated", []string{"Dan", "4", "extra"}, `INSERT INTO "people" ("name", "age") VALUES ('Dan', 4)`},
		{"normalized", []string{` "O'Brien" `, " 7 "}, `INSERT INTO "people" ("name", "age") VALUES ('O''Brien', 7)`},
		{"whitespace only is null", []string{"  ", "\t"}, `INSERT INTO "people" ("name", "age") VALUES (NULL, NULL)`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildInsert(Postgres, "people", c, tt.row); got != tt.want {
				t.Fatalf("BuildInsert = %q\nwant         %q", got, tt.want)
			}
		})
	}
}

func TestInsertBuilder_Reuse(t *testing.T) {
	t.Parallel()

	ib := NewInsertBuilder(MSSQL, "t", cols("a", probe.Integer))
	first := ib.Build([]string{"1"})
	second := ib.Build([]string{"2"})
	if first != "INSERT INTO [t] ([a]) VALUES (1)" || second != "INSERT INTO [t] ([a]) VALUES (2)" {
		t.Fatalf("first=%q second=%q", first, second)
	}
}

func TestLiteral_Boolean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantMSSQL string
		wantOther string
	}{
		{"yes", "1", "'yes'"},
		{"No", "0", "'No'"},
		{"TRUE", "1", "'TRUE'"},
		{"false", "0", "'false'"},
		{"1", "1", "'1'"},
		{"0", "0", "'0'"},
		{"", "NULL", "NULL"},
	}
	for _, tt := range tests {
		if got := MSSQL.Literal(tt.in, probe.Boolean); got != tt.wantMSSQL {
			t.Fatalf("MSSQL.Literal(%q, Boolean) = %q, want %q", tt.in, got, tt.wantMSSQL)
		}
		for _, d := range []Dialect{Postgres, SQLite, DuckDB} {
			if got := d.Literal(tt.in, probe.Boolean); got != tt.wantOther {
				t.Fatalf("%s.Literal(%q, Boolean) = %q, want %q", d.Name(), tt.in, got, tt.wantOther)
			}
		}
	}

	// Only Boolean columns are rewritten.
	if got := MSSQL.Literal("yes", probe.Text); got != "'yes'" {
		t.Fatalf("MSSQL.Literal(yes, Text) = %q", got)
	}
	if got := MSSQL.Literal("O'Brien", probe.Text); got != "'O''Brien'" {
		t.Fatalf("MSSQL.Literal(O'Brien, Text) = %q", got)
	}
}

func TestBuildInsert_MSSQLBooleanColumn(t *testing.T) {
	t.Parallel()

	c := cols("name", probe.Text, "active", probe.Boolean)
	got := BuildInsert(MSSQL, "dbo.people", c, []string{"Alice", "yes"})
	if want := "INSERT INTO [dbo].[people] ([name], [active]) VALUES ('Alice', 1)"; got != want {
		t.Fatalf("BuildInsert = %q\nwant         %q", got, want)
	}
	if got := BuildInsert(MSSQL, "t", c, []string{"Bob", "no"}); !strings.HasSuffix(got, "VALUES ('Bob', 0)") {
		t.Fatalf("BuildInsert = %q", got)
	}
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"postgres", "SQLite", " duckdb ", "mssql"} {
		d, err := DialectFor(name)
		if err != nil {
			t.Fatalf("DialectFor(%q): %v", name, err)
		}
		if d.Name() != strings.ToLower(strings.TrimSpace(name)) {
			t.Fatalf("DialectFor(%q).Name() = %q", name, d.Name())
		}
	}
	if _, err := DialectFor("oracle"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}

package ddl

import (
	"strings"
	"testing"

	"csvingest/internal/schema"
)

// testDialect renders kinds by name and quotes with double quotes.
var testDialect = Dialect{
	QuoteIdent: QuoteDouble,
	TypeOf:     func(k schema.Kind) string { return strings.ToUpper(k.String()) },
}

// TestBuildCreateTableSQL verifies the generated CREATE TABLE statements and
// the errors for invalid inputs.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty name returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id"}}},
			errContains: "table name must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{Name: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			def:         TableDef{Name: "t", Columns: []ColumnDef{{Name: ""}}},
			errContains: "column with empty name",
		},
		{
			name: "nullable and not-null columns",
			def: TableDef{Name: "t", Columns: []ColumnDef{
				{Name: "id", Kind: schema.KindBigInt, Nullable: true},
				{Name: "ts", Kind: schema.KindTimestamp},
			}},
			wantSQL: "CREATE TABLE \"t\" (\n  \"id\" BIGINT,\n  \"ts\" TIMESTAMP NOT NULL\n)",
		},
		{
			name: "primary keys sorted and forced NOT NULL",
			def: TableDef{Name: "t", Columns: []ColumnDef{
				{Name: "b", Kind: schema.KindText, Nullable: true, PrimaryKey: true},
				{Name: "a", Kind: schema.KindText, Nullable: true, PrimaryKey: true},
			}},
			wantSQL: "CREATE TABLE \"t\" (\n  \"b\" TEXT NOT NULL,\n  \"a\" TEXT NOT NULL,\n  PRIMARY KEY (\"a\", \"b\")\n)",
		},
		{
			name:    "dotted table name is one identifier",
			def:     TableDef{Name: "trips.2021", Columns: []ColumnDef{{Name: "x", Nullable: true}}},
			wantSQL: "CREATE TABLE \"trips.2021\" (\n  \"x\" TEXT\n)",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(testDialect, tc.def)
			if tc.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("error = %v, want containing %q", err, tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.wantSQL {
				t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, tc.wantSQL)
			}
		})
	}
}

func TestReplaceTableSQL(t *testing.T) {
	t.Parallel()

	def := FromColumns("rides", []schema.Column{{Name: "id", Kind: schema.KindBigInt}})
	stmts, err := ReplaceTableSQL(testDialect, def)
	if err != nil {
		t.Fatalf("ReplaceTableSQL error: %v", err)
	}
	want := []string{
		`DROP TABLE IF EXISTS "rides"`,
		"CREATE TABLE \"rides\" (\n  \"index\" BIGINT,\n  \"id\" BIGINT\n)",
		`CREATE INDEX "ix_rides_index" ON "rides" ("index")`,
	}
	if len(stmts) != len(want) {
		t.Fatalf("got %d statements, want %d: %q", len(stmts), len(want), stmts)
	}
	for i := range want {
		if stmts[i] != want[i] {
			t.Errorf("stmt %d = %q, want %q", i, stmts[i], want[i])
		}
	}
}

func TestBuildDropTableSQL_CustomDialect(t *testing.T) {
	t.Parallel()

	d := testDialect
	d.DropIfExists = func(q string) string { return "IF OBJECT_ID('x') IS NOT NULL DROP TABLE " + q }
	got := BuildDropTableSQL(d, TableDef{Name: "t"})
	if got != `IF OBJECT_ID('x') IS NOT NULL DROP TABLE "t"` {
		t.Fatalf("got %q", got)
	}
}

func TestQuoteDouble(t *testing.T) {
	t.Parallel()

	if got := QuoteDouble(`weird"name`); got != `"weird""name"` {
		t.Fatalf("QuoteDouble = %s", got)
	}
}

func TestFromColumns(t *testing.T) {
	t.Parallel()

	def := FromColumns("t", []schema.Column{{Name: "a", Kind: schema.KindText}, {Name: "b", Kind: schema.KindDouble}})
	if got := strings.Join(def.ColumnNames(), ","); got != "index,a,b" {
		t.Fatalf("ColumnNames = %q, want index,a,b", got)
	}
	if def.Columns[0].Kind != schema.KindBigInt {
		t.Fatalf("index kind = %s, want bigint", def.Columns[0].Kind)
	}
	if len(def.Indexes) != 1 || def.Indexes[0].Name != "ix_t_index" {
		t.Fatalf("Indexes = %+v", def.Indexes)
	}
}

// Package ddl defines a small, backend-agnostic model for table DDL and
// renders it through a Dialect supplied by each storage backend.
//
// The package itself knows nothing about a particular database: identifier
// quoting, SQL type names and the DROP form all come from the Dialect.
package ddl

import (
	"fmt"
	"sort"
	"strings"

	"csvingest/internal/schema"
)

// Dialect adapts rendering to one SQL backend.
type Dialect struct {
	// QuoteIdent quotes a single identifier.
	QuoteIdent func(string) string

	// TypeOf maps a logical kind to the backend's SQL type.
	TypeOf func(schema.Kind) string

	// DropIfExists renders a statement dropping a quoted table name when
	// present. Defaults to "DROP TABLE IF EXISTS <name>".
	DropIfExists func(quoted string) string
}

// BuildCreateTableSQL renders a deterministic CREATE TABLE statement.
//
// Rules:
//   - t.Name must be non-empty.
//   - Each column must have a non-empty Name.
//   - Primary-key columns are always rendered as NOT NULL.
//   - PRIMARY KEY is a separate constraint clause with the quoted column
//     names sorted for determinism.
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		if c.Name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", t.Name)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(d.TypeOf(c.Kind))
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(c.Name))
		}
	}

	if len(pks) > 0 {
		sort.Strings(pks)
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		d.QuoteIdent(t.Name),
		strings.Join(cols, ",\n  "),
	), nil
}

// BuildDropTableSQL renders the dialect's drop-if-exists statement for t.
func BuildDropTableSQL(d Dialect, t TableDef) string {
	q := d.QuoteIdent(t.Name)
	if d.DropIfExists != nil {
		return d.DropIfExists(q)
	}
	return "DROP TABLE IF EXISTS " + q
}

// BuildCreateIndexSQL renders one CREATE INDEX statement per index of t.
func BuildCreateIndexSQL(d Dialect, t TableDef) []string {
	out := make([]string, 0, len(t.Indexes))
	for _, ix := range t.Indexes {
		cols := make([]string, len(ix.Columns))
		for i, c := range ix.Columns {
			cols[i] = d.QuoteIdent(c)
		}
		out = append(out, fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			d.QuoteIdent(ix.Name), d.QuoteIdent(t.Name), strings.Join(cols, ", ")))
	}
	return out
}

// ReplaceTableSQL returns the full statement sequence that replaces t:
// drop if present, create, then its indexes.
func ReplaceTableSQL(d Dialect, t TableDef) ([]string, error) {
	create, err := BuildCreateTableSQL(d, t)
	if err != nil {
		return nil, err
	}
	stmts := []string{BuildDropTableSQL(d, t), create}
	return append(stmts, BuildCreateIndexSQL(d, t)...), nil
}

// QuoteDouble quotes an identifier with double quotes, doubling embedded
// quotes: `weird"name` becomes `"weird""name"`. Postgres and SQLite use it.
func QuoteDouble(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

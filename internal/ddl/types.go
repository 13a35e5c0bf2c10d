package ddl

import "csvingest/internal/schema"

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Kind: logical kind, mapped to SQL by the dialect
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	Kind       schema.Kind
	Nullable   bool
	PrimaryKey bool
}

// IndexDef is a secondary (non-unique) index over one or more columns.
type IndexDef struct {
	Name    string
	Columns []string
}

// TableDef holds the table name and an ordered list of columns.
//
// Name is a single identifier: a file called "trips.2021.csv" loads into a
// table literally named "trips.2021", not into schema "trips".
type TableDef struct {
	Name    string
	Columns []ColumnDef
	Indexes []IndexDef
}

// ColumnNames returns the column names in table order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// FromColumns builds the destination table for a CSV file: the row index
// column first (BIGINT, indexed as ix_<table>_index), then every inferred
// CSV column as a nullable column of its kind.
func FromColumns(table string, cols []schema.Column) TableDef {
	defs := make([]ColumnDef, 0, len(cols)+1)
	defs = append(defs, ColumnDef{Name: schema.IndexColumn, Kind: schema.KindBigInt, Nullable: true})
	for _, c := range cols {
		defs = append(defs, ColumnDef{Name: c.Name, Kind: c.Kind, Nullable: true})
	}
	return TableDef{
		Name:    table,
		Columns: defs,
		Indexes: []IndexDef{{
			Name:    "ix_" + table + "_" + schema.IndexColumn,
			Columns: []string{schema.IndexColumn},
		}},
	}
}

// Package schema models the row batches that flow from the CSV reader to the
// storage backends, and the column kinds inferred from them.
package schema

// Kind is the logical type of a destination column. Backends map each Kind
// to a dialect-specific SQL type.
type Kind int

const (
	KindText Kind = iota
	KindBigInt
	KindDouble
	KindBoolean
	KindTimestamp
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBigInt:
		return "bigint"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// IndexColumn is the name of the row index column every destination table
// carries in front of the CSV columns.
const IndexColumn = "index"

// Column is one destination column: its header name and inferred kind.
type Column struct {
	Name string
	Kind Kind
}

// Batch is a bounded group of rows read together from one source file.
//
// Rows are aligned to Header. A cell is nil for an empty CSV field, a string
// as read, and after normalization/typing one of time.Time, int64, float64 or
// bool. Offset is the 0-based position of the first row within the file.
type Batch struct {
	Header []string
	Rows   [][]any
	Offset int64
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// ColumnIndex returns the position of name in the header, or -1.
func (b *Batch) ColumnIndex(name string) int {
	for i, h := range b.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// WithIndex returns the batch rows prefixed with their row index, ready for a
// COPY whose column list starts with IndexColumn. The batch is not modified.
func (b *Batch) WithIndex() [][]any {
	out := make([][]any, len(b.Rows))
	for i, row := range b.Rows {
		r := make([]any, 0, len(row)+1)
		r = append(r, b.Offset+int64(i))
		r = append(r, row...)
		out[i] = r
	}
	return out
}

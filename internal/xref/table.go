// Package xref normalizes heterogeneous cross-reference tuple shapes into
// isoform-keyed partial tables sharing a merge-ready schema. One extractor
// exists per source family; each owns a disjoint set of column names.
package xref

// Value is a nullable cell. The zero Value is null.
type Value struct {
	S     string
	Valid bool
}

// String wraps s as a non-null Value.
func String(s string) Value { return Value{S: s, Valid: true} }

// Row holds the cells one source contributes for a single isoform id.
type Row struct {
	Key   string
	Cells map[string]Value
}

// Table is the partial result of one extractor. A keyed table carries at
// most one Row per isoform id. An aggregate table carries one value per
// column applying to every isoform of the record; an absent source family
// yields an all-null aggregate so the merge step still unions the columns.
type Table struct {
	Columns   []string
	Rows      []Row
	Aggregate map[string]Value
}

// NullTable returns an all-null aggregate over columns.
func NullTable(columns []string) Table {
	cells := make(map[string]Value, len(columns))
	for _, c := range columns {
		cells[c] = Value{}
	}
	return Table{Columns: columns, Aggregate: cells}
}

// keyedBuilder accumulates per-isoform cells, keeping first-seen key order
// and joining repeated values for the same column with ';'.
type keyedBuilder struct {
	columns []string
	order   []string
	rows    map[string]map[string]Value
}

func newKeyedBuilder(columns []string) *keyedBuilder {
	return &keyedBuilder{columns: columns, rows: map[string]map[string]Value{}}
}

func (b *keyedBuilder) add(key string, values []string) {
	cells, ok := b.rows[key]
	if !ok {
		cells = make(map[string]Value, len(b.columns))
		b.rows[key] = cells
		b.order = append(b.order, key)
	}
	for i, col := range b.columns {
		if cur := cells[col]; cur.Valid {
			cells[col] = String(cur.S + ";" + values[i])
		} else {
			cells[col] = String(values[i])
		}
	}
}

func (b *keyedBuilder) table() Table {
	if len(b.order) == 0 {
		return NullTable(b.columns)
	}
	t := Table{Columns: b.columns, Rows: make([]Row, 0, len(b.order))}
	for _, k := range b.order {
		t.Rows = append(t.Rows, Row{Key: k, Cells: b.rows[k]})
	}
	return t
}

// Package merge expands record metadata into a per-isoform base table and
// outer-joins the extractors' partial tables onto it by isoform id.
package merge

import (
	"strconv"

	"protannot/internal/isoform"
	"protannot/internal/record"
	"protannot/internal/xref"
)

// Base metadata columns, in report order. KeyColumn carries the isoform id
// and doubles as the join key across every partial table.
const (
	ColName      = "xref_UniProt_Name"
	KeyColumn    = "Protein"
	ColGene      = "Gene"
	ColSpecies   = "Species"
	ColLength    = "Length"
	ColDesc      = "Description"
	ColComment   = "Comment_Line"
	ColDataClass = "prot_UniProt_Class"
)

// MetaColumns returns the base metadata column names in report order.
func MetaColumns() []string {
	return []string{ColName, KeyColumn, ColGene, ColSpecies, ColLength, ColDesc, ColComment, ColDataClass}
}

// BaseTable expands the scalar metadata into one row per isoform id,
// attaching per-isoform sequence length and header text from the side-table.
// Isoforms absent from the side-table keep null length and header cells.
func BaseTable(meta record.Metadata, exp isoform.Expansion, seqs isoform.SequenceIndex) xref.Table {
	t := xref.Table{Columns: MetaColumns()}
	for _, id := range exp.IDs {
		cells := map[string]xref.Value{
			ColName:      xref.String(meta.Name),
			KeyColumn:    xref.String(id),
			ColGene:      xref.String(meta.Gene),
			ColSpecies:   xref.String(meta.Species),
			ColDesc:      xref.String(meta.Description),
			ColDataClass: xref.String(meta.DataClass),
		}
		if info := seqs.Lookup(id); info != (isoform.SequenceInfo{}) {
			cells[ColLength] = xref.String(strconv.Itoa(info.Length))
			cells[ColComment] = xref.String(info.Header)
		}
		t.Rows = append(t.Rows, xref.Row{Key: id, Cells: cells})
	}
	return t
}

// RowSet is one record's merged rows with the full declared column set.
type RowSet struct {
	Columns []string
	Rows    []xref.Row
}

// Merge outer-joins the partial tables onto the base table by isoform id.
// Aggregate tables broadcast their single value set to every row. Keyed rows
// whose id is unknown to the base table still appear, with null metadata.
// Every declared column is present in every row, null when unpopulated;
// column sets are disjoint by construction so no reconciliation happens.
func Merge(base xref.Table, partials []xref.Table) RowSet {
	columns := append([]string{}, base.Columns...)
	keys := make([]string, 0, len(base.Rows))
	index := make(map[string]map[string]xref.Value, len(base.Rows))
	for _, row := range base.Rows {
		keys = append(keys, row.Key)
		index[row.Key] = row.Cells
	}

	for _, p := range partials {
		columns = append(columns, p.Columns...)
		if len(p.Rows) == 0 {
			for _, cells := range index {
				for _, col := range p.Columns {
					cells[col] = p.Aggregate[col]
				}
			}
			continue
		}
		for _, row := range p.Rows {
			cells, ok := index[row.Key]
			if !ok {
				cells = make(map[string]xref.Value, len(p.Columns))
				index[row.Key] = cells
				keys = append(keys, row.Key)
			}
			for _, col := range p.Columns {
				cells[col] = row.Cells[col]
			}
		}
	}

	out := RowSet{Columns: columns, Rows: make([]xref.Row, 0, len(keys))}
	for _, key := range keys {
		cells := index[key]
		for _, col := range columns {
			if _, ok := cells[col]; !ok {
				cells[col] = xref.Value{}
			}
		}
		if !cells[KeyColumn].Valid {
			cells[KeyColumn] = xref.String(key)
		}
		out.Rows = append(out.Rows, xref.Row{Key: key, Cells: cells})
	}
	return out
}

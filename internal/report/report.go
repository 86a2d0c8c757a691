// Package report accumulates merged row sets across records and serializes
// them as a fixed-column tab-separated file.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"protannot/internal/merge"
	"protannot/internal/xref"
)

// Headers returns the report column order: base metadata columns first, then
// each extractor's columns in registry order. The order is fixed up front so
// every record emits the same column set regardless of which families it
// actually carries.
func Headers(diseases, drugs bool) []string {
	cols := merge.MetaColumns()
	for _, ext := range xref.Registry(diseases, drugs) {
		cols = append(cols, ext.Columns()...)
	}
	return cols
}

// Accumulator concatenates row sets in arrival order. Null cells and columns
// a record never produced are emitted as empty fields.
type Accumulator struct {
	headers []string
	rows    [][]string
}

// NewAccumulator starts an empty report over the given column order.
func NewAccumulator(headers []string) *Accumulator {
	return &Accumulator{headers: headers}
}

// Add appends every row of a merged set, aligned to the report columns.
func (a *Accumulator) Add(set merge.RowSet) {
	for _, row := range set.Rows {
		line := make([]string, len(a.headers))
		for i, col := range a.headers {
			if v := row.Cells[col]; v.Valid {
				line[i] = v.S
			}
		}
		a.rows = append(a.rows, line)
	}
}

// Len reports the number of accumulated rows.
func (a *Accumulator) Len() int { return len(a.rows) }

// WriteTSV writes the header line and all accumulated rows.
func (a *Accumulator) WriteTSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(a.headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range a.rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path, creating parent directories.
func (a *Accumulator) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := a.WriteTSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Package extdata loads the read-only reference datasets consulted during
// report assembly: the CORUM complex membership table, the PANTHER family
// classification table, and the species registry. Tables are loaded once
// before any record is processed and are never mutated afterwards.
package extdata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Complex is one macromolecular complex with its member accession set.
type Complex struct {
	ID      int64
	Name    string
	Members map[string]struct{}
}

// ComplexTable is the ordered list of complexes from the CORUM all-complexes
// dataset. Order matches the source file so formatted output is deterministic.
type ComplexTable struct {
	complexes []Complex
}

// corumEntry mirrors the fields of the CORUM JSON download this table needs.
// The member list arrives as one delimited string.
type corumEntry struct {
	ComplexID   int64  `json:"ComplexID"`
	ComplexName string `json:"ComplexName"`
	Subunits    string `json:"subunits(UniProt IDs)"`
}

// ReadComplexTable decodes the CORUM all-complexes JSON document.
func ReadComplexTable(r io.Reader) (*ComplexTable, error) {
	var entries []corumEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode corum json: %w", err)
	}
	table := &ComplexTable{complexes: make([]Complex, 0, len(entries))}
	for _, e := range entries {
		members := make(map[string]struct{})
		for _, m := range strings.Split(e.Subunits, ";") {
			if m = strings.TrimSpace(m); m != "" {
				members[m] = struct{}{}
			}
		}
		table.complexes = append(table.complexes, Complex{ID: e.ComplexID, Name: e.ComplexName, Members: members})
	}
	return table, nil
}

// ReadComplexTableFile is ReadComplexTable over a file path.
func ReadComplexTableFile(path string) (*ComplexTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corum table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadComplexTable(f)
}

// Len reports the number of complexes loaded.
func (t *ComplexTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.complexes)
}

// Containing returns, in table order, every complex whose member set holds
// the given accession.
func (t *ComplexTable) Containing(accession string) []Complex {
	if t == nil {
		return nil
	}
	var out []Complex
	for _, c := range t.complexes {
		if _, ok := c.Members[accession]; ok {
			out = append(out, c)
		}
	}
	return out
}

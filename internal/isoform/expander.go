// Package isoform expands a protein record into its per-isoform identity rows
// and resolves per-isoform sequence metadata from a FASTA side-table.
package isoform

import (
	"regexp"
	"strings"
)

const altProductsTag = "ALTERNATIVE PRODUCTS:"

// Expansion lists a record's isoform identifiers. IDs always starts with the
// primary accession; Displayed is "" unless an isoform is explicitly marked.
type Expansion struct {
	IDs       []string
	Displayed string
}

var splitter = regexp.MustCompile(`\s*;\s*`)

// Expand scans the record comments for an alternative-products block and
// derives the isoform id list. IsoId tokens pair with the Sequence token that
// follows them; only variant-sequence (VSP_) products extend the list, in
// declaration order. Multi-id fields are truncated at the first comma. With
// no alternative-products comment the expansion is the primary accession alone.
func Expand(accession string, comments []string) Expansion {
	exp := Expansion{IDs: []string{accession}}
	var block string
	for _, c := range comments {
		if strings.Contains(c, altProductsTag) {
			block = c
			break
		}
	}
	if block == "" {
		return exp
	}
	tokens := splitter.Split(block, -1)
	for i, tok := range tokens {
		if !strings.HasPrefix(tok, "IsoId=") {
			continue
		}
		if i+1 >= len(tokens) {
			break
		}
		id := firstID(strings.TrimPrefix(tok, "IsoId="))
		seq := firstID(strings.TrimPrefix(tokens[i+1], "Sequence="))
		switch {
		case strings.HasPrefix(seq, "VSP_"):
			exp.IDs = append(exp.IDs, id)
		case strings.HasPrefix(seq, "Displayed"):
			if exp.Displayed == "" {
				exp.Displayed = id
			}
		}
	}
	return exp
}

// firstID keeps only the first comma-separated identifier of a field.
func firstID(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

// Package record reads UniProtKB flat-file entries and extracts the scalar
// metadata the report pipeline keys on. Parsing is best effort: when a tagged
// field does not match its expected grammar the raw field is carried through
// verbatim instead of failing the record.
package record

import (
	"regexp"
	"strings"
)

// CrossReference is one DR tuple: the source database name plus the raw
// fields exactly as they appear in the entry. Field arity and meaning are
// fixed per source.
type CrossReference struct {
	Source string
	Fields []string
}

// ProteinRecord is one parsed flat-file entry. It is read-only for the
// duration of a pipeline iteration.
type ProteinRecord struct {
	EntryName  string
	Accessions []string // first entry is the primary accession
	DataClass  string   // Reviewed / Unreviewed
	GeneLine   string   // raw GN content
	DescLine   string   // raw DE content
	Organism   string   // raw OS content
	Comments   []string // one string per CC topic, continuations joined
	CrossRefs  []CrossReference
}

// Accession returns the primary accession, or "" when the record carries none.
func (r ProteinRecord) Accession() string {
	if len(r.Accessions) == 0 {
		return ""
	}
	return r.Accessions[0]
}

// CrossRefsFor returns the raw tuples of one source family in declaration order.
func (r ProteinRecord) CrossRefsFor(source string) [][]string {
	var out [][]string
	for _, xr := range r.CrossRefs {
		if xr.Source == source {
			out = append(out, xr.Fields)
		}
	}
	return out
}

// Metadata is the scalar projection of a record used for the report's base columns.
type Metadata struct {
	Name        string
	Accession   string
	Gene        string
	Description string
	Species     string
	DataClass   string
}

var (
	genePattern    = regexp.MustCompile(`(?im)Name=([^\s;]*)`)
	descPattern    = regexp.MustCompile(`(?im)(?:RecName|SubName): Full=([^;{]*)`)
	speciesPattern = regexp.MustCompile(`(?im)([\w\s]*)\s+\(\w*\)`)
)

// ExtractMetadata derives the scalar metadata fields. Each tagged-field match
// falls back to the raw line when the pattern does not apply.
func ExtractMetadata(r ProteinRecord) Metadata {
	gene := r.GeneLine
	if m := genePattern.FindStringSubmatch(r.GeneLine); m != nil {
		gene = m[1]
	}
	desc := r.DescLine
	if m := descPattern.FindStringSubmatch(r.DescLine); m != nil {
		desc = strings.TrimSpace(m[1])
	}
	species := r.Organism
	if m := speciesPattern.FindStringSubmatch(r.Organism); m != nil {
		species = strings.TrimSpace(m[1])
	}
	return Metadata{
		Name:        r.EntryName,
		Accession:   r.Accession(),
		Gene:        gene,
		Description: desc,
		Species:     species,
		DataClass:   r.DataClass,
	}
}

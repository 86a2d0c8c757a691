package xref

import (
	"context"
	"regexp"
	"strings"

	"protannot/internal/annotcache"
	"protannot/internal/extdata"
	"protannot/internal/isoform"
	"protannot/internal/record"
)

// Column names owned by the extractors, in report order.
const (
	ColEnsemblProtein    = "xref_Ensembl_protId"
	ColEnsemblTranscript = "xref_Ensembl_transcId"
	ColEnsemblGene       = "xref_Ensembl_GeneId"
	ColRefSeqProtein     = "xref_RefSeq_protId"
	ColRefSeqTranscript  = "xref_RefSeq_transcId"
	ColCCDS              = "xref_CCDS"
	ColGOComponent       = "cat_GO_C"
	ColGOFunction        = "cat_GO_F"
	ColGOProcess         = "cat_GO_P"
	ColKEGG              = "cat_KEGG"
	ColPANTHER           = "cat_PANTHER"
	ColReactome          = "cat_Reactome"
	ColCORUM             = "cat_CORUM"
	ColOMIM              = "cat_OMIM"
	ColDrugBank          = "cat_DrugBank"
)

// Context carries the per-record inputs and the shared read-only datasets an
// extractor may consult. The dataset handles may be nil; extractors degrade
// to null columns when a dataset they need is absent.
type Context struct {
	Record    *record.ProteinRecord
	Expansion isoform.Expansion
	Pathways  *annotcache.Cache
	Families  *extdata.ClassificationTable
	Complexes *extdata.ComplexTable
}

// Extractor converts one source family's raw tuples into a partial table.
type Extractor interface {
	// Source is the cross-reference family name the extractor consumes.
	Source() string
	// Columns lists the column names the extractor owns, in output order.
	Columns() []string
	// Extract builds the partial table for one record. An absent family
	// yields an all-null table, never an error.
	Extract(ctx context.Context, rc *Context) Table
}

// Registry returns the extractors in report column order. The disease and
// drug families are optional and appended only when enabled.
func Registry(diseases, drugs bool) []Extractor {
	exts := []Extractor{
		ensemblExtractor{},
		refseqExtractor{},
		ccdsExtractor{},
		goExtractor{},
		keggExtractor{},
		pantherExtractor{},
		reactomeExtractor{},
		corumExtractor{},
	}
	if diseases {
		exts = append(exts, mimExtractor{})
	}
	if drugs {
		exts = append(exts, drugbankExtractor{})
	}
	return exts
}

var (
	bracketPattern = regexp.MustCompile(`\[([^\]]*)\]`)
	versionPattern = regexp.MustCompile(`\.\d+$`)
	dotTailPattern = regexp.MustCompile(`\.\s+.*$`)
)

// stripVersion removes a trailing ".<digits>" suffix from an identifier.
func stripVersion(id string) string { return versionPattern.ReplaceAllString(id, "") }

// cleanText rewrites ';' in free text so the character stays reserved as the
// inter-entry delimiter.
func cleanText(s string) string { return strings.ReplaceAll(s, ";", ",") }

// resolveKey attributes a tuple to an isoform using the bracketed annotation
// of the given field. A missing bracket, the displayed isoform, or an id
// outside the record's isoform list all resolve to the primary accession.
func resolveKey(field string, rc *Context) string {
	m := bracketPattern.FindStringSubmatch(field)
	if m == nil {
		return rc.Record.Accession()
	}
	id := m[1]
	if id == rc.Expansion.Displayed {
		return rc.Record.Accession()
	}
	for _, known := range rc.Expansion.IDs {
		if id == known {
			return id
		}
	}
	return rc.Record.Accession()
}

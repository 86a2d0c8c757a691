package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"protannot/internal/merge"
	"protannot/internal/xref"
)

func TestHeadersFixedOrder(t *testing.T) {
	want := []string{
		"xref_UniProt_Name", "Protein", "Gene", "Species", "Length",
		"Description", "Comment_Line", "prot_UniProt_Class",
		"xref_Ensembl_protId", "xref_Ensembl_transcId", "xref_Ensembl_GeneId",
		"xref_RefSeq_protId", "xref_RefSeq_transcId", "xref_CCDS",
		"cat_GO_C", "cat_GO_F", "cat_GO_P",
		"cat_KEGG", "cat_PANTHER", "cat_Reactome", "cat_CORUM",
	}
	if diff := cmp.Diff(want, Headers(false, false)); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	full := Headers(true, true)
	if full[len(full)-2] != "cat_OMIM" || full[len(full)-1] != "cat_DrugBank" {
		t.Fatalf("optional columns misplaced: %v", full[len(full)-2:])
	}
}

func testRowSet() merge.RowSet {
	return merge.RowSet{
		Columns: []string{"Protein", "Gene"},
		Rows: []xref.Row{
			{Key: "P1", Cells: map[string]xref.Value{
				"Protein": xref.String("P1"),
				"Gene":    xref.String("CYCS"),
			}},
			{Key: "P1-2", Cells: map[string]xref.Value{
				"Protein": xref.String("P1-2"),
				"Gene":    xref.Value{},
			}},
		},
	}
}

func TestAccumulatorNullsEmitEmptyFields(t *testing.T) {
	acc := NewAccumulator([]string{"Protein", "Gene", "cat_KEGG"})
	acc.Add(testRowSet())
	if acc.Len() != 2 {
		t.Fatalf("len = %d, want 2", acc.Len())
	}

	var buf strings.Builder
	if err := acc.WriteTSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Protein\tGene\tcat_KEGG\nP1\tCYCS\t\nP1-2\t\t\n"
	if buf.String() != want {
		t.Fatalf("tsv = %q, want %q", buf.String(), want)
	}
}

func TestWriteFileCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.tsv")
	acc := NewAccumulator([]string{"Protein"})
	acc.Add(testRowSet())
	if err := acc.WriteFile(path); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(data), "Protein\n") {
		t.Fatalf("unexpected content %q", data)
	}
}

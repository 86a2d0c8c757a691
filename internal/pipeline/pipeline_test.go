package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"protannot/internal/archive"
	"protannot/internal/extdata"
	"protannot/internal/isoform"
	"protannot/internal/record"
)

const flatFileEntry = `ID   TEST_HUMAN              Reviewed;         105 AA.
AC   P12345;
DE   RecName: Full=Test protein;
GN   Name=TST;
OS   Homo sapiens (Human).
DR   Ensembl; ENST00000001.2; ENSP00000001.2; ENSG00000001.2.
DR   CORUM; P12345; -.
//
`

func testOptions(t *testing.T) Options {
	t.Helper()
	complexes, err := extdata.ReadComplexTable(strings.NewReader(
		`[{"ComplexID": 7, "ComplexName": "Test;Complex", "subunits(UniProt IDs)": "P12345"}]`))
	if err != nil {
		t.Fatalf("read complexes: %v", err)
	}
	sp, _ := extdata.LookupSpecies("human")
	return Options{
		Species: sp,
		Sequences: isoform.SequenceIndex{
			"P12345": {Header: ">sp|P12345|TEST_HUMAN Test protein", Length: 105},
		},
		Complexes: complexes,
	}
}

func TestRunSingleRecordEndToEnd(t *testing.T) {
	p := New(testOptions(t))
	if err := p.Run(context.Background(), record.NewReader(strings.NewReader(flatFileEntry))); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p.Rows() != 1 {
		t.Fatalf("rows = %d, want 1", p.Rows())
	}

	path := filepath.Join(t.TempDir(), "report.tsv")
	if err := p.WriteReport(context.Background(), path); err != nil {
		t.Fatalf("write report: %v", err)
	}
	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header plus one row", len(lines))
	}
	got := strings.Split(lines[1], "\t")
	want := []string{
		"TEST_HUMAN", "P12345", "TST", "Homo sapiens", "105",
		"Test protein", ">sp|P12345|TEST_HUMAN Test protein", "Reviewed",
		"ENSP00000001", "ENST00000001", "ENSG00000001",
		"", "", "", // RefSeq and CCDS absent
		"", "", "", "", "", "", // GO through Reactome absent
		"compID_7>Test,Complex",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("report row mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFailsOnRecordWithoutAccession(t *testing.T) {
	input := "ID   NOACC_HUMAN             Reviewed;         10 AA.\n//\n"
	p := New(testOptions(t))
	err := p.Run(context.Background(), record.NewReader(strings.NewReader(input)))
	if err == nil || !strings.Contains(err.Error(), "no accession") {
		t.Fatalf("err = %v, want fatal no-accession error", err)
	}
}

func TestProcessExpandsIsoforms(t *testing.T) {
	entry := strings.Replace(flatFileEntry, "OS   Homo sapiens (Human).\n",
		"OS   Homo sapiens (Human).\n"+
			"CC   -!- ALTERNATIVE PRODUCTS:\n"+
			"CC       Event=Alternative splicing; Named isoforms=2;\n"+
			"CC       Name=1;\n"+
			"CC         IsoId=P12345-1; Sequence=Displayed;\n"+
			"CC       Name=2;\n"+
			"CC         IsoId=P12345-2; Sequence=VSP_000001;\n", 1)
	rec, err := record.NewReader(strings.NewReader(entry)).Next()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := New(testOptions(t))
	set := p.Process(context.Background(), rec)
	if len(set.Rows) != 2 {
		t.Fatalf("rows = %d, want primary plus one variant", len(set.Rows))
	}
	if set.Rows[0].Key != "P12345" || set.Rows[1].Key != "P12345-2" {
		t.Fatalf("keys = %s, %s", set.Rows[0].Key, set.Rows[1].Key)
	}
}

func TestArchiveRun(t *testing.T) {
	p := New(testOptions(t))
	if err := p.Run(context.Background(), record.NewReader(strings.NewReader(flatFileEntry))); err != nil {
		t.Fatalf("run: %v", err)
	}
	arch := archive.NewMemory()
	if err := p.ArchiveRun(context.Background(), arch, "human-test"); err != nil {
		t.Fatalf("archive: %v", err)
	}
	run, err := arch.Get(context.Background(), "human-test")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if run.Species != "human" || run.Rows != 1 {
		t.Fatalf("run = %+v", run)
	}
	if !strings.Contains(string(run.Report), "compID_7>Test,Complex") {
		t.Fatalf("archived report = %q", run.Report)
	}
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()
	rec.Observe(ctx, "record", true, 5*time.Millisecond)
	rec.Observe(ctx, "record", false, 3*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	snap := rec.Snapshot()
	if snap.Results["record"]["success"] != 1 || snap.Results["record"]["error"] != 1 {
		t.Fatalf("results = %+v", snap.Results)
	}
	if snap.DurationsMS["record"] != 8 {
		t.Fatalf("durations = %+v", snap.DurationsMS)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Observe(context.Background(), "record", true, 10*time.Millisecond)
	rec.Observe(context.Background(), "record", true, 10*time.Millisecond)

	got := testutil.ToFloat64(rec.operations.WithLabelValues("record", "success"))
	if got != 2 {
		t.Fatalf("counter = %v, want 2", got)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

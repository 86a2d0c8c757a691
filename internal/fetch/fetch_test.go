package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"

	"protannot/internal/extdata"
)

func human(t *testing.T) extdata.Species {
	t.Helper()
	sp, err := extdata.LookupSpecies("human")
	if err != nil {
		t.Fatalf("lookup species: %v", err)
	}
	return sp
}

func TestDownloadSkipsExistingFile(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "uniprot.dat")
	if err := os.WriteFile(dest, []byte("existing"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	f := New(Config{UniProtBaseURL: srv.URL + "/?"}, nil)
	if err := f.FetchUniProtData(context.Background(), human(t), dest); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if requests != 0 {
		t.Fatalf("requests = %d, want 0 for cached dataset", requests)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "existing" {
		t.Fatalf("cached file overwritten: %q", data)
	}
}

func TestDedupFASTARewritesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proteins.fasta")
	in := ">tr|A00001|A_HUMAN\nPEPTIDE\n>sp|B11111|B_HUMAN\nPEPTIDE\n>sp|C22222|C_HUMAN\nOTHERSEQ\n"
	if err := os.WriteFile(path, []byte(in), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	f := New(Config{}, nil)
	if err := f.DedupFASTA(path); err != nil {
		t.Fatalf("DedupFASTA: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "B11111") {
		t.Errorf("duplicate sequence survived:\n%s", got)
	}
	if !strings.Contains(got, "A00001") || !strings.Contains(got, "C22222") {
		t.Errorf("expected records missing:\n%s", got)
	}
	if entries, _ := os.ReadDir(filepath.Dir(path)); len(entries) != 1 {
		t.Errorf("temp file left behind: %v", entries)
	}
}

func TestFetchUniProtFASTAQueryAndBody(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(">sp|P1|X\nMK\n"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "proteins.fasta")
	f := New(Config{UniProtBaseURL: srv.URL + "/?"}, nil)
	if err := f.FetchUniProtFASTA(context.Background(), human(t), dest, true, true); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(query, "proteome:UP000005640") || !strings.Contains(query, "reviewed:yes") {
		t.Fatalf("query = %q", query)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != ">sp|P1|X\nMK\n" {
		t.Fatalf("dest = %q, err = %v", data, err)
	}
}

func TestDownloadDecompressesGzipPayloads(t *testing.T) {
	var payload bytes.Buffer
	zw := pgzip.NewWriter(&payload)
	zw.Write([]byte("ID   TEST_HUMAN\n//\n"))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload.Bytes())
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "uniprot.dat")
	f := New(Config{}, nil)
	if err := f.download(context.Background(), srv.URL+"/uniprot.dat.gz", dest); err != nil {
		t.Fatalf("download: %v", err)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "ID   TEST_HUMAN\n//\n" {
		t.Fatalf("decompressed payload = %q", data)
	}
}

func TestFetchCORUMExtractsArchive(t *testing.T) {
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	entry, err := zw.Create("allComplexes.json")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	entry.Write([]byte(`[{"ComplexID": 1, "ComplexName": "X", "subunits(UniProt IDs)": "P1"}]`))
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive.Bytes())
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "allComplexes.json")
	f := New(Config{CORUMURL: srv.URL + "/allComplexes.json.zip"}, nil)
	// the zip suffix must not trigger gzip handling
	if err := f.FetchCORUM(context.Background(), dest); err != nil {
		t.Fatalf("fetch corum: %v", err)
	}
	table, err := extdata.ReadComplexTableFile(dest)
	if err != nil {
		t.Fatalf("read extracted table: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("complexes = %d, want 1", table.Len())
	}
}

func TestFetchPANTHERPicksSpeciesFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/classifications/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/classifications/" {
			w.Write([]byte("PTHR19.0_chicken\nPTHR19.0_human\nPTHR19.0_mouse\n"))
			return
		}
		if r.URL.Path != "/classifications/PTHR19.0_human" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("g\tp\tx\tPTHR10000:SF1\tFAMILY\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "panther.dat")
	f := New(Config{PANTHERBaseURL: srv.URL + "/classifications/"}, nil)
	if err := f.FetchPANTHER(context.Background(), "human", dest); err != nil {
		t.Fatalf("fetch panther: %v", err)
	}
	table, err := extdata.ReadClassificationTableFile(dest)
	if err != nil {
		t.Fatalf("read classifications: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("classifications = %d, want 1", table.Len())
	}
}

func TestFetchPANTHERNoSpeciesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PTHR19.0_chicken\n"))
	}))
	defer srv.Close()
	f := New(Config{PANTHERBaseURL: srv.URL + "/"}, nil)
	err := f.FetchPANTHER(context.Background(), "human", filepath.Join(t.TempDir(), "panther.dat"))
	if err == nil || !strings.Contains(err.Error(), "no classification file") {
		t.Fatalf("err = %v", err)
	}
}

package record

import (
	"io"
	"strings"
	"testing"
)

const sampleEntry = `ID   CYC_HUMAN               Reviewed;         105 AA.
AC   P99999; Q6NUR2; Q6NX69;
DE   RecName: Full=Cytochrome c;
GN   Name=CYCS; Synonyms=CYC;
OS   Homo sapiens (Human).
CC   -!- FUNCTION: Electron carrier protein.
CC   -!- ALTERNATIVE PRODUCTS:
CC       Event=Alternative splicing; Named isoforms=2;
CC       Name=1;
CC         IsoId=P99999-1; Sequence=Displayed;
CC       Name=2;
CC         IsoId=P99999-2; Sequence=VSP_055911;
DR   Ensembl; ENST00000305786.7; ENSP00000307786.2; ENSG00000172115.10. [P99999-1]
DR   RefSeq; NP_061820.1; NM_018947.5.
DR   GO; GO:0005758; C:mitochondrial intermembrane space; IDA:UniProtKB.
DR   CCDS; CCDS5393.1; -. [P99999-1]
//
`

func TestReaderParsesEntry(t *testing.T) {
	r := NewReader(strings.NewReader(sampleEntry))
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.EntryName != "CYC_HUMAN" {
		t.Errorf("entry name = %q", rec.EntryName)
	}
	if rec.DataClass != "Reviewed" {
		t.Errorf("data class = %q", rec.DataClass)
	}
	if rec.Accession() != "P99999" {
		t.Errorf("primary accession = %q", rec.Accession())
	}
	if len(rec.Accessions) != 3 {
		t.Errorf("accessions = %v", rec.Accessions)
	}
	if len(rec.Comments) != 2 {
		t.Fatalf("comments = %v", rec.Comments)
	}
	if !strings.HasPrefix(rec.Comments[1], "ALTERNATIVE PRODUCTS:") {
		t.Errorf("second comment = %q", rec.Comments[1])
	}
	if !strings.Contains(rec.Comments[1], "IsoId=P99999-2; Sequence=VSP_055911") {
		t.Errorf("alternative products comment lost structure: %q", rec.Comments[1])
	}
	if got := len(rec.CrossRefs); got != 4 {
		t.Fatalf("cross references = %d", got)
	}
	ens := rec.CrossRefsFor("Ensembl")
	if len(ens) != 1 || len(ens[0]) != 3 {
		t.Fatalf("ensembl tuples = %v", ens)
	}
	if ens[0][2] != "ENSG00000172115.10. [P99999-1]" {
		t.Errorf("ensembl gene field = %q", ens[0][2])
	}
	refseq := rec.CrossRefsFor("RefSeq")
	if len(refseq) != 1 || refseq[0][1] != "NM_018947.5" {
		t.Fatalf("refseq tuples = %v (trailing period should be stripped)", refseq)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected EOF after single record, got %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("count = %d", r.Count())
	}
}

func TestReaderRejectsRecordWithoutAccession(t *testing.T) {
	src := "ID   NOACC_HUMAN  Reviewed;  10 AA.\nDE   RecName: Full=Broken;\n//\n"
	r := NewReader(strings.NewReader(src))
	if _, err := r.Next(); err == nil {
		t.Fatal("expected error for record with no accession")
	}
}

func TestReaderStopsCommentAtCopyrightBlock(t *testing.T) {
	src := "ID   LIC_HUMAN  Reviewed;  10 AA.\n" +
		"AC   P00001;\n" +
		"CC   -!- FUNCTION: Electron carrier protein.\n" +
		"CC   ---------------------------------------------------------------------------\n" +
		"CC   Copyrighted by the UniProt Consortium.\n" +
		"CC   Distributed under the Creative Commons Attribution License.\n" +
		"CC   ---------------------------------------------------------------------------\n" +
		"//\n"
	r := NewReader(strings.NewReader(src))
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(rec.Comments) != 1 {
		t.Fatalf("comments = %v", rec.Comments)
	}
	if strings.Contains(rec.Comments[0], "Copyrighted") || strings.Contains(rec.Comments[0], "----") {
		t.Errorf("copyright block leaked into comment: %q", rec.Comments[0])
	}
}

func TestReaderMultipleRecords(t *testing.T) {
	src := sampleEntry + "ID   TST_MOUSE  Unreviewed;  20 AA.\nAC   Q00001;\nOS   Mus musculus (Mouse).\n//\n"
	r := NewReader(strings.NewReader(src))
	first, err := r.Next()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := r.Next()
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Accession() == second.Accession() {
		t.Fatal("records not separated")
	}
	if second.DataClass != "Unreviewed" {
		t.Errorf("second data class = %q", second.DataClass)
	}
}

func TestExtractMetadata(t *testing.T) {
	r := NewReader(strings.NewReader(sampleEntry))
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	meta := ExtractMetadata(rec)
	if meta.Gene != "CYCS" {
		t.Errorf("gene = %q", meta.Gene)
	}
	if meta.Description != "Cytochrome c" {
		t.Errorf("description = %q", meta.Description)
	}
	if meta.Species != "Homo sapiens" {
		t.Errorf("species = %q", meta.Species)
	}
}

func TestExtractMetadataFallsBackToRawFields(t *testing.T) {
	rec := ProteinRecord{
		EntryName:  "RAW_TEST",
		Accessions: []string{"P00001"},
		GeneLine:   "ORFNames=tV45",
		DescLine:   "Uncharacterized protein",
		Organism:   "environmental samples",
	}
	meta := ExtractMetadata(rec)
	if meta.Gene != "ORFNames=tV45" {
		t.Errorf("gene fallback = %q", meta.Gene)
	}
	if meta.Description != "Uncharacterized protein" {
		t.Errorf("description fallback = %q", meta.Description)
	}
	if meta.Species != "environmental samples" {
		t.Errorf("species fallback = %q", meta.Species)
	}
}

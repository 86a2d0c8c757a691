package isoform

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// SequenceInfo carries the FASTA header and sequence length of one isoform.
type SequenceInfo struct {
	Header string // full header line including the leading '>'
	Length int
}

// SequenceIndex maps an isoform id to its sequence metadata. Ids come from
// the first pipe-delimited token after the accession prefix of each header
// (">sp|P12345-2|NAME_HUMAN ..." indexes under "P12345-2").
type SequenceIndex map[string]SequenceInfo

// Lookup returns the info for an isoform id. Missing ids yield a zero info:
// absence from the side-table is expected and not an error.
func (x SequenceIndex) Lookup(id string) SequenceInfo {
	return x[id]
}

// ReadIndex builds a SequenceIndex from a FASTA stream. Headers without a
// pipe-delimited accession are skipped.
func ReadIndex(r io.Reader) (SequenceIndex, error) {
	idx := make(SequenceIndex)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var (
		id     string
		header string
		length int
	)
	flush := func() {
		if id != "" {
			idx[id] = SequenceInfo{Header: header, Length: length}
		}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			id, header, length = "", line, 0
			parts := strings.Split(line[1:], "|")
			if len(parts) > 1 {
				id = parts[1]
			}
			continue
		}
		length += len(strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan fasta: %w", err)
	}
	flush()
	return idx, nil
}

// ReadIndexFile is ReadIndex over a file path.
func ReadIndexFile(path string) (SequenceIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fasta: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadIndex(f)
}

type fastaRecord struct {
	header string
	seq    []string
}

// headerAccession pulls the accession token from a FASTA header, the same
// token ReadIndex keys on. Headers without one order by their full text.
func headerAccession(header string) string {
	parts := strings.Split(strings.TrimPrefix(header, ">"), "|")
	if len(parts) > 1 {
		return parts[1]
	}
	return header
}

// Deduplicate copies FASTA records from r to w, dropping all but one record
// for every distinct sequence. When two records share a sequence the one
// with the smaller accession survives; the ">sp|"/">tr|" header prefixes do
// not take part in the ordering. Dropped headers are logged.
func Deduplicate(r io.Reader, w io.Writer, log *zap.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var records []fastaRecord
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			records = append(records, fastaRecord{header: line})
			continue
		}
		if len(records) == 0 {
			continue
		}
		records[len(records)-1].seq = append(records[len(records)-1].seq, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan fasta: %w", err)
	}
	byseq := make(map[string]int, len(records))
	keep := make([]bool, len(records))
	for i, rec := range records {
		seq := strings.Join(rec.seq, "")
		prev, dup := byseq[seq]
		if !dup {
			byseq[seq] = i
			keep[i] = true
			continue
		}
		kept, dropped := prev, i
		if headerAccession(rec.header) < headerAccession(records[prev].header) {
			kept, dropped = i, prev
		}
		if log != nil {
			log.Warn("duplicated sequences",
				zap.String("kept", records[kept].header),
				zap.String("dropped", records[dropped].header))
		}
		keep[kept] = true
		keep[dropped] = false
		byseq[seq] = kept
	}
	bw := bufio.NewWriter(w)
	for i, rec := range records {
		if !keep[i] {
			continue
		}
		if _, err := fmt.Fprintln(bw, rec.header); err != nil {
			return err
		}
		for _, line := range rec.seq {
			if _, err := fmt.Fprintln(bw, line); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

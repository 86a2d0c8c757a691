package record

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Reader yields ProteinRecords from a UniProtKB flat-file stream. Records are
// separated by "//" terminator lines; line prefixes select the field.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	count   int
}

// NewReader wraps r. The scanner buffer is sized for long DE/CC lines.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: s}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
// A terminated record without any accession is an error: no identity key
// exists to attribute downstream data to, so the run cannot continue.
func (r *Reader) Next() (ProteinRecord, error) {
	var (
		rec       ProteinRecord
		inRecord  bool
		geneParts []string
		descParts []string
		orgParts  []string
		comment   []string
	)
	flushComment := func() {
		if len(comment) > 0 {
			rec.Comments = append(rec.Comments, strings.Join(comment, " "))
			comment = nil
		}
	}
	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Text()
		if strings.HasPrefix(line, "//") {
			if !inRecord {
				continue
			}
			flushComment()
			rec.GeneLine = strings.Join(geneParts, " ")
			rec.DescLine = strings.Join(descParts, " ")
			rec.Organism = strings.Join(orgParts, " ")
			if len(rec.Accessions) == 0 {
				return ProteinRecord{}, fmt.Errorf("record ending at line %d has no accession", r.line)
			}
			r.count++
			return rec, nil
		}
		if len(line) < 5 {
			continue
		}
		code, content := line[:2], strings.TrimRight(line[5:], " ")
		switch code {
		case "ID":
			inRecord = true
			fields := strings.Fields(content)
			if len(fields) > 0 {
				rec.EntryName = fields[0]
			}
			if len(fields) > 1 {
				rec.DataClass = strings.TrimSuffix(fields[1], ";")
			}
		case "AC":
			inRecord = true
			for _, acc := range strings.Split(content, ";") {
				if acc = strings.TrimSpace(acc); acc != "" {
					rec.Accessions = append(rec.Accessions, acc)
				}
			}
		case "GN":
			geneParts = append(geneParts, content)
		case "DE":
			descParts = append(descParts, content)
		case "OS":
			orgParts = append(orgParts, content)
		case "CC":
			trimmed := strings.TrimLeft(content, " ")
			switch {
			case strings.HasPrefix(trimmed, "-!-"):
				flushComment()
				comment = append(comment, strings.TrimSpace(strings.TrimPrefix(trimmed, "-!-")))
			case strings.HasPrefix(trimmed, "----"):
				// separator opening the trailing copyright block; no topic
				// text follows
				flushComment()
			case len(comment) > 0:
				comment = append(comment, trimmed)
			}
		case "DR":
			if xr, ok := parseCrossReference(content); ok {
				rec.CrossRefs = append(rec.CrossRefs, xr)
			}
		}
	}
	if err := r.scanner.Err(); err != nil {
		return ProteinRecord{}, err
	}
	if inRecord {
		// stream ended without a terminator; treat a keyed partial record as final
		flushComment()
		rec.GeneLine = strings.Join(geneParts, " ")
		rec.DescLine = strings.Join(descParts, " ")
		rec.Organism = strings.Join(orgParts, " ")
		if len(rec.Accessions) == 0 {
			return ProteinRecord{}, fmt.Errorf("truncated record at line %d has no accession", r.line)
		}
		r.count++
		return rec, nil
	}
	return ProteinRecord{}, io.EOF
}

// Count reports how many records have been returned so far.
func (r *Reader) Count() int { return r.count }

// parseCrossReference splits a DR line "Source; f1; f2; f3." into its tuple.
// The trailing period of the last field is dropped; a terminal isoform bracket
// such as ". [P12345-2]" is kept attached to its field for the extractors.
func parseCrossReference(content string) (CrossReference, bool) {
	parts := strings.Split(content, "; ")
	if len(parts) < 2 {
		return CrossReference{}, false
	}
	source := strings.TrimSuffix(strings.TrimSpace(parts[0]), ";")
	fields := make([]string, 0, len(parts)-1)
	for i, f := range parts[1:] {
		f = strings.TrimSpace(f)
		if i == len(parts)-2 && !strings.Contains(f, "[") {
			f = strings.TrimSuffix(f, ".")
		}
		fields = append(fields, f)
	}
	return CrossReference{Source: source, Fields: fields}, true
}

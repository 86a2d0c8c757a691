package extdata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column positions in the PANTHER sequence-classification download. The file
// is tab-separated with no header row; the composite family/subfamily id and
// its description sit at fixed offsets.
const (
	pantherFamilyColumn      = 3
	pantherDescriptionColumn = 4
)

// Classification is one family row: the composite family/subfamily identifier
// and its free-text description.
type Classification struct {
	FamilyID    string
	Description string
}

// ClassificationTable holds the PANTHER rows in file order.
type ClassificationTable struct {
	rows []Classification
}

// ReadClassificationTable parses the tab-separated classification file.
// Rows too short to carry both columns are skipped.
func ReadClassificationTable(r io.Reader) (*ClassificationTable, error) {
	table := &ClassificationTable{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) <= pantherDescriptionColumn {
			continue
		}
		table.rows = append(table.rows, Classification{
			FamilyID:    fields[pantherFamilyColumn],
			Description: fields[pantherDescriptionColumn],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan classification table: %w", err)
	}
	return table, nil
}

// ReadClassificationTableFile is ReadClassificationTable over a file path.
func ReadClassificationTableFile(path string) (*ClassificationTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open classification table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadClassificationTable(f)
}

// Len reports the number of classification rows loaded.
func (t *ClassificationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// MatchPrefix returns the first row whose composite id starts with the given
// family identifier. The second return is false when no row matches.
func (t *ClassificationTable) MatchPrefix(id string) (Classification, bool) {
	if t == nil || id == "" {
		return Classification{}, false
	}
	for _, row := range t.rows {
		if strings.HasPrefix(row.FamilyID, id) {
			return row, true
		}
	}
	return Classification{}, false
}

package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a comma-separated table with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return fromRecords(records)
}

// WriteCSV writes t with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Strings() {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fromRecords(records [][]string) (*Table, error) {
	start := -1
	for i, rec := range records {
		if !blank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("table is empty")
	}

	header := make([]string, len(records[start]))
	for i, h := range records[start] {
		header[i] = strings.TrimSpace(h)
	}
	t := New(header...)
	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		cells := make([]any, len(rec))
		for i, v := range rec {
			cells[i] = v
		}
		t.Append(cells...)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

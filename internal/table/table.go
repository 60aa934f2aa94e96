// Package table holds the in-memory tabular representation shared by both
// flows and reads and writes it as spreadsheets and CSV.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is a header plus rows of cell values. Cells read from a file are
// strings; cells built for export may also be float64 or int.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given header.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row. Short rows are padded with empty strings.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(t.Columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Head returns a table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Index returns the position of a column. Matching ignores case and
// surrounding whitespace.
func (t *Table) Index(name string) (int, error) {
	want := normalizeHeader(name)
	for i, c := range t.Columns {
		if normalizeHeader(c) == want {
			return i, nil
		}
	}
	return -1, &MissingColumnError{Column: name, Available: t.Columns}
}

// Indexes resolves several columns at once, failing on the first missing one.
func (t *Table) Indexes(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos, err := t.Index(name)
		if err != nil {
			return nil, err
		}
		idx[i] = pos
	}
	return idx, nil
}

// Cell returns the value at (row, col) rendered as a string.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return FormatValue(t.Rows[row][col])
}

// Strings renders every row as strings.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = FormatValue(v)
		}
	}
	return out
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// FormatValue renders a cell value the way it is written to text formats.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// MissingColumnError is returned when an input table lacks a required column.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q (found: %s)", e.Column, strings.Join(e.Available, ", "))
}

var _ error = (*MissingColumnError)(nil)

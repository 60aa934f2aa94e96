package table

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used for exported workbooks.
const DefaultSheet = "Sheet1"

// ReadXLSX reads the first sheet of a workbook. The first non-empty row is
// the header; fully empty rows are dropped. Cells hold their stored values,
// not the text a number format would display: a time shown as "08:30" stays
// the serial 0.35469..., and a subject shown as "007" stays 7.
func ReadXLSX(r io.Reader) (_ *Table, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromRecords(rows)
}

// WriteXLSX writes t as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, t *Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet != DefaultSheet {
		if err := f.SetSheetName(sheet, DefaultSheet); err != nil {
			return err
		}
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(t.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(DefaultSheet, "A1", last, bold); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(DefaultSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/glizzus/pkinput/internal/table"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// Base names of the exported files, without extension.
const (
	ScheduleFileBase = "schedule_time_input"
	ActualFileBase   = "actual_time_input"
)

// ParseFormat validates a format name. The empty string selects xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected xlsx|csv|parquet)", s)
	}
}

// FileName joins a base name with the format's extension.
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// ContentType is the MIME type used when serving or uploading the file.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// Encode renders the schedule table in the given format.
func (r *ScheduleResult) Encode(f Format) ([]byte, error) {
	if f == FormatParquet {
		return marshalScheduleParquet(r.Rows)
	}
	return encodeTable(r.Table(), f)
}

// Encode renders the merged table in the given format.
func (r *ActualResult) Encode(f Format) ([]byte, error) {
	if f == FormatParquet {
		return marshalActualParquet(r.Rows)
	}
	return encodeTable(r.Table(), f)
}

func encodeTable(t *table.Table, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatCSV:
		if err := table.WriteCSV(&buf, t); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
	case FormatXLSX:
		if err := table.WriteXLSX(&buf, t); err != nil {
			return nil, fmt.Errorf("failed to write xlsx: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	return buf.Bytes(), nil
}

package table

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Read parses a table from r, choosing the decoder from the file name's
// extension (.xlsx, .xlsm or .csv).
func Read(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	case ".csv":
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("unsupported table file %q (expected .xlsx or .csv)", filepath.Base(name))
	}
}

// ReadFile opens and parses a table file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(path, f)
}

package schedule

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeID canonicalizes a subject identifier read from a spreadsheet.
// Integral numbers written with a decimal part or exponent lose it
// ("7.0" → "7") so that identifiers typed as numbers in one file and as text
// in another still match. Everything else is only trimmed.
func NormalizeID(raw string) string {
	id := strings.TrimSpace(raw)
	if !strings.ContainsAny(id, ".eE") {
		return id
	}
	f, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return id
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return id
}

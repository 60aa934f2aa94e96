package deviation

import (
	"fmt"
	"strings"
)

var romanValues = []struct {
	symbol string
	value  int
}{
	{"M", 1000}, {"CM", 900}, {"D", 500}, {"CD", 400},
	{"C", 100}, {"XC", 90}, {"L", 50}, {"XL", 40},
	{"X", 10}, {"IX", 9}, {"V", 5}, {"IV", 4},
	{"I", 1},
}

const maxRoman = 3999

// InvalidRomanNumeralError is returned for a study stage that is not a
// canonical roman numeral.
type InvalidRomanNumeralError struct {
	Value string
	Row   int
}

func (e *InvalidRomanNumeralError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid roman numeral %q", e.Row, e.Value)
	}
	return fmt.Sprintf("invalid roman numeral %q", e.Value)
}

var _ error = (*InvalidRomanNumeralError)(nil)

// ParseRoman converts a canonical roman numeral (I through MMMCMXCIX) to its
// integer value. Only upper-case canonical spellings are accepted: "ii",
// " II " and "IIII" are all rejected.
func ParseRoman(s string) (int, error) {
	if s == "" {
		return 0, &InvalidRomanNumeralError{Value: s}
	}

	rest := s
	total := 0
	for _, rv := range romanValues {
		for strings.HasPrefix(rest, rv.symbol) {
			total += rv.value
			rest = rest[len(rv.symbol):]
		}
	}
	if rest != "" || total == 0 || total > maxRoman {
		return 0, &InvalidRomanNumeralError{Value: s}
	}
	// Greedy parsing accepts things like "IIII"; only the canonical spelling
	// round-trips.
	if canonical, _ := FormatRoman(total); canonical != s {
		return 0, &InvalidRomanNumeralError{Value: s}
	}
	return total, nil
}

// FormatRoman renders n (1..3999) as a canonical roman numeral.
func FormatRoman(n int) (string, error) {
	if n <= 0 || n > maxRoman {
		return "", fmt.Errorf("%d cannot be written as a roman numeral", n)
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			b.WriteString(rv.symbol)
			n -= rv.value
		}
	}
	return b.String(), nil
}

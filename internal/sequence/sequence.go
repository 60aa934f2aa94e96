// Package sequence decodes compact dosing sequence codes such as "A1B2C3"
// into one formulation token per period.
//
// Tokens are matched left to right with the following priority:
// a letter followed by any digits, a run of digits, a lone letter.
// Every other character is dropped.
package sequence

import (
	"fmt"
	"regexp"
	"strings"
)

// Separator joins tokens in the rendered form of a decoded sequence.
const Separator = "-"

var tokenPattern = regexp.MustCompile(`[A-Za-z]\d*|\d+|[A-Za-z]`)

var separatorPattern = regexp.MustCompile(`\s*-\s*`)

// Tokens is a decoded sequence, one entry per dosing period.
type Tokens []string

// Decode extracts the period tokens from a raw sequence code.
func Decode(raw string) Tokens {
	return Tokens(tokenPattern.FindAllString(raw, -1))
}

// Parse splits a rendered sequence back into its tokens.
func Parse(rendered string) Tokens {
	if rendered == "" {
		return Tokens{}
	}
	return Tokens(strings.Split(rendered, Separator))
}

// String renders the tokens joined by Separator.
func (t Tokens) String() string {
	return strings.Join(t, Separator)
}

// At returns the formulation for a 1-based period.
func (t Tokens) At(period int) (string, error) {
	if period < 1 || period > len(t) {
		return "", &PeriodOutOfRangeError{Period: period, Tokens: t}
	}
	return t[period-1], nil
}

// Compact removes the separators (and any whitespace around them) from a
// rendered sequence so it reads as a contiguous code again.
func Compact(rendered string) string {
	return separatorPattern.ReplaceAllString(rendered, "")
}

// PeriodOutOfRangeError is returned when a sequence does not carry a token
// for the requested period.
type PeriodOutOfRangeError struct {
	Subject string
	Period  int
	Tokens  Tokens
}

func (e *PeriodOutOfRangeError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("period %d out of range for sequence %q (%d tokens)", e.Period, e.Tokens.String(), len(e.Tokens))
	}
	return fmt.Sprintf("subject %s: period %d out of range for sequence %q (%d tokens)", e.Subject, e.Period, e.Tokens.String(), len(e.Tokens))
}

var _ error = (*PeriodOutOfRangeError)(nil)

package deviation

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/glizzus/pkinput/internal/schedule"
	"github.com/glizzus/pkinput/internal/util"
	"github.com/shopspring/decimal"
)

// Reasons a single variation record is skipped.
var (
	ErrUnknownSample = errors.New("sample number not in the nominal time list")
	ErrBadClock      = errors.New("unparsable time of day")
	ErrMissingValue  = errors.New("missing value")
)

// Variation is one row of the variations table, as read from the file.
// Values stay raw so that a malformed cell only affects its own record.
type Variation struct {
	Row          int
	StudyStage   string
	Subject      string
	SampleNo     string
	ScheduleTime string
	ActualTime   string
}

// Deviation is the adjusted nominal time for one drawn sample.
type Deviation struct {
	Period       int
	Subject      string
	SampleNo     int
	OriginalTime float64
	DeltaHours   float64
	AdjustedTime float64
}

// Late reports whether the sample was drawn after its scheduled time.
func (d Deviation) Late() bool {
	return d.DeltaHours > 0
}

// Outcome is the result of resolving one Variation. Exactly one of
// Deviation (when Err is nil) or Err is meaningful.
type Outcome struct {
	Variation Variation
	Deviation Deviation
	Err       error
}

// Skipped reports whether the record produced no deviation.
func (o Outcome) Skipped() bool {
	return o.Err != nil
}

// Resolve computes a Deviation for every variation record it can reconcile
// against the nominal time map.
//
// The study stage of every record is converted first; one invalid numeral
// fails the call. Remaining faults (unknown sample, bad or missing values)
// are reported on the record's Outcome and never affect other records.
func Resolve(records []Variation, tm *schedule.TimeMap) ([]Outcome, error) {
	if tm == nil {
		return nil, fmt.Errorf("time map is required")
	}

	periods := make([]int, len(records))
	for i, rec := range records {
		period, err := ParseRoman(rec.StudyStage)
		if err != nil {
			var romanErr *InvalidRomanNumeralError
			if errors.As(err, &romanErr) {
				romanErr.Row = rec.Row
			}
			return nil, err
		}
		periods[i] = period
	}

	outcomes := make([]Outcome, len(records))
	for i, rec := range records {
		dev, err := resolveOne(rec, periods[i], tm)
		outcomes[i] = Outcome{Variation: rec, Deviation: dev, Err: err}
	}
	return outcomes, nil
}

func resolveOne(rec Variation, period int, tm *schedule.TimeMap) (Deviation, error) {
	sampleNo, err := parseSampleNo(rec.SampleNo)
	if err != nil {
		return Deviation{}, err
	}
	original, ok := tm.Time(sampleNo)
	if !ok {
		return Deviation{}, fmt.Errorf("%w: %d", ErrUnknownSample, sampleNo)
	}

	subject := schedule.NormalizeID(rec.Subject)
	if subject == "" {
		return Deviation{}, fmt.Errorf("subject randomization number: %w", ErrMissingValue)
	}

	scheduled, err := ParseClock(rec.ScheduleTime)
	if err != nil {
		return Deviation{}, fmt.Errorf("schedule time: %w", err)
	}
	actual, err := ParseClock(rec.ActualTime)
	if err != nil {
		return Deviation{}, fmt.Errorf("actual time: %w", err)
	}

	// Same-day clock difference; a draw that crosses midnight is not wrapped.
	delta := (actual - scheduled).Hours()

	var adjusted float64
	if delta > 0 {
		adjusted = original + delta
	} else {
		adjusted = original - math.Abs(delta)
	}

	return Deviation{
		Period:       period,
		Subject:      subject,
		SampleNo:     sampleNo,
		OriginalTime: original,
		DeltaHours:   delta,
		AdjustedTime: Round2(adjusted),
	}, nil
}

func parseSampleNo(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("sample number: %w", ErrMissingValue)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSample, raw)
	}
	return int(f), nil
}

// exactDigits is enough fractional digits to write any float64 exactly.
const exactDigits = 1074

// Round2 rounds an hour value to two decimal places. The exact binary value
// is rounded, with ties going to the even digit, so 1.125 becomes 1.12 and
// 1.005 (stored as 1.00499...) becomes 1.
func Round2(v float64) float64 {
	exact := new(big.Float).SetFloat64(v).Text('f', exactDigits)
	return decimal.RequireFromString(exact).RoundBank(2).InexactFloat64()
}

// Accepted returns the deviations of all resolved records, in input order.
func Accepted(outcomes []Outcome) []Deviation {
	ok := util.Filter(outcomes, func(o Outcome) bool { return !o.Skipped() })
	return util.Map(ok, func(o Outcome) Deviation { return o.Deviation })
}

// Skipped returns the outcomes that produced no deviation.
func Skipped(outcomes []Outcome) []Outcome {
	return util.Filter(outcomes, Outcome.Skipped)
}

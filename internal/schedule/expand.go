package schedule

import (
	"errors"
	"fmt"

	"github.com/glizzus/pkinput/internal/sequence"
	"github.com/glizzus/pkinput/internal/util"
)

// Subject is one row of the subjects table.
type Subject struct {
	ID       string
	Sequence string
}

// Row is one expected sample of the schedule table.
type Row struct {
	Subject     string
	Sequence    string
	Formulation string
	Time        float64
	Period      int
	TimeNumber  int
}

// Options configures Expand.
type Options struct {
	Periods   int
	Times     []float64
	Withdrawn []string
}

// Expand produces one Row per (subject, period, nominal time), in subject
// input order, then ascending period, then configured time order.
// Withdrawn subjects are skipped before their sequence is consulted.
// A subject whose sequence is shorter than the period count fails the
// whole expansion.
func Expand(subjects []Subject, opts Options) ([]Row, *TimeMap, error) {
	if opts.Periods <= 0 {
		return nil, nil, fmt.Errorf("period count must be greater than 0")
	}
	tm, err := NewTimeMap(opts.Times)
	if err != nil {
		return nil, nil, err
	}

	withdrawn := util.SetOf(opts.Withdrawn...)
	times := tm.Times()

	rows := make([]Row, 0, len(subjects)*opts.Periods*len(times))
	for _, subject := range subjects {
		if withdrawn.Has(subject.ID) {
			continue
		}
		tokens := sequence.Decode(subject.Sequence)
		rendered := tokens.String()
		for period := 1; period <= opts.Periods; period++ {
			formulation, err := tokens.At(period)
			if err != nil {
				var rangeErr *sequence.PeriodOutOfRangeError
				if errors.As(err, &rangeErr) {
					rangeErr.Subject = subject.ID
				}
				return nil, nil, err
			}
			for i, t := range times {
				rows = append(rows, Row{
					Subject:     subject.ID,
					Sequence:    rendered,
					Formulation: formulation,
					Time:        t,
					Period:      period,
					TimeNumber:  i + 1,
				})
			}
		}
	}
	return rows, tm, nil
}

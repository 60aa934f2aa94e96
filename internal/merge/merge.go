// Package merge folds resolved deviations back into a schedule table and
// shapes the result for noncompartmental-analysis import.
package merge

import (
	"github.com/glizzus/pkinput/internal/deviation"
	"github.com/glizzus/pkinput/internal/schedule"
	"github.com/glizzus/pkinput/internal/sequence"
	"github.com/glizzus/pkinput/internal/util"
)

// Row is one line of the Actual Time Input table.
type Row struct {
	Subject       string
	Sequence      string
	Formulation   string
	Time          float64
	Concentration string
	Period        int
	Adjusted      bool
}

// Columns is the output header, in order. Concentration is left empty for
// the analyst to fill in.
var Columns = []string{"Subject", "Sequence", "Formulation", "Time", "concentration", "Period"}

type key struct {
	period     int
	subject    string
	timeNumber int
}

// Merge left-joins deviations onto schedule rows by period, subject and
// time number. Every schedule row appears exactly once in the result, in
// the original order; rows without a deviation keep their nominal time.
// When several deviations share a key the last one wins.
func Merge(rows []schedule.Row, devs []deviation.Deviation) []Row {
	adjusted := make(map[key]float64, len(devs))
	for _, d := range devs {
		adjusted[key{period: d.Period, subject: d.Subject, timeNumber: d.SampleNo}] = d.AdjustedTime
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		t, ok := adjusted[key{period: r.Period, subject: r.Subject, timeNumber: r.TimeNumber}]
		if !ok {
			t = r.Time
		}
		out[i] = Row{
			Subject:     r.Subject,
			Sequence:    sequence.Compact(r.Sequence),
			Formulation: r.Formulation,
			Time:        t,
			Period:      r.Period,
			Adjusted:    ok,
		}
	}
	return out
}

// Duplicate describes deviations that target the same schedule cell.
type Duplicate struct {
	Period   int
	Subject  string
	SampleNo int
	Count    int
}

// Duplicates lists keys that more than one deviation resolves to, in order
// of first appearance.
func Duplicates(devs []deviation.Deviation) []Duplicate {
	counts := make(map[key]int, len(devs))
	seen := make(util.Set[key], len(devs))
	var order []key
	for _, d := range devs {
		k := key{period: d.Period, subject: d.Subject, timeNumber: d.SampleNo}
		if seen.Add(k) {
			order = append(order, k)
		}
		counts[k]++
	}

	var dups []Duplicate
	for _, k := range order {
		if counts[k] > 1 {
			dups = append(dups, Duplicate{Period: k.period, Subject: k.subject, SampleNo: k.timeNumber, Count: counts[k]})
		}
	}
	return dups
}

// Unmatched returns the deviations that do not correspond to any schedule
// row. They have no effect on the merged table.
func Unmatched(rows []schedule.Row, devs []deviation.Deviation) []deviation.Deviation {
	present := make(util.Set[key], len(rows))
	for _, r := range rows {
		present.Add(key{period: r.Period, subject: r.Subject, timeNumber: r.TimeNumber})
	}
	return util.Filter(devs, func(d deviation.Deviation) bool {
		return !present.Has(key{period: d.Period, subject: d.Subject, timeNumber: d.SampleNo})
	})
}

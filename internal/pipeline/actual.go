package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glizzus/pkinput/internal/deviation"
	"github.com/glizzus/pkinput/internal/merge"
	"github.com/glizzus/pkinput/internal/schedule"
	"github.com/glizzus/pkinput/internal/table"
)

// ActualInput is everything the actual-time flow needs for one run.
type ActualInput struct {
	Schedule   *table.Table
	Variations *table.Table
	Times      []float64
}

// ActualResult is the merged table plus a report of how each variation
// record was handled.
type ActualResult struct {
	Rows       []merge.Row
	Outcomes   []deviation.Outcome
	Duplicates []merge.Duplicate
	Unmatched  []deviation.Deviation
	Warnings   []string
}

// Adjusted counts the rows whose time was replaced by a deviation.
func (r *ActualResult) Adjusted() int {
	n := 0
	for _, row := range r.Rows {
		if row.Adjusted {
			n++
		}
	}
	return n
}

// Actual reconciles a schedule table with recorded draw times.
func Actual(ctx context.Context, in ActualInput) (*ActualResult, error) {
	if in.Schedule == nil || in.Variations == nil {
		return nil, fmt.Errorf("schedule and variations tables are required")
	}

	rows, err := RowsFromScheduleTable(in.Schedule)
	if err != nil {
		return nil, err
	}
	tm, err := schedule.NewTimeMap(in.Times)
	if err != nil {
		return nil, err
	}
	variations, err := VariationsFromTable(in.Variations)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if n := numberingMismatches(rows, tm); n > 0 {
		slog.WarnContext(ctx, "time numbering does not match the configured times", "rows", n)
		warnings = append(warnings, fmt.Sprintf("%d schedule rows have a Time Number that does not match the configured times; check the time list order", n))
	}

	outcomes, err := deviation.Resolve(variations, tm)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deviations: %w", err)
	}
	for _, o := range deviation.Skipped(outcomes) {
		slog.WarnContext(ctx, "skipping variation record",
			"row", o.Variation.Row,
			"subject", o.Variation.Subject,
			"sample", o.Variation.SampleNo,
			"reason", o.Err,
		)
	}

	devs := deviation.Accepted(outcomes)
	dups := merge.Duplicates(devs)
	for _, d := range dups {
		slog.WarnContext(ctx, "multiple deviations for one sample, keeping the last",
			"period", d.Period,
			"subject", d.Subject,
			"sample", d.SampleNo,
			"count", d.Count,
		)
	}
	unmatched := merge.Unmatched(rows, devs)
	if len(unmatched) > 0 {
		slog.WarnContext(ctx, "deviations without a schedule row", "count", len(unmatched))
	}

	merged := merge.Merge(rows, devs)
	result := &ActualResult{
		Rows:       merged,
		Outcomes:   outcomes,
		Duplicates: dups,
		Unmatched:  unmatched,
		Warnings:   warnings,
	}
	slog.InfoContext(ctx, "reconciled actual times",
		"rows", len(merged),
		"variations", len(variations),
		"deviations", len(devs),
		"skipped", len(outcomes)-len(devs),
		"adjusted", result.Adjusted(),
	)
	return result, nil
}

// VariationsFromTable reads the variations table. Values are kept raw; they
// are validated per record by deviation.Resolve.
func VariationsFromTable(t *table.Table) ([]deviation.Variation, error) {
	idx, err := t.Indexes(ColStudyStage, ColRandomNo, ColSampleNo, ColScheduleTime, ColActualTime)
	if err != nil {
		return nil, err
	}
	out := make([]deviation.Variation, t.Len())
	for i := range t.Rows {
		out[i] = deviation.Variation{
			Row:          i + 2,
			StudyStage:   t.Cell(i, idx[0]),
			Subject:      t.Cell(i, idx[1]),
			SampleNo:     t.Cell(i, idx[2]),
			ScheduleTime: t.Cell(i, idx[3]),
			ActualTime:   t.Cell(i, idx[4]),
		}
	}
	return out, nil
}

// Table renders the merged rows with merge.Columns.
func (r *ActualResult) Table() *table.Table {
	t := table.New(merge.Columns...)
	for _, row := range r.Rows {
		t.Append(subjectCell(row.Subject), row.Sequence, row.Formulation, row.Time, row.Concentration, row.Period)
	}
	return t
}

// numberingMismatches counts rows whose (Time, Time Number) pair disagrees
// with tm. A mismatch means the time list was reordered between runs.
func numberingMismatches(rows []schedule.Row, tm *schedule.TimeMap) int {
	n := 0
	for _, r := range rows {
		if t, ok := tm.Time(r.TimeNumber); !ok || t != r.Time {
			n++
		}
	}
	return n
}

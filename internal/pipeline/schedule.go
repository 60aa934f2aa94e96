package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/glizzus/pkinput/internal/schedule"
	"github.com/glizzus/pkinput/internal/table"
	"github.com/glizzus/pkinput/internal/util"
)

// ScheduleInput is everything the schedule flow needs for one run.
type ScheduleInput struct {
	Subjects  *table.Table
	Periods   int
	Times     []float64
	Withdrawn []string
}

// ScheduleResult is the expanded schedule and the numbering of its times.
type ScheduleResult struct {
	Rows          []schedule.Row
	TimeMap       *schedule.TimeMap
	Subjects      int
	WithdrawnSeen int
}

// Schedule expands a subjects table into the Schedule Time Input table.
func Schedule(ctx context.Context, in ScheduleInput) (*ScheduleResult, error) {
	if in.Subjects == nil {
		return nil, fmt.Errorf("subjects table is required")
	}
	subjects, err := SubjectsFromTable(in.Subjects)
	if err != nil {
		return nil, err
	}

	withdrawn := make([]string, len(in.Withdrawn))
	for i, id := range in.Withdrawn {
		withdrawn[i] = schedule.NormalizeID(id)
	}

	rows, tm, err := schedule.Expand(subjects, schedule.Options{
		Periods:   in.Periods,
		Times:     in.Times,
		Withdrawn: withdrawn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expand schedule: %w", err)
	}

	withdrawnSet := util.SetOf(withdrawn...)
	seen := len(util.Filter(subjects, func(s schedule.Subject) bool { return withdrawnSet.Has(s.ID) }))

	slog.InfoContext(ctx, "expanded schedule",
		"subjects", len(subjects),
		"withdrawn", seen,
		"periods", in.Periods,
		"times", tm.Len(),
		"rows", len(rows),
	)

	return &ScheduleResult{
		Rows:          rows,
		TimeMap:       tm,
		Subjects:      len(subjects),
		WithdrawnSeen: seen,
	}, nil
}

// SubjectsFromTable reads the Subject and Sequence columns. Other columns are
// ignored. Rows without a subject identifier are skipped.
func SubjectsFromTable(t *table.Table) ([]schedule.Subject, error) {
	idx, err := t.Indexes(ColSubject, ColSequence)
	if err != nil {
		return nil, err
	}
	subjects := make([]schedule.Subject, 0, t.Len())
	for i := range t.Rows {
		id := schedule.NormalizeID(t.Cell(i, idx[0]))
		if id == "" {
			continue
		}
		subjects = append(subjects, schedule.Subject{
			ID:       id,
			Sequence: t.Cell(i, idx[1]),
		})
	}
	return subjects, nil
}

// Table renders the schedule rows with ScheduleColumns.
func (r *ScheduleResult) Table() *table.Table {
	t := table.New(ScheduleColumns...)
	for _, row := range r.Rows {
		t.Append(subjectCell(row.Subject), row.Sequence, row.Formulation, row.Time, row.Period, row.TimeNumber)
	}
	return t
}

// RowsFromScheduleTable parses a previously exported schedule table.
func RowsFromScheduleTable(t *table.Table) ([]schedule.Row, error) {
	idx, err := t.Indexes(ScheduleColumns...)
	if err != nil {
		return nil, err
	}

	rows := make([]schedule.Row, 0, t.Len())
	for i := range t.Rows {
		line := i + 2 // header is line 1
		subject := schedule.NormalizeID(t.Cell(i, idx[0]))
		if subject == "" {
			return nil, fmt.Errorf("schedule line %d: missing %s", line, ColSubject)
		}
		tm, err := strconv.ParseFloat(strings.TrimSpace(t.Cell(i, idx[3])), 64)
		if err != nil {
			return nil, fmt.Errorf("schedule line %d: invalid %s %q", line, ColTime, t.Cell(i, idx[3]))
		}
		period, err := parseWhole(t.Cell(i, idx[4]))
		if err != nil {
			return nil, fmt.Errorf("schedule line %d: invalid %s: %w", line, ColPeriod, err)
		}
		number, err := parseWhole(t.Cell(i, idx[5]))
		if err != nil {
			return nil, fmt.Errorf("schedule line %d: invalid %s: %w", line, ColTimeNumber, err)
		}
		rows = append(rows, schedule.Row{
			Subject:     subject,
			Sequence:    t.Cell(i, idx[1]),
			Formulation: t.Cell(i, idx[2]),
			Time:        tm,
			Period:      period,
			TimeNumber:  number,
		})
	}
	return rows, nil
}

// parseWhole accepts integers written either as "3" or "3.0".
func parseWhole(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return int(f), nil
}

// subjectCell writes numeric identifiers as numbers so spreadsheets keep
// them sortable.
func subjectCell(id string) any {
	if n, err := strconv.Atoi(id); err == nil && strconv.Itoa(n) == id {
		return n
	}
	return id
}

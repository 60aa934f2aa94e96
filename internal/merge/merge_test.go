package merge_test

import (
	"testing"

	"github.com/glizzus/pkinput/internal/deviation"
	"github.com/glizzus/pkinput/internal/merge"
	"github.com/glizzus/pkinput/internal/schedule"
	"github.com/google/go-cmp/cmp"
)

func scheduleRows() []schedule.Row {
	return []schedule.Row{
		{Subject: "1", Sequence: "T-R", Formulation: "T", Time: 0.5, Period: 1, TimeNumber: 1},
		{Subject: "1", Sequence: "T-R", Formulation: "T", Time: 1.0, Period: 1, TimeNumber: 2},
		{Subject: "1", Sequence: "T-R", Formulation: "R", Time: 0.5, Period: 2, TimeNumber: 1},
		{Subject: "1", Sequence: "T-R", Formulation: "R", Time: 1.0, Period: 2, TimeNumber: 2},
	}
}

func TestMergeAppliesMatchingDeviations(t *testing.T) {
	devs := []deviation.Deviation{
		{Period: 2, Subject: "1", SampleNo: 2, OriginalTime: 1.0, AdjustedTime: 1.25},
	}

	got := merge.Merge(scheduleRows(), devs)
	want := []merge.Row{
		{Subject: "1", Sequence: "TR", Formulation: "T", Time: 0.5, Period: 1},
		{Subject: "1", Sequence: "TR", Formulation: "T", Time: 1.0, Period: 1},
		{Subject: "1", Sequence: "TR", Formulation: "R", Time: 0.5, Period: 2},
		{Subject: "1", Sequence: "TR", Formulation: "R", Time: 1.25, Period: 2, Adjusted: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeWithoutMatchesKeepsEveryRow(t *testing.T) {
	rows := scheduleRows()
	devs := []deviation.Deviation{
		{Period: 3, Subject: "1", SampleNo: 1, AdjustedTime: 9},
		{Period: 1, Subject: "2", SampleNo: 1, AdjustedTime: 9},
	}

	got := merge.Merge(rows, devs)
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	for i := range rows {
		if got[i].Time != rows[i].Time {
			t.Errorf("row %d: time changed from %v to %v", i, rows[i].Time, got[i].Time)
		}
		if got[i].Adjusted {
			t.Errorf("row %d: unexpectedly marked adjusted", i)
		}
	}

	unmatched := merge.Unmatched(rows, devs)
	if diff := cmp.Diff(devs, unmatched); diff != "" {
		t.Errorf("Unmatched() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDuplicateDeviationsDoNotMultiplyRows(t *testing.T) {
	rows := scheduleRows()
	devs := []deviation.Deviation{
		{Period: 1, Subject: "1", SampleNo: 1, AdjustedTime: 0.6},
		{Period: 1, Subject: "1", SampleNo: 1, AdjustedTime: 0.7},
	}

	got := merge.Merge(rows, devs)
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	if got[0].Time != 0.7 {
		t.Errorf("expected last deviation to win, got %v", got[0].Time)
	}

	want := []merge.Duplicate{{Period: 1, Subject: "1", SampleNo: 1, Count: 2}}
	if diff := cmp.Diff(want, merge.Duplicates(devs)); diff != "" {
		t.Errorf("Duplicates() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	rows := scheduleRows()
	_ = merge.Merge(rows, []deviation.Deviation{{Period: 1, Subject: "1", SampleNo: 1, AdjustedTime: 0.9}})
	if diff := cmp.Diff(scheduleRows(), rows); diff != "" {
		t.Errorf("Merge() mutated its input (-want +got):\n%s", diff)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := merge.Merge(nil, nil); len(got) != 0 {
		t.Errorf("expected no rows, got %d", len(got))
	}
	if got := merge.Duplicates(nil); got != nil {
		t.Errorf("expected no duplicates, got %v", got)
	}
}

func TestDuplicatesKeepFirstAppearanceOrder(t *testing.T) {
	devs := []deviation.Deviation{
		{Period: 2, Subject: "2", SampleNo: 1, AdjustedTime: 0.5},
		{Period: 1, Subject: "1", SampleNo: 2, AdjustedTime: 1.1},
		{Period: 2, Subject: "2", SampleNo: 1, AdjustedTime: 0.6},
		{Period: 1, Subject: "1", SampleNo: 2, AdjustedTime: 1.2},
		{Period: 1, Subject: "1", SampleNo: 2, AdjustedTime: 1.3},
		{Period: 1, Subject: "1", SampleNo: 1, AdjustedTime: 0.4},
	}

	want := []merge.Duplicate{
		{Period: 2, Subject: "2", SampleNo: 1, Count: 2},
		{Period: 1, Subject: "1", SampleNo: 2, Count: 3},
	}
	if diff := cmp.Diff(want, merge.Duplicates(devs)); diff != "" {
		t.Errorf("Duplicates() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmatchedAllMatched(t *testing.T) {
	devs := []deviation.Deviation{{Period: 1, Subject: "1", SampleNo: 1, AdjustedTime: 0.6}}
	if got := merge.Unmatched(scheduleRows(), devs); len(got) != 0 {
		t.Errorf("expected every deviation to match, got %v", got)
	}
}

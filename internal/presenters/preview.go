package presenters

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/glizzus/pkinput/internal/deviation"
	"github.com/glizzus/pkinput/internal/pipeline"
	"github.com/glizzus/pkinput/internal/table"
	"github.com/olekukonko/tablewriter"
)

// PreviewRows is how many rows a preview shows.
const PreviewRows = 5

// WritePreview renders the first n rows of t as a text table.
func WritePreview(w io.Writer, t *table.Table, n int) {
	head := t.Head(n)

	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader(t.Columns)
	tw.AppendBulk(head.Strings())
	tw.Render()

	if t.Len() > head.Len() {
		fmt.Fprintf(w, "... %d more rows\n", t.Len()-head.Len())
	}
}

// WriteScheduleReport prints the preview and time numbering of a schedule run.
func WriteScheduleReport(w io.Writer, res *pipeline.ScheduleResult) error {
	fmt.Fprintf(w, "Schedule prepared: %d rows for %d subjects (%d withdrawn)\n",
		len(res.Rows), res.Subjects-res.WithdrawnSeen, res.WithdrawnSeen)
	WritePreview(w, res.Table(), PreviewRows)

	mapping, err := json.MarshalIndent(res.TimeMap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render time map: %w", err)
	}
	fmt.Fprintf(w, "Time to Number mapping:\n%s\n", mapping)
	return nil
}

// WriteActualReport prints the preview of an actual-time run and every
// variation record that was skipped, with its reason.
func WriteActualReport(w io.Writer, res *pipeline.ActualResult) {
	skipped := deviation.Skipped(res.Outcomes)
	fmt.Fprintf(w, "Times adjusted: %d of %d rows (%d variation records, %d skipped)\n",
		res.Adjusted(), len(res.Rows), len(res.Outcomes), len(skipped))
	WritePreview(w, res.Table(), PreviewRows)

	for _, o := range skipped {
		fmt.Fprintf(w, "skipped line %d: %s\n", o.Variation.Row, SkipReason(o.Err))
	}
	for _, d := range res.Duplicates {
		fmt.Fprintf(w, "duplicate: period %d subject %s sample %d recorded %d times, last kept\n",
			d.Period, d.Subject, d.SampleNo, d.Count)
	}
	if len(res.Unmatched) > 0 {
		fmt.Fprintf(w, "%d deviations matched no schedule row\n", len(res.Unmatched))
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

// SkipReason renders a skip error on one line.
func SkipReason(err error) string {
	if err == nil {
		return ""
	}
	return strings.ReplaceAll(err.Error(), "\n", " ")
}

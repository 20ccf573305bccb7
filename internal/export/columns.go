package export

import (
	"github.com/streamforms/submission-exporter/internal/model"
)

// TimestampLayout renders submission timestamps in listings and text
// documents. Excel keeps a native date cell instead.
const TimestampLayout = "2006-01-02 15:04:05"

// Columns resolves the column set for a form's submissions: the
// timestamp first, then the form's current field schema. A form whose
// schema is empty (all fields deleted, legacy data) falls back to the
// union of field names seen across rows, in first-seen order, so old
// submissions stay exportable.
func Columns(form *model.Form, rows []*model.Submission, submitTimeLabel string) []model.DataField {
	if len(form.Fields) > 0 {
		return form.DataFields(submitTimeLabel)
	}

	cols := []model.DataField{{Name: model.SubmitTimeField, Label: submitTimeLabel}}
	seen := map[string]struct{}{model.SubmitTimeField: {}}
	for _, sub := range rows {
		for _, fv := range sub.Values {
			if _, ok := seen[fv.Name]; ok {
				continue
			}
			seen[fv.Name] = struct{}{}
			cols = append(cols, model.DataField{Name: fv.Name, Label: fv.Name})
		}
	}
	return cols
}

// Row flattens sub into one cell per column. Multi-valued fields join
// with ", ", fields absent from the submission render empty.
func Row(cols []model.DataField, sub *model.Submission) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		if col.Name == model.SubmitTimeField {
			out[i] = sub.SubmittedAt.UTC().Format(TimestampLayout)
			continue
		}
		out[i] = sub.Values.Value(col.Name)
	}
	return out
}

// Headings returns the column labels in order.
func Headings(cols []model.DataField) []string {
	labels := make([]string, len(cols))
	for i, col := range cols {
		labels[i] = col.Label
	}
	return labels
}

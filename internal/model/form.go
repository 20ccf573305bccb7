package model

import "time"

// SubmitTimeField is the pseudo-field exposing the submission timestamp as
// the first column of listings and exports.
const SubmitTimeField = "submitted_at"

// FormField is one entry of a form's current field schema.
type FormField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

// Form is a dynamically defined form whose submissions this service manages.
// The definition itself is owned by the form-management subsystem; here it is
// read-only and only consulted for identity and the export column schema.
type Form struct {
	ID        int64       `json:"id" db:"id"`
	Slug      string      `json:"slug" db:"slug"`
	Title     string      `json:"title" db:"title"`
	Fields    []FormField `json:"fields" db:"fields"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// DataField is a column over submission data: field name plus the heading
// shown in listings and export documents.
type DataField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// DataFields returns the columns for this form's submissions: the submission
// timestamp first, then the form's current schema fields in order.
// submitTimeLabel carries the (possibly localized) timestamp heading.
func (f *Form) DataFields(submitTimeLabel string) []DataField {
	fields := make([]DataField, 0, len(f.Fields)+1)
	fields = append(fields, DataField{Name: SubmitTimeField, Label: submitTimeLabel})
	for _, ff := range f.Fields {
		label := ff.Label
		if label == "" {
			label = ff.Name
		}
		fields = append(fields, DataField{Name: ff.Name, Label: label})
	}
	return fields
}

// FormOverview is one row of the form index.
type FormOverview struct {
	ID              int64  `json:"id" db:"id"`
	Slug            string `json:"slug" db:"slug"`
	Title           string `json:"title" db:"title"`
	SubmissionCount int64  `json:"submission_count" db:"submission_count"`
}

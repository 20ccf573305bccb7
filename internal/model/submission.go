package model

import (
	"strings"
	"time"
)

// FieldValue is one captured field of a submission. Multi-valued fields
// (checkbox groups, multi-selects) keep every entry.
type FieldValue struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// String renders the value the way listings and exports show it:
// multi-valued entries joined with ", ".
func (v FieldValue) String() string {
	return strings.Join(v.Values, ", ")
}

// FieldValues is the ordered field mapping of one submission. Order is
// preserved exactly as captured; the schema is whatever the owning form
// defined at submission time and is never re-validated here.
type FieldValues []FieldValue

// Get returns the value captured under name.
func (vs FieldValues) Get(name string) (FieldValue, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v, true
		}
	}
	return FieldValue{}, false
}

// Value returns the rendered value for name, or "" when the field was not
// part of the submission.
func (vs FieldValues) Value(name string) string {
	v, ok := vs.Get(name)
	if !ok {
		return ""
	}
	return v.String()
}

// Names returns the field names in capture order.
func (vs FieldValues) Names() []string {
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		names = append(names, v.Name)
	}
	return names
}

// Submission is an immutable record of one form-fill event. Created once at
// submit time, destroyed only by explicit bulk delete.
type Submission struct {
	ID          int64       `json:"id" db:"id"`
	FormID      int64       `json:"form_id" db:"form_id"`
	SubmittedAt time.Time   `json:"submitted_at" db:"submitted_at"`
	Values      FieldValues `json:"values" db:"data"`
}

// NewSubmission is the intake payload written by the form-capture subsystem.
type NewSubmission struct {
	FormID      int64       `db:"form_id"`
	SubmittedAt time.Time   `db:"submitted_at"` // zero value: store stamps now (UTC)
	Values      FieldValues `db:"data"`
}

// SubmissionPage is one page of listing results plus the total match count
// the host needs for pagination rendering.
type SubmissionPage struct {
	Rows  []*Submission `json:"rows"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

// Pages returns the number of pages the total spans at this page size.
func (p *SubmissionPage) Pages() int64 {
	if p.Size <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + int64(p.Size) - 1) / int64(p.Size)
}

// ExportDocument is a fully serialized export ready to be sent as a file
// download.
type ExportDocument struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// ExportResult wraps a built (or cache-served) document with accounting data.
type ExportResult struct {
	Document *ExportDocument
	RowCount int64
	Cached   bool
}

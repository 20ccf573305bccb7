package options

import (
	"context"
	"time"

	"github.com/streamforms/submission-exporter/internal/export"
)

// ExportOptions scopes one export request. SubmitTimeLabel carries the
// localized heading for the timestamp column, resolved at the request
// boundary where the admin's language is known.
type ExportOptions struct {
	context.Context
	Time            time.Time
	FormID          int64
	Format          export.Format
	SubmitTimeLabel string
}

func NewExportOptions(ctx context.Context, formID int64, format export.Format, submitTimeLabel string) *ExportOptions {
	return &ExportOptions{
		Context:         ctx,
		Time:            time.Now().UTC(),
		FormID:          formID,
		Format:          format,
		SubmitTimeLabel: submitTimeLabel,
	}
}

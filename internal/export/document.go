package export

import (
	"fmt"

	"github.com/streamforms/submission-exporter/internal/model"
)

// Build serializes rows into a document of the requested format.
func Build(f Format, form *model.Form, cols []model.DataField, rows []*model.Submission) ([]byte, error) {
	switch f {
	case FormatCSV:
		return BuildCSV(cols, rows)
	case FormatExcel:
		return BuildExcel(cols, rows)
	case FormatPDF:
		return BuildPDF(form, cols, rows)
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

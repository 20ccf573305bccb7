package export

import (
	"bytes"
	"encoding/csv"

	"github.com/streamforms/submission-exporter/internal/model"
)

// BuildCSV serializes rows under cols into an RFC 4180 document with a
// leading header row. Zero rows still yield the header.
func BuildCSV(cols []model.DataField, rows []*model.Submission) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Headings(cols)); err != nil {
		return nil, err
	}
	for _, sub := range rows {
		if err := w.Write(Row(cols, sub)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

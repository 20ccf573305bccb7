package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/streamforms/submission-exporter/internal/model"
)

const excelSheet = "Submissions"

// BuildExcel serializes rows under cols into a single-sheet XLSX
// workbook. The timestamp column is written as a native date cell so
// spreadsheet sorting and formatting work without reparsing.
func BuildExcel(cols []model.DataField, rows []*model.Submission) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", excelSheet); err != nil {
		return nil, err
	}

	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(excelSheet, cell, col.Label); err != nil {
			return nil, err
		}
	}

	for r, sub := range rows {
		for c, col := range cols {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			var v any
			if col.Name == model.SubmitTimeField {
				v = sub.SubmittedAt.UTC()
			} else {
				v = sub.Values.Value(col.Name)
			}
			if err := f.SetCellValue(excelSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

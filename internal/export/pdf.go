package export

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"github.com/streamforms/submission-exporter/internal/model"
)

// BuildPDF renders rows under cols as a landscape table document, one
// header row plus one table line per submission. Landscape buys room
// for wide forms; cell text wraps rather than truncates.
func BuildPDF(form *model.Form, cols []model.DataField, rows []*model.Submission) ([]byte, error) {
	m := pdf.NewMaroto(consts.Landscape, consts.A4)
	m.SetBorder(false)

	contents := make([][]string, 0, len(rows))
	for _, sub := range rows {
		contents = append(contents, Row(cols, sub))
	}

	m.Row(12, func() {
		m.Col(12, func() {
			m.Text(form.Title, props.Text{
				Size:  14,
				Style: consts.Bold,
			})
		})
	})
	m.TableList(Headings(cols), contents, props.TableList{
		HeaderProp:  props.TableListContent{Size: 9, Style: consts.Bold},
		ContentProp: props.TableListContent{Size: 8},
		Align:       consts.Left,
	})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to generate output: %w", err)
	}
	return buf.Bytes(), nil
}

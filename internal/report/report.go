// Package report renders prediction results for display.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/crimson-sun/menagerie/internal/model"
)

// Write renders one table row per prediction with a percentage column per
// class, columns in class-index order.
func Write(w io.Writer, preds []model.Prediction) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"image"}, model.LabelNames()...))
	table.SetAutoFormatHeaders(false)

	for _, p := range preds {
		row := make([]string, 0, model.NumLabels+1)
		row = append(row, p.ID)
		for _, pc := range p.Percent {
			row = append(row, fmt.Sprintf("%.2f%%", pc))
		}
		table.Append(row)
	}
	table.Render()
}

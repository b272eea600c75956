package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Render prints res as a bordered table preceded by its title.
func Render(w io.Writer, res *Result) {
	fmt.Fprintf(w, "%s (%s)\n", res.Title, res.Name)

	table := tablewriter.NewWriter(w)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(res.Rows)
	table.Render()

	fmt.Fprintf(w, "%d row(s)\n", len(res.Rows))
}

// RenderList prints the report catalog.
func RenderList(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"name", "title"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, d := range List() {
		table.Append([]string{d.Name, d.Title})
	}
	table.Render()
}

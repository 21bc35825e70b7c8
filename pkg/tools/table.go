package tools

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

func ShowTable(w io.Writer, header []string, data [][]string) {
	if len(data) == 0 {
		fmt.Fprintln(w, "Nothing to show.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(data)

	fmt.Fprintln(w)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.Render()
	fmt.Fprintln(w)
}

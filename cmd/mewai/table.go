package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mewai/internal/stages"
)

// column describes one table column. A zero maxWidth leaves the column
// unbounded; wider cells wrap onto extra lines.
type column struct {
	header   string
	right    bool
	maxWidth int
}

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.header
		align := text.AlignLeft
		if col.right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			WidthMax:         col.maxWidth,
			WidthMaxEnforcer: text.WrapSoft,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// renderStageTable lists pipeline stages with their derived status.
func renderStageTable(states []stages.State, colorize bool) string {
	rows := make([][]string, 0, len(states))
	for _, st := range states {
		rows = append(rows, []string{
			strconv.Itoa(st.Ordinal + 1),
			st.Label,
			colorStageStatus(st.Status, colorize),
		})
	}
	return renderTable([]column{
		{header: "#", right: true},
		{header: "Stage"},
		{header: "Status"},
	}, rows)
}

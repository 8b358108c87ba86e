package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gyre/internal/scheduler"
)

// renderSummary formats the end-of-run counters as a small two column table.
func renderSummary(summary scheduler.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Result", "Count"})
	tw.AppendRows([]table.Row{
		{"Total", strconv.Itoa(summary.Total)},
		{"Finished", strconv.Itoa(summary.Done)},
		{"Errors", strconv.Itoa(summary.Errors)},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

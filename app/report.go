package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lysyi3m/pin-drip/app/pipeline"
)

func renderRunReport(result pipeline.RunResult) string {
	summary := result.Summary()

	var b strings.Builder
	if len(result.Items) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"#", "File", "Title", "Pin", "Archived", "Error"})
		for i, item := range result.Items {
			tw.AppendRow(table.Row{i + 1, item.Name, item.Title, item.PinID, yesNo(item.Archived), item.Error})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight},
			{Number: 3, WidthMax: 40},
			{Number: 6, WidthMax: 60},
		})
		b.WriteString(tw.Render())
		b.WriteString("\n")
	}

	b.WriteString("[")
	b.WriteString(strings.ToUpper(summary.Status))
	b.WriteString("] ")
	b.WriteString(summary.Message)
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

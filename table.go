package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"

	"epgmerge/epg"
)

const maxCellWidth = 60

// renderReport lays out one row per source followed by the output totals.
func renderReport(report *epg.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Source", "Channels", "Programmes", "Bad timestamps", "Status"})

	for _, s := range report.Sources {
		status := "ok"
		if !s.OK() {
			status = "skipped: " + runewidth.Truncate(s.Err.Error(), maxCellWidth, "…")
		}
		tw.AppendRow(table.Row{
			s.Index + 1,
			runewidth.Truncate(s.URL, maxCellWidth, "…"),
			s.Channels,
			s.Programmes,
			s.TimestampErrors,
			status,
		})
	}

	// Counts right-aligned, text left.
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	var b strings.Builder
	b.WriteString(tw.Render())
	fmt.Fprintf(&b, "\n%s: %d channels, %d programmes, %d/%d sources skipped, offset %s",
		report.OutputPath, report.Channels, report.Programmes, report.Failed(), len(report.Sources), report.Offset)
	return b.String()
}

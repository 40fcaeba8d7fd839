package stats

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderSummary prints the overview block.
func RenderSummary(w io.Writer, report Report) error {
	if len(report.Sessions) == 0 && len(report.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No sessions or tracked cards found.")
		return err
	}
	s := report.Summary
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Summary")
	tw.AppendRows([]table.Row{
		{"Sessions", s.Sessions},
		{"Cards reviewed", s.CardsStudied},
		{"Avg accuracy", fmt.Sprintf("%.1f%%", s.AvgAccuracy*100)},
		{"Best accuracy", fmt.Sprintf("%.1f%%", s.BestAccuracy*100)},
		{"Tracked cards", s.Tracked},
		{"Never shown", s.Unseen},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
		return err
	}
	return nil
}

// RenderCurve prints the smoothed session accuracy as a sparkline.
func RenderCurve(w io.Writer, report Report, width int) error {
	if len(report.Curve) == 0 {
		return nil
	}
	values := Tail(report.Curve, width-len("Accuracy  "))
	_, err := fmt.Fprintf(w, "Accuracy  %s\n", Sparkline(values))
	return err
}

// RenderCardTable prints per-card counters, weakest first. top limits the
// number of rows; 0 prints all of them.
func RenderCardTable(w io.Writer, rows []CardRow, top, width int) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No tracked cards found.")
		return err
	}
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Card", "Category", "Shown", "Correct", "Accuracy"})
	for _, row := range rows {
		tw.AppendRow(table.Row{
			row.ID,
			row.Label,
			string(row.Category),
			row.Shown,
			row.Correct,
			fmt.Sprintf("%.1f%%", row.Accuracy*100),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	if width > 0 {
		tw.SetAllowedRowLength(width)
	}
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
)

const recentLimit = 15

// Summary aggregates the log for display.
type Summary struct {
	Reviews           int
	TotalApplied      int
	TotalLines        int
	AverageConfidence float64
}

// Summarize computes aggregate figures over the records.
func Summarize(records []TransformationRecord) Summary {
	s := Summary{Reviews: len(records)}

	for _, rec := range records {
		s.TotalApplied += rec.SuggestionsApplied
		s.TotalLines += rec.LinesCount
		s.AverageConfidence += rec.AverageConfidence
	}

	if s.Reviews > 0 {
		s.AverageConfidence /= float64(s.Reviews)
	}

	return s
}

// RenderTable writes the most recent records plus an aggregate footer
// as a text table.
func RenderTable(w io.Writer, records []TransformationRecord) {
	summary := Summarize(records)

	recent := records
	if len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"When", "File", "Lines", "Applied", "Confidence"})

	for _, rec := range recent {
		tbl.AppendRow(table.Row{
			humanize.Time(rec.Timestamp),
			rec.FileID,
			rec.LinesCount,
			rec.SuggestionsApplied,
			fmt.Sprintf("%.2f", rec.AverageConfidence),
		})
	}

	tbl.AppendFooter(table.Row{
		"Total",
		fmt.Sprintf("%d reviews", summary.Reviews),
		summary.TotalLines,
		summary.TotalApplied,
		fmt.Sprintf("%.2f", summary.AverageConfidence),
	})

	tbl.Render()
}

// RenderPlot writes an HTML line chart of review confidence and
// applied-rename counts over time.
func RenderPlot(w io.Writer, records []TransformationRecord) error {
	line := charts.NewLine()

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:     "1000px",
			Height:    "500px",
			PageTitle: "Rename Statistics",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Review confidence over time",
			Subtitle: fmt.Sprintf("%d recorded reviews", len(records)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Confidence"}),
	)

	labels := make([]string, 0, len(records))
	confidences := make([]opts.LineData, 0, len(records))
	applied := make([]opts.LineData, 0, len(records))

	for _, rec := range records {
		labels = append(labels, rec.Timestamp.Format("01-02 15:04"))
		confidences = append(confidences, opts.LineData{Value: rec.AverageConfidence})
		applied = append(applied, opts.LineData{Value: rec.SuggestionsApplied})
	}

	line.SetXAxis(labels).
		AddSeries("Average confidence", confidences).
		AddSeries("Renames applied", applied)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

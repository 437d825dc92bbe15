// Package report renders recorded link sessions into shareable artefacts:
// an HTML page of interactive charts and a PNG poll-time plot.
package report

import (
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/robolink/db"
)

// WriteHTML renders the session's charts as a self-contained HTML page:
// sequence progress per sample and poll time per sample.
func WriteHTML(w io.Writer, info db.SessionInfo, summary *db.SessionSummary, samples []db.Sample) error {
	subtitle := fmt.Sprintf("session=%s addr=%s rate=%gHz captured=%d timeouts=%d missed=%d",
		info.SessionID, info.LocalAddr, info.TargetRateHz, summary.Captured, summary.Timeouts, summary.Missed)

	xAxis := make([]int, len(samples))
	seqData := make([]opts.LineData, len(samples))
	pollData := make([]opts.ScatterData, len(samples))
	for i, s := range samples {
		xAxis[i] = i
		if s.TimedOut {
			seqData[i] = opts.LineData{Value: nil}
		} else {
			seqData[i] = opts.LineData{Value: s.Sequence}
		}
		pollData[i] = opts.ScatterData{Value: []interface{}{i, s.PollMicros}}
	}

	seqLine := charts.NewLine()
	seqLine.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Link Report", Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Captured sequence numbers", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sample"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "sequence"}),
	)
	seqLine.SetXAxis(xAxis).AddSeries("sequence", seqData)

	pollScatter := charts.NewScatter()
	pollScatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Poll time per sample",
			Subtitle: fmt.Sprintf("mean=%.0fµs stddev=%.0fµs p95=%.0fµs", summary.PollMeanMicros, summary.PollStdDevMicros, summary.PollP95Micros),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sample"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "poll µs"}),
	)
	pollScatter.AddSeries("poll time", pollData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	page := components.NewPage()
	page.AddCharts(seqLine, pollScatter)
	return page.Render(w)
}

// SavePNG writes a poll-time line plot for the session to path.
func SavePNG(path string, samples []db.Sample) error {
	pts := make(plotter.XYs, 0, len(samples))
	for i, s := range samples {
		if s.TimedOut {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: float64(s.PollMicros)})
	}
	if len(pts) == 0 {
		return fmt.Errorf("report: no captured samples to plot")
	}

	p := plot.New()
	p.Title.Text = "Poll time per sample"
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "poll time (µs)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create line plot: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 158, B: 137, A: 255}
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

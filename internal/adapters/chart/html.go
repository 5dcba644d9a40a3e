package chart

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
	"github.com/okian/fieldtrace/internal/domain/types"
)

// Interactive chart defaults.
const (
	htmlWidth  = "960px"
	htmlHeight = "480px"
)

// RenderRankingsHTML writes an interactive bar chart of mean scores.
func RenderRankingsHTML(w io.Writer, entries []types.Entry) error {
	teams := make([]string, len(entries))
	scores := make([]opts.BarData, len(entries))
	for i, e := range entries {
		teams[i] = e.Team
		scores[i] = opts.BarData{Name: e.Team, Value: e.MeanScore}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Rankings", Width: htmlWidth, Height: htmlHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Rankings", Subtitle: "mean total score per team, " + strconv.Itoa(len(entries)) + " teams"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Team"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean score"}),
	)
	bar.SetXAxis(teams).
		AddSeries("mean score", scores,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render rankings chart: %w", err)
	}
	return nil
}

// RenderTraceHTML writes an interactive page with the robot's path, its
// velocity over time and the velocity distribution.
func RenderTraceHTML(w io.Writer, t *trace.Trace, s season.Season, bins int) error {
	if bins < 1 || bins > trace.MaxHistogramBins {
		return fmt.Errorf("histogram bins must be in [1, %d], got %d", trace.MaxHistogramBins, bins)
	}
	page := components.NewPage()
	page.AddCharts(pathScatter(t, s), velocityLine(t), velocityBars(t, bins))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render trace chart: %w", err)
	}
	return nil
}

func pathScatter(t *trace.Trace, s season.Season) *charts.Scatter {
	g := t.Grid()
	var moves, actions []opts.ScatterData
	for _, p := range t.Points() {
		pt := opts.ScatterData{Value: []any{p.X * g.FieldWidth, p.Y * g.FieldHeight}}
		if p.HasAction() {
			pt.Name = string(p.Action)
			actions = append(actions, pt)
			continue
		}
		moves = append(moves, pt)
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Name(), Width: htmlWidth, Height: htmlHeight}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s %d", s.Name(), s.Year()), Subtitle: "path"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: 0, Max: g.FieldWidth, Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: g.FieldHeight, Name: "y"}),
	)
	sc.AddSeries("path", moves, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	sc.AddSeries("actions", actions, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	return sc
}

func velocityLine(t *trace.Trace) *charts.Line {
	g := t.Grid()
	series := t.VelocitySeries()
	x := make([]string, len(series))
	y := make([]opts.LineData, len(series))
	for i, v := range series {
		x[i] = strconv.FormatFloat(float64(i+1)/g.SampleRate, 'f', 2, 64)
		y[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: htmlWidth, Height: htmlHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Velocity"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Speed"}),
	)
	line.SetXAxis(x).AddSeries("speed", y)
	return line
}

func velocityBars(t *trace.Trace, bins int) *charts.Bar {
	h := t.VelocityHistogram(bins)
	x := make([]string, len(h.Bins))
	y := make([]opts.BarData, len(h.Bins))
	for i, n := range h.Bins {
		x[i] = strconv.FormatFloat(h.Labels[i], 'f', 2, 64)
		y[i] = opts.BarData{Value: n}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: htmlWidth, Height: htmlHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Velocity distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Speed"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Samples"}),
	)
	bar.SetXAxis(x).AddSeries("samples", y)
	return bar
}

// Package chart renders traces and rankings. Static images use gonum/plot and
// take their format from the file extension (png, svg, pdf, eps, jpg, tif);
// interactive HTML pages use go-echarts.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

// Default image size.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// ErrFormat is returned for file extensions plot cannot encode.
var ErrFormat = errors.New("unsupported image format")

var formats = map[string]bool{ //nolint:gochecknoglobals // read-only lookup
	"png": true, "svg": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

var (
	blue    = color.RGBA{R: 0x1f, G: 0x4e, B: 0xa8, A: 0xff}
	red     = color.RGBA{R: 0xc6, G: 0x28, B: 0x28, A: 0xff}
	neutral = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
	ink     = color.RGBA{A: 0xff}
)

// Velocity plots speed against match time.
func Velocity(t *trace.Trace) (*plot.Plot, error) {
	g := t.Grid()
	series := t.VelocitySeries()
	pts := make(plotter.XYs, len(series))
	for i, v := range series {
		pts[i] = plotter.XY{X: float64(i+1) / g.SampleRate, Y: v}
	}

	p := plot.New()
	p.Title.Text = "Velocity"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Speed (units/s)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("velocity line: %w", err)
	}
	line.Width = vg.Points(1)
	line.Color = blue
	p.Add(line)
	return p, nil
}

// Histogram plots the distribution of speeds in bins buckets.
func Histogram(t *trace.Trace, bins int) (*plot.Plot, error) {
	if bins < 1 || bins > trace.MaxHistogramBins {
		return nil, fmt.Errorf("histogram bins must be in [1, %d], got %d", trace.MaxHistogramBins, bins)
	}
	p := plot.New()
	p.Title.Text = "Velocity distribution"
	p.X.Label.Text = "Speed (units/s)"
	p.Y.Label.Text = "Samples"

	series := t.VelocitySeries()
	if len(series) == 0 {
		return p, nil
	}
	h, err := plotter.NewHist(plotter.Values(series), bins)
	if err != nil {
		return nil, fmt.Errorf("velocity histogram: %w", err)
	}
	h.FillColor = blue
	p.Add(h)
	return p, nil
}

// Path draws the season's zones and the robot's path across the field, with
// a marker at every action.
func Path(t *trace.Trace, s season.Season) (*plot.Plot, error) {
	g := t.Grid()
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %d", s.Name(), s.Year())
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = 0, g.FieldWidth
	p.Y.Min, p.Y.Max = 0, g.FieldHeight

	for _, z := range s.Zones() {
		xys := make(plotter.XYs, len(z.Polygon))
		for i, v := range z.Polygon {
			xys[i] = plotter.XY{X: v.X * g.FieldWidth, Y: v.Y * g.FieldHeight}
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.Name, err)
		}
		poly.Color = fade(allianceColor(z.Alliance))
		poly.LineStyle.Color = allianceColor(z.Alliance)
		p.Add(poly)
	}

	points := t.Points()
	path := make(plotter.XYs, len(points))
	var actions plotter.XYs
	for i, pt := range points {
		path[i] = plotter.XY{X: pt.X * g.FieldWidth, Y: pt.Y * g.FieldHeight}
		if pt.HasAction() {
			actions = append(actions, path[i])
		}
	}
	line, err := plotter.NewLine(path)
	if err != nil {
		return nil, fmt.Errorf("path line: %w", err)
	}
	line.Color = ink
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("path", line)

	if len(actions) > 0 {
		sc, err := plotter.NewScatter(actions)
		if err != nil {
			return nil, fmt.Errorf("action markers: %w", err)
		}
		sc.GlyphStyle.Color = red
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("actions", sc)
	}
	return p, nil
}

// Save writes p to path using DefaultWidth and DefaultHeight.
func Save(p *plot.Plot, path string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !formats[ext] {
		return fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
	}
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func allianceColor(a season.Alliance) color.RGBA {
	switch a {
	case season.AllianceBlue:
		return blue
	case season.AllianceRed:
		return red
	default:
		return neutral
	}
}

func fade(c color.RGBA) color.RGBA {
	c.A = 0x40
	c.R, c.G, c.B = uint8(uint16(c.R)*0x40/0xff), uint8(uint16(c.G)*0x40/0xff), uint8(uint16(c.B)*0x40/0xff)
	return c
}

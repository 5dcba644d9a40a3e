package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"

	"github.com/okian/fieldtrace/internal/adapters/chart"
	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

func runAnalyze(_ context.Context, e env, args []string) error {
	fs := newFlagSet("analyze", e)
	var sf seasonFlags
	sf.register(fs)
	in := fs.String("in", "-", "Input trace file")
	bins := fs.Int("bins", analysis.DefaultBins, "Velocity histogram bins")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := checkBins(e, *bins); err != nil {
		return err
	}

	t, s, err := loadTrace(*in, &sf, e)
	if err != nil {
		return err
	}
	return writeJSON(e.stdout, analysis.Analyze(t, s, *bins))
}

func runPlot(_ context.Context, e env, args []string) error {
	fs := newFlagSet("plot", e)
	var sf seasonFlags
	sf.register(fs)
	in := fs.String("in", "-", "Input trace file")
	kind := fs.String("kind", "path", "Chart kind: path, velocity or histogram")
	bins := fs.Int("bins", analysis.DefaultBins, "Histogram bins")
	out := fs.String("out", "", "Output file; the extension picks the format, .html renders every chart interactively")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *out == "" {
		fmt.Fprintln(e.stderr, "plot: -out is required")
		fs.Usage()
		return errUsage
	}
	if err := checkBins(e, *bins); err != nil {
		return err
	}

	t, s, err := loadTrace(*in, &sf, e)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(*out), ".html") {
		return writeHTML(*out, t, s, *bins)
	}
	var (
		p       *plot.Plot
		plotErr error
	)
	switch *kind {
	case "path":
		p, plotErr = chart.Path(t, s)
	case "velocity":
		p, plotErr = chart.Velocity(t)
	case "histogram":
		p, plotErr = chart.Histogram(t, *bins)
	default:
		fmt.Fprintf(e.stderr, "plot: unknown kind %q\n", *kind)
		return errUsage
	}
	if plotErr != nil {
		return plotErr
	}
	return chart.Save(p, *out)
}

func writeHTML(path string, t *trace.Trace, s season.Season, bins int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return chart.RenderTraceHTML(f, t, s, bins)
}

// checkBins rejects histogram bin counts outside [1, analysis.MaxBins].
func checkBins(e env, bins int) error {
	if bins < 1 || bins > analysis.MaxBins {
		fmt.Fprintf(e.stderr, "-bins must be between 1 and %d\n", analysis.MaxBins)
		return errUsage
	}
	return nil
}

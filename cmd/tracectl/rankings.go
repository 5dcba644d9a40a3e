package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/fieldtrace/internal/adapters/chart"
	"github.com/okian/fieldtrace/internal/domain/types"
	"github.com/okian/fieldtrace/internal/loadgen"
)

func runRankings(ctx context.Context, e env, args []string) error {
	fs := newFlagSet("rankings", e)
	url := fs.String("url", loadgen.DefaultBaseURL, "Base URL of the service")
	limit := fs.Int("limit", loadgen.DefaultTopN, "Number of ranking entries to fetch")
	timeout := fs.Duration("timeout", 10*time.Second, "HTTP request timeout")
	out := fs.String("out", "", "Write an HTML bar chart report here instead of JSON to stdout")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *out != "" && !strings.EqualFold(filepath.Ext(*out), ".html") {
		return fmt.Errorf("%w: %s", chart.ErrFormat, filepath.Ext(*out))
	}

	entries, err := loadgen.NewClient(*url, *timeout).Rankings(ctx, *limit)
	if err != nil {
		return err
	}
	if *out == "" {
		return writeJSON(e.stdout, entries)
	}
	return writeRankingsHTML(*out, entries)
}

func writeRankingsHTML(path string, entries []types.Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return chart.RenderRankingsHTML(f, entries)
}

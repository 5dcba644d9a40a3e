package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/fieldtrace/internal/app"
	"github.com/okian/fieldtrace/internal/config"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/pkg/logger"
)

const practiceSeason = `
year: 2030
name: Practice
grid:
  size: 40
  sample_rate: 2
actions:
  - code: shoot
    name: Shot
    points:
      auto: 4
zones:
  - name: left
    alliance: blue
    polygon:
      - {x: 0, y: 0}
      - {x: 0.5, y: 0}
      - {x: 0.5, y: 1}
`

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestLoadSeasons(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then only the built-in seasons are registered", func() {
			reg, err := loadSeasons(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(reg.Years(), convey.ShouldResemble, []int{2024})
			def, err := reg.Default()
			convey.So(err, convey.ShouldBeNil)
			convey.So(def.Name(), convey.ShouldEqual, "Crescendo")
		})

		convey.Convey("When an extra season file is configured", func() {
			path := filepath.Join(t.TempDir(), "practice.yaml")
			convey.So(os.WriteFile(path, []byte(practiceSeason), 0o600), convey.ShouldBeNil)
			cfg.SeasonFiles = []string{path}

			convey.Convey("Then it is registered and becomes the default", func() {
				reg, err := loadSeasons(cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(reg.Years(), convey.ShouldResemble, []int{2024, 2030})
				def, err := reg.Default()
				convey.So(err, convey.ShouldBeNil)
				convey.So(def.Year(), convey.ShouldEqual, 2030)
			})

			convey.Convey("Then a pinned year overrides the latest", func() {
				cfg.SeasonYear = 2024
				reg, err := loadSeasons(cfg)
				convey.So(err, convey.ShouldBeNil)
				def, err := reg.Default()
				convey.So(err, convey.ShouldBeNil)
				convey.So(def.Year(), convey.ShouldEqual, 2024)
			})
		})

		convey.Convey("When a season file is missing", func() {
			cfg.SeasonFiles = []string{filepath.Join(t.TempDir(), "missing.yaml")}
			_, err := loadSeasons(cfg)
			convey.So(errors.Is(err, season.ErrLoadSeason), convey.ShouldBeTrue)
		})

		convey.Convey("When the pinned year is not registered", func() {
			cfg.SeasonYear = 1999
			_, err := loadSeasons(cfg)
			convey.So(errors.Is(err, season.ErrUnknownSeason), convey.ShouldBeTrue)
		})
	})
}

func TestHTTPServer(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.WorkerCount = 2
		svc := app.New(app.WithWorkerCount(cfg.WorkerCount), app.WithLogger(logger.Nop()))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := newHTTPServer(ctx, cfg, svc)

		convey.Convey("Then the server carries the configured address and timeouts", func() {
			convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)
			convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
		})

		convey.Convey("Then its handler serves the API routes", func() {
			ts := httptest.NewServer(srv.Handler)
			defer ts.Close()

			for _, path := range []string{"/healthz", "/stats", "/seasons", "/rankings", "/schema/trace"} {
				resp, err := http.Get(ts.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then refreshing service metrics does not panic", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given an ephemeral listen address", t, func() {
		t.Setenv("FIELDTRACE_ADDR", "127.0.0.1:0")
		t.Setenv("FIELDTRACE_WORKER_COUNT", "2")

		convey.Convey("When the context ends the server shuts down cleanly", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()
			convey.So(run(ctx), convey.ShouldBeNil)
		})

		convey.Convey("When the configuration is invalid run fails", func() {
			t.Setenv("FIELDTRACE_BINS", "0")
			err := run(context.Background())
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

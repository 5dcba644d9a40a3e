package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/fieldtrace/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxRankingLimit, convey.ShouldEqual, 100)
			convey.So(cfg.Bins, convey.ShouldEqual, 10)
			convey.So(cfg.SeasonYear, convey.ShouldEqual, 0)
			convey.So(cfg.SeasonFiles, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = " " },
			"bad log level":    func(c *config.Config) { c.LogLevel = "loud" },
			"bad log format":   func(c *config.Config) { c.LogFormat = "xml" },
			"zero queue":       func(c *config.Config) { c.QueueSize = 0 },
			"zero workers":     func(c *config.Config) { c.WorkerCount = 0 },
			"negative dedupe":  func(c *config.Config) { c.DedupeSize = -1 },
			"zero limit":       func(c *config.Config) { c.MaxRankingLimit = 0 },
			"negative reports": func(c *config.Config) { c.MaxReportsPerTeam = -1 },
			"zero body":        func(c *config.Config) { c.MaxBodyBytes = 0 },
			"zero bins":        func(c *config.Config) { c.Bins = 0 },
			"too many bins":    func(c *config.Config) { c.Bins = 1001 },
			"negative season":  func(c *config.Config) { c.SeasonYear = -2024 },
			"zero shutdown":    func(c *config.Config) { c.ShutdownTimeoutSec = 0 },
		}

		for _, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		}
	})

	convey.Convey("Given mixed-case log settings", t, func() {
		cfg := config.New(context.Background())
		cfg.LogLevel = "DEBUG"
		cfg.LogFormat = "JSON"
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/fieldtrace/internal/app"
	"github.com/okian/fieldtrace/internal/domain/model"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(50),
			service.WithDedupeSize(25),
			service.WithMaxReportsPerTeam(5),
			service.WithBins(8),
		)

		Convey("Then it reports its configuration before starting", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 50)
			So(stats["dedupeSize"], ShouldEqual, 25)
		})

		Convey("Then reads fail until it starts", func() {
			ctx := context.Background()
			_, err := svc.TopN(ctx, 5)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Team(ctx, "254")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Resolve(0)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Enqueue(ctx, model.Submission{ID: "x"}), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "x"), ShouldBeFalse)
			So(svc.Size(), ShouldEqual, 0)
			So(svc.Seasons(), ShouldBeEmpty)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then starting again is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
		})

		Convey("Then the built-in seasons are registered", func() {
			s, err := svc.Resolve(0)
			So(err, ShouldBeNil)
			So(s.Year(), ShouldEqual, 2024)
			So(svc.Seasons(), ShouldHaveLength, 1)
		})

		Convey("Then deduplication is active", func() {
			So(svc.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "sub-1"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, 1)
			svc.Unrecord(ctx, "sub-1")
			So(svc.Size(), ShouldEqual, 0)
		})

		Convey("When it shuts down", func() {
			So(svc.Shutdown(ctx), ShouldBeNil)

			Convey("Then it no longer accepts submissions", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Enqueue(ctx, model.Submission{ID: "late"}), ShouldBeFalse)
				So(svc.Shutdown(ctx), ShouldBeNil)
			})

			Convey("Then reads still work", func() {
				entries, err := svc.TopN(ctx, 5)
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a service with a custom registry", t, func() {
		def := season.Definition2024()
		def.Year = 2025
		def.Name = "Practice"
		b, err := season.FromDefinition(def)
		So(err, ShouldBeNil)
		reg, err := season.NewRegistry(season.WithSeasons(b))
		So(err, ShouldBeNil)

		svc := service.New(service.WithSeasons(reg), service.WithWorkerCount(1))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		s, err := svc.Resolve(0)
		So(err, ShouldBeNil)
		So(s.Name(), ShouldEqual, "Practice")
		_, err = svc.Resolve(2024)
		So(err, ShouldNotBeNil)
	})

	Convey("Given a service with an empty registry", t, func() {
		reg, err := season.NewRegistry()
		So(err, ShouldBeNil)
		svc := service.New(service.WithSeasons(reg))

		So(errors.Is(svc.Start(context.Background()), season.ErrNoSeasons), ShouldBeTrue)
	})
}

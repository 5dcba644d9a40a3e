package model_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/model"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

func TestNewMatchReport(t *testing.T) {
	convey.Convey("Given a submission and its analysis", t, func() {
		tr, err := trace.FromSparse(trace.DefaultGrid(), nil)
		convey.So(err, convey.ShouldBeNil)
		sub := model.Submission{ID: "sub-1", Team: "254", Match: "qm3", Season: 2024, Trace: tr, ReceivedAt: time.Now()}
		at := time.Date(2024, 4, 18, 10, 0, 0, 0, time.UTC)

		convey.Convey("When a report is built", func() {
			r := model.NewMatchReport(sub, analysis.Report{Season: 2024, MaxVelocity: 3}, at)

			convey.Convey("Then identity fields are copied from the submission", func() {
				convey.So(r.SubmissionID, convey.ShouldEqual, "sub-1")
				convey.So(r.Team, convey.ShouldEqual, "254")
				convey.So(r.Match, convey.ShouldEqual, "qm3")
				convey.So(r.Report.MaxVelocity, convey.ShouldEqual, 3)
				convey.So(r.AnalyzedAt, convey.ShouldEqual, at)
			})
		})
	})
}

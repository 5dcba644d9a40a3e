package analysis_test

import (
	"encoding/json"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/geometry"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

func testSeason() *season.Bundle {
	s, err := season.FromDefinition(season.Definition{
		Year: 2099,
		Grid: trace.Grid{
			Size:        8,
			SampleRate:  4,
			FieldWidth:  54,
			FieldHeight: 27,
			Sections: map[string]trace.Span{
				trace.SectionAuto:   {Start: 0, End: 1},
				trace.SectionTeleop: {Start: 1, End: 2},
			},
		},
		Actions: []season.ActionDef{{Code: "spk", Points: map[string]int{trace.SectionAuto: 5, trace.SectionTeleop: 2}}},
		Zones: []season.Zone{
			{Name: "blue", Alliance: season.AllianceBlue, Polygon: geometry.Rect(0, 0, 0.5, 1)},
			{Name: "red", Alliance: season.AllianceRed, Polygon: geometry.Rect(0.5, 0, 1, 1)},
		},
	})
	if err != nil {
		panic(err)
	}
	return s
}

func TestAnalyze(t *testing.T) {
	Convey("Given a trace that shoots in auto and crosses the field", t, func() {
		s := testSeason()
		tr, err := trace.FromSparse(s.Grid(), []trace.TimePoint{
			{Index: 0, X: 0.1, Y: 0.5, Action: "spk"},
			{Index: 5, X: 0.9, Y: 0.5, Action: "spk"},
		})
		So(err, ShouldBeNil)

		Convey("When it is analyzed", func() {
			r := analysis.Analyze(tr, s, 0)

			Convey("Then kinematics come from the trace", func() {
				jump := 0.8 * 54 * 4
				So(r.Samples, ShouldEqual, 8)
				So(r.MaxVelocity, ShouldAlmostEqual, jump, 1e-9)
				So(r.AverageVelocity, ShouldAlmostEqual, jump/7, 1e-9)
				So(r.DistanceTravelled, ShouldAlmostEqual, 0.8*54, 1e-9)
				So(r.SecondsNotMoving, ShouldEqual, 6.0/4.0)
				So(r.Percentiles.P50, ShouldEqual, 0)
				So(r.Percentiles.P95, ShouldAlmostEqual, jump, 1e-9)
			})

			Convey("Then the histogram uses the default bin count", func() {
				So(r.Histogram.Bins, ShouldHaveLength, analysis.DefaultBins)
				So(r.Histogram.Bins[0], ShouldEqual, 6)
				So(r.Histogram.Bins[analysis.DefaultBins-1], ShouldEqual, 1)
			})

			Convey("Then season facts are attached", func() {
				So(r.Season, ShouldEqual, 2099)
				So(r.Alliance, ShouldEqual, season.AllianceBlue)
				So(r.Score.Total, ShouldEqual, 7)
				So(r.Occupancy["blue"], ShouldEqual, 5.0/4.0)
				So(r.Occupancy["red"], ShouldEqual, 3.0/4.0)
				So(r.Actions[trace.Action("spk")], ShouldEqual, 2)
			})
		})
	})

	Convey("Given a single sample grid", t, func() {
		def := testSeason().Definition()
		def.Grid.Size = 1
		s, err := season.FromDefinition(def)
		So(err, ShouldBeNil)
		tr, err := trace.FromSparse(s.Grid(), nil)
		So(err, ShouldBeNil)

		Convey("Then the report is still JSON encodable", func() {
			r := analysis.Analyze(tr, s, 4)
			So(math.IsNaN(r.AverageVelocity), ShouldBeFalse)
			_, err := json.Marshal(r)
			So(err, ShouldBeNil)
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given four match reports", t, func() {
		var reports []analysis.Report
		for i, total := range []int{10, 40, 20, 30} {
			reports = append(reports, analysis.Report{
				AverageVelocity:   float64(i + 1),
				Score:             season.Score{Total: total},
				SecondsNotMoving:  2,
				DistanceTravelled: 100,
			})
		}

		Convey("When they are summarized", func() {
			sum := analysis.Summarize("254", reports)

			Convey("Then score statistics are computed", func() {
				So(sum.Team, ShouldEqual, "254")
				So(sum.Matches, ShouldEqual, 4)
				So(sum.TotalScore.Mean, ShouldEqual, 25)
				So(sum.TotalScore.Median, ShouldEqual, 20)
				So(sum.TotalScore.StdDev, ShouldAlmostEqual, math.Sqrt(500.0/3.0), 1e-9)
			})

			Convey("Then velocity and idle means are computed", func() {
				So(sum.AverageVelocity.Mean, ShouldEqual, 2.5)
				So(sum.MeanSecondsNotMoving, ShouldEqual, 2)
				So(sum.MeanDistance, ShouldEqual, 100)
			})
		})
	})

	Convey("Given a single report", t, func() {
		sum := analysis.Summarize("1", []analysis.Report{{Score: season.Score{Total: 9}}})
		So(sum.TotalScore, ShouldResemble, analysis.Stats{Mean: 9, Median: 9})
	})

	Convey("Given no reports", t, func() {
		So(analysis.Summarize("1", nil), ShouldResemble, analysis.TeamSummary{Team: "1"})
	})
}

package geometry

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPolygonContains(t *testing.T) {
	Convey("Given a unit square", t, func() {
		square := Rect(0, 0, 1, 1)

		Convey("Then interior points are inside", func() {
			So(square.Contains(Point{0.5, 0.5}), ShouldBeTrue)
			So(square.Contains(Point{0.01, 0.99}), ShouldBeTrue)
		})

		Convey("Then edges and vertices count as inside", func() {
			So(square.Contains(Point{0, 0.5}), ShouldBeTrue)
			So(square.Contains(Point{1, 1}), ShouldBeTrue)
			So(square.Contains(Point{0.5, 0}), ShouldBeTrue)
		})

		Convey("Then exterior points are outside", func() {
			So(square.Contains(Point{1.01, 0.5}), ShouldBeFalse)
			So(square.Contains(Point{-0.1, -0.1}), ShouldBeFalse)
		})
	})

	Convey("Given a concave L shape", t, func() {
		ell := Polygon{{0, 0}, {1, 0}, {1, 0.4}, {0.4, 0.4}, {0.4, 1}, {0, 1}}

		Convey("Then the notch is outside", func() {
			So(ell.Contains(Point{0.7, 0.7}), ShouldBeFalse)
		})

		Convey("Then both arms are inside", func() {
			So(ell.Contains(Point{0.8, 0.2}), ShouldBeTrue)
			So(ell.Contains(Point{0.2, 0.8}), ShouldBeTrue)
		})

		Convey("Then the inner corner is on the boundary", func() {
			So(ell.Contains(Point{0.4, 0.4}), ShouldBeTrue)
		})
	})

	Convey("Given a triangle", t, func() {
		tri := Polygon{{0, 0}, {1, 0}, {0.5, 1}}

		Convey("Then a point on the slanted edge is inside", func() {
			So(tri.Contains(Point{0.25, 0.5}), ShouldBeTrue)
		})

		Convey("Then a point beside the apex is outside", func() {
			So(tri.Contains(Point{0.9, 0.9}), ShouldBeFalse)
		})
	})

	Convey("Given degenerate polygons", t, func() {
		So(Polygon(nil).Contains(Point{}), ShouldBeFalse)
		So(Polygon{{0, 0}, {1, 1}}.Contains(Point{0.5, 0.5}), ShouldBeFalse)
	})
}

func TestPolygonBounds(t *testing.T) {
	Convey("Given an irregular polygon", t, func() {
		pg := Polygon{{0.2, 0.3}, {0.9, 0.1}, {0.6, 0.8}}

		Convey("Then the bounds span every vertex", func() {
			So(pg.Bounds(), ShouldResemble, Bounds{MinX: 0.2, MinY: 0.1, MaxX: 0.9, MaxY: 0.8})
		})
	})

	Convey("Given an empty polygon", t, func() {
		So(Polygon{}.Bounds(), ShouldResemble, Bounds{})
	})
}

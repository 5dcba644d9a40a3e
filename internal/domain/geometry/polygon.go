// Package geometry provides point-in-polygon tests over normalized field
// coordinates.
package geometry

import "math"

// boundaryEpsilon absorbs float error when a point sits on an edge.
const boundaryEpsilon = 1e-12

// Point is a position in normalized field coordinates.
type Point struct {
	X float64 `koanf:"x" yaml:"x" json:"x"`
	Y float64 `koanf:"y" yaml:"y" json:"y"`
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Polygon is a closed ring of vertices. The closing edge from the last
// vertex back to the first is implicit.
type Polygon []Point

// Rect returns the axis-aligned rectangle spanning the two corners.
func Rect(minX, minY, maxX, maxY float64) Polygon {
	return Polygon{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}}
}

// Valid reports whether the polygon has at least three vertices.
func (pg Polygon) Valid() bool { return len(pg) >= 3 }

// Bounds returns the bounding box of the polygon. An empty polygon yields
// the zero box.
func (pg Polygon) Bounds() Bounds {
	if len(pg) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: pg[0].X, MinY: pg[0].Y, MaxX: pg[0].X, MaxY: pg[0].Y}
	for _, v := range pg[1:] {
		b.MinX = math.Min(b.MinX, v.X)
		b.MinY = math.Min(b.MinY, v.Y)
		b.MaxX = math.Max(b.MaxX, v.X)
		b.MaxY = math.Max(b.MaxY, v.Y)
	}
	return b
}

// Contains reports whether p is inside the polygon using even-odd ray
// casting. Points on an edge or vertex count as inside. Polygons with fewer
// than three vertices contain nothing.
func (pg Polygon) Contains(p Point) bool {
	if !pg.Valid() || !pg.Bounds().Contains(p) {
		return false
	}
	inside := false
	for i, j := 0, len(pg)-1; i < len(pg); j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if onSegment(p, a, b) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(p, a, b Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross) > boundaryEpsilon {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-boundaryEpsilon && p.X <= math.Max(a.X, b.X)+boundaryEpsilon &&
		p.Y >= math.Min(a.Y, b.Y)-boundaryEpsilon && p.Y <= math.Max(a.Y, b.Y)+boundaryEpsilon
}

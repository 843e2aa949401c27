package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an axis-aligned rectangle. The zero value is not meaningful; use
// NewRect or EmptyRect.
type Rect struct {
	Min, Max r2.Vec
}

// NewRect builds a rectangle from two corner coordinates, normalising the
// order of the bounds.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		Min: r2.Vec{X: math.Min(x0, x1), Y: math.Min(y0, y1)},
		Max: r2.Vec{X: math.Max(x0, x1), Y: math.Max(y0, y1)},
	}
}

// EmptyRect returns the identity element of Union: a rectangle containing
// nothing.
func EmptyRect() Rect {
	return Rect{
		Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty reports whether the rectangle contains no points.
func (r Rect) IsEmpty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// IsFinite reports whether all four bounds are finite numbers.
func (r Rect) IsFinite() bool {
	return !math.IsInf(r.Min.X, 0) && !math.IsInf(r.Min.Y, 0) &&
		!math.IsInf(r.Max.X, 0) && !math.IsInf(r.Max.Y, 0) &&
		!math.IsNaN(r.Min.X) && !math.IsNaN(r.Min.Y) &&
		!math.IsNaN(r.Max.X) && !math.IsNaN(r.Max.Y)
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		Min: r2.Vec{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: r2.Vec{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}

// ExtendPoint returns the smallest rectangle containing r and v.
func (r Rect) ExtendPoint(v r2.Vec) Rect {
	return r.Union(Rect{Min: v, Max: v})
}

// Expanded grows the rectangle outward by d on every side. Negative d is
// not supported; enclosures only ever grow.
func (r Rect) Expanded(d float64) Rect {
	if r.IsEmpty() {
		return r
	}
	return Rect{
		Min: r2.Vec{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: r2.Vec{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Center returns the barycenter of the rectangle.
func (r Rect) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(r.Min, r.Max))
}

// Intersects reports whether r and o share at least one point.
func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X &&
		r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	if o.IsEmpty() {
		return true
	}
	return r.Min.X <= o.Min.X && r.Min.Y <= o.Min.Y &&
		r.Max.X >= o.Max.X && r.Max.Y >= o.Max.Y
}

// ContainsPoint reports whether v lies within r (boundary included).
func (r Rect) ContainsPoint(v r2.Vec) bool {
	return r.Min.X <= v.X && v.X <= r.Max.X && r.Min.Y <= v.Y && v.Y <= r.Max.Y
}

// Distance returns the shortest distance between the two rectangles, zero
// when they overlap.
func (r Rect) Distance(o Rect) float64 {
	dx := math.Max(0, math.Max(r.Min.X-o.Max.X, o.Min.X-r.Max.X))
	dy := math.Max(0, math.Max(r.Min.Y-o.Max.Y, o.Min.Y-r.Max.Y))
	return math.Hypot(dx, dy)
}

// MaxDist returns an upper bound on the distance between any point of r
// and any point of o: the farthest pair of points of the two rectangles.
func (r Rect) MaxDist(o Rect) float64 {
	dx := math.Max(math.Abs(r.Min.X-o.Max.X), math.Abs(r.Max.X-o.Min.X))
	dy := math.Max(math.Abs(r.Min.Y-o.Max.Y), math.Abs(r.Max.Y-o.Min.Y))
	return math.Hypot(dx, dy)
}

// DistanceToPoint returns the shortest distance from v to the rectangle,
// zero when v lies inside.
func (r Rect) DistanceToPoint(v r2.Vec) float64 {
	dx := math.Max(0, math.Max(r.Min.X-v.X, v.X-r.Max.X))
	dy := math.Max(0, math.Max(r.Min.Y-v.Y, v.Y-r.Max.Y))
	return math.Hypot(dx, dy)
}

// MaxDistToPoint returns the distance from v to the farthest point of the
// rectangle.
func (r Rect) MaxDistToPoint(v r2.Vec) float64 {
	dx := math.Max(math.Abs(v.X-r.Min.X), math.Abs(v.X-r.Max.X))
	dy := math.Max(math.Abs(v.Y-r.Min.Y), math.Abs(v.Y-r.Max.Y))
	return math.Hypot(dx, dy)
}

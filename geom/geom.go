package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Geometry is a 2D shape that can report its axis-aligned bounding
// rectangle and participate in exact distance computation.
//
// The set of geometries is closed: Point, MultiPoint, LineString, Polygon
// and Collection. Exact distances are computed pairwise over their points
// and segments, so adding a shape kind means extending the decomposition,
// not subclassing.
type Geometry interface {
	// Bound returns the axis-aligned bounding rectangle of the geometry.
	// An empty geometry returns the empty rectangle.
	Bound() Rect

	decompose(dst *shape)
}

// Point is a single 2D location.
type Point struct {
	X, Y float64
}

// P is shorthand for constructing a Point.
func P(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Bound returns the degenerate rectangle covering only p.
func (p Point) Bound() Rect {
	return Rect{Min: p.vec(), Max: p.vec()}
}

func (p Point) decompose(dst *shape) {
	dst.pts = append(dst.pts, p.vec())
	dst.reprs = append(dst.reprs, p.vec())
}

// MultiPoint is a bag of isolated points.
type MultiPoint []Point

// Bound returns the bounding rectangle of all member points.
func (mp MultiPoint) Bound() Rect {
	r := EmptyRect()
	for _, p := range mp {
		r = r.ExtendPoint(p.vec())
	}
	return r
}

func (mp MultiPoint) decompose(dst *shape) {
	for _, p := range mp {
		p.decompose(dst)
	}
}

// LineString is an open polyline with at least two vertices.
type LineString []Point

// Bound returns the bounding rectangle of all vertices.
func (ls LineString) Bound() Rect {
	r := EmptyRect()
	for _, p := range ls {
		r = r.ExtendPoint(p.vec())
	}
	return r
}

func (ls LineString) decompose(dst *shape) {
	if len(ls) == 1 {
		ls[0].decompose(dst)
		return
	}
	for i := 0; i+1 < len(ls); i++ {
		dst.segs = append(dst.segs, [2]r2.Vec{ls[i].vec(), ls[i+1].vec()})
	}
	dst.reprs = append(dst.reprs, ls[0].vec())
}

// Ring is a closed sequence of vertices. The closing segment from the last
// vertex back to the first is implicit; callers need not repeat it.
type Ring []Point

func (r Ring) segments(dst [][2]r2.Vec) [][2]r2.Vec {
	n := len(r)
	if n < 2 {
		return dst
	}
	for i := 0; i < n; i++ {
		dst = append(dst, [2]r2.Vec{r[i].vec(), r[(i+1)%n].vec()})
	}
	return dst
}

// Polygon is a shell ring with optional hole rings. Rings follow the Ring
// convention of an implicit closing segment.
type Polygon struct {
	Shell Ring
	Holes []Ring
}

// Bound returns the bounding rectangle of the shell.
func (pg Polygon) Bound() Rect {
	r := EmptyRect()
	for _, p := range pg.Shell {
		r = r.ExtendPoint(p.vec())
	}
	return r
}

func (pg Polygon) decompose(dst *shape) {
	if len(pg.Shell) == 0 {
		return
	}
	dst.segs = pg.Shell.segments(dst.segs)
	for _, h := range pg.Holes {
		dst.segs = h.segments(dst.segs)
	}
	dst.polys = append(dst.polys, pg)
	dst.reprs = append(dst.reprs, pg.Shell[0].vec())
}

// Collection groups arbitrary geometries into one. Distance to a
// collection is the minimum distance to any member.
type Collection []Geometry

// Bound returns the union of the member bounds.
func (c Collection) Bound() Rect {
	r := EmptyRect()
	for _, g := range c {
		r = r.Union(g.Bound())
	}
	return r
}

func (c Collection) decompose(dst *shape) {
	for _, g := range c {
		g.decompose(dst)
	}
}

// shape is the flattened form a geometry is reduced to for distance
// computation: isolated points, boundary segments, polygons for interior
// tests, and one representative point per connected feature.
type shape struct {
	pts   []r2.Vec
	segs  [][2]r2.Vec
	polys []Polygon
	reprs []r2.Vec
}

func (s *shape) empty() bool {
	return len(s.pts) == 0 && len(s.segs) == 0
}

// Vertices returns every vertex of g in one flat slice. It feeds
// enclosure construction (e.g. smallest enclosing circles).
func Vertices(g Geometry) []r2.Vec {
	if g == nil {
		return nil
	}
	var s shape
	g.decompose(&s)
	out := make([]r2.Vec, 0, len(s.pts)+2*len(s.segs))
	out = append(out, s.pts...)
	for _, seg := range s.segs {
		out = append(out, seg[0], seg[1])
	}
	return out
}

// Validate reports whether g is usable as a query or index member: non-nil,
// non-empty and with a finite bounding rectangle.
func Validate(g Geometry) error {
	if g == nil {
		return ErrEmptyGeometry
	}
	var s shape
	g.decompose(&s)
	if s.empty() {
		return fmt.Errorf("%w: %T", ErrEmptyGeometry, g)
	}
	if !g.Bound().IsFinite() {
		return fmt.Errorf("%w: %T has a non-finite bound", ErrNonFinite, g)
	}
	return nil
}

package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrEmptyGeometry is returned when a geometry has no points at all.
	ErrEmptyGeometry = errors.New("geom: empty geometry")

	// ErrNonFinite is returned when a geometry carries NaN or infinite
	// coordinates.
	ErrNonFinite = errors.New("geom: non-finite coordinate")
)

// Distance returns the exact shortest Euclidean distance between a and b.
// It is zero when the geometries touch, cross, or one lies inside the
// other, and symmetric in its arguments.
func Distance(a, b Geometry) (float64, error) {
	if a == nil || b == nil {
		return 0, ErrEmptyGeometry
	}

	var sa, sb shape
	a.decompose(&sa)
	b.decompose(&sb)
	if sa.empty() {
		return 0, fmt.Errorf("%w: %T", ErrEmptyGeometry, a)
	}
	if sb.empty() {
		return 0, fmt.Errorf("%w: %T", ErrEmptyGeometry, b)
	}

	// Interior containment first: a feature of one geometry lying inside a
	// polygon of the other has distance zero even when no boundaries touch.
	if containsAny(sa.polys, sb.reprs) || containsAny(sb.polys, sa.reprs) {
		return 0, nil
	}

	d := math.Inf(1)
	for _, s := range sa.segs {
		for _, t := range sb.segs {
			d = math.Min(d, segSegDist(s[0], s[1], t[0], t[1]))
			if d == 0 {
				return 0, nil
			}
		}
	}
	for _, p := range sa.pts {
		for _, t := range sb.segs {
			d = math.Min(d, ptSegDist(p, t[0], t[1]))
		}
	}
	for _, p := range sb.pts {
		for _, s := range sa.segs {
			d = math.Min(d, ptSegDist(p, s[0], s[1]))
		}
	}
	for _, p := range sa.pts {
		for _, q := range sb.pts {
			d = math.Min(d, r2.Norm(r2.Sub(p, q)))
		}
	}
	return d, nil
}

func containsAny(polys []Polygon, pts []r2.Vec) bool {
	for _, pg := range polys {
		for _, p := range pts {
			if pointInPolygon(p, pg) {
				return true
			}
		}
	}
	return false
}

// pointInPolygon implements the even-odd rule: inside the shell and not
// inside any hole.
func pointInPolygon(p r2.Vec, pg Polygon) bool {
	if !pointInRing(p, pg.Shell) {
		return false
	}
	for _, h := range pg.Holes {
		if pointInRing(p, h) {
			return false
		}
	}
	return true
}

func pointInRing(p r2.Vec, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i := 0; i < n; i++ {
		a := ring[i].vec()
		b := ring[(i+1)%n].vec()
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// ptSegDist returns the distance from p to the segment [a, b].
func ptSegDist(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	ap := r2.Sub(p, a)
	denom := r2.Norm2(ab)
	if denom == 0 {
		return r2.Norm(ap)
	}
	t := r2.Dot(ap, ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}

// segSegDist returns the distance between segments [a1,a2] and [b1,b2],
// zero when they intersect.
func segSegDist(a1, a2, b1, b2 r2.Vec) float64 {
	if segsIntersect(a1, a2, b1, b2) {
		return 0
	}
	d := ptSegDist(a1, b1, b2)
	d = math.Min(d, ptSegDist(a2, b1, b2))
	d = math.Min(d, ptSegDist(b1, a1, a2))
	return math.Min(d, ptSegDist(b2, a1, a2))
}

func segsIntersect(a1, a2, b1, b2 r2.Vec) bool {
	d1 := orient(b1, b2, a1)
	d2 := orient(b1, b2, a2)
	d3 := orient(a1, a2, b1)
	d4 := orient(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(b1, b2, a1):
		return true
	case d2 == 0 && onSegment(b1, b2, a2):
		return true
	case d3 == 0 && onSegment(a1, a2, b1):
		return true
	case d4 == 0 && onSegment(a1, a2, b2):
		return true
	}
	return false
}

func orient(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

// onSegment assumes c is collinear with [a, b] and reports whether it lies
// between them.
func onSegment(a, b, c r2.Vec) bool {
	return math.Min(a.X, b.X) <= c.X && c.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= c.Y && c.Y <= math.Max(a.Y, b.Y)
}

package envelope

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/datastorm-open/SpatialIndex/geom"
)

// Buffer is the outward growth applied when an envelope is constructed or
// merged. Envelopes may only ever grow, so accumulated floating-point error
// cannot make a bound unsound.
const Buffer = 1e-9

// Kind selects the envelope variant used by an index.
type Kind int

const (
	// KindRect uses axis-aligned minimum bounding rectangles.
	KindRect Kind = iota

	// KindSphere uses smallest enclosing circles.
	KindSphere
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindRect:
		return "Rect"
	case KindSphere:
		return "Sphere"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Envelope is a conservative geometric summary of one or more shapes.
//
// MinDist and MaxDist bound the distance between any shape summarised by
// the envelope and any geometry whose bounding rectangle is the argument.
// Both envelopes passed to Merge must share a kind; an index always uses a
// single kind throughout.
type Envelope interface {
	// Kind returns the variant of the envelope.
	Kind() Kind

	// Bound returns the axis-aligned rectangle covering the envelope.
	Bound() geom.Rect

	// Center returns the barycenter of the envelope.
	Center() r2.Vec

	// Merge returns an envelope of the same kind containing both inputs.
	Merge(other Envelope) Envelope

	// MinDist returns a lower bound on the distance from any enclosed
	// shape to any geometry bounded by the given rectangle.
	MinDist(bound geom.Rect) float64

	// MaxDist returns an upper bound on that same distance.
	MaxDist(bound geom.Rect) float64
}

// Enclose builds an envelope of the requested kind around g. It rejects
// nil, empty and non-finite geometries, since an index cannot host them.
func Enclose(kind Kind, g geom.Geometry) (Envelope, error) {
	if err := geom.Validate(g); err != nil {
		return nil, err
	}
	switch kind {
	case KindRect:
		return Rect{R: g.Bound().Expanded(Buffer)}, nil
	case KindSphere:
		c, r := smallestCircle(geom.Vertices(g))
		return Sphere{C: c, R: r + Buffer}, nil
	default:
		return nil, fmt.Errorf("envelope: unknown kind %v", kind)
	}
}

// Rect is the axis-aligned minimum bounding rectangle envelope.
type Rect struct {
	R geom.Rect
}

// Kind implements Envelope.
func (Rect) Kind() Kind { return KindRect }

// Bound implements Envelope.
func (e Rect) Bound() geom.Rect { return e.R }

// Center implements Envelope.
func (e Rect) Center() r2.Vec { return e.R.Center() }

// Merge implements Envelope.
func (e Rect) Merge(other Envelope) Envelope {
	o := other.(Rect)
	return Rect{R: e.R.Union(o.R).Expanded(Buffer)}
}

// MinDist implements Envelope: rectangle-to-rectangle distance, zero when
// the rectangles overlap.
func (e Rect) MinDist(bound geom.Rect) float64 {
	return e.R.Distance(bound)
}

// MaxDist implements Envelope.
func (e Rect) MaxDist(bound geom.Rect) float64 {
	return e.R.MaxDist(bound)
}

// Sphere is the smallest-enclosing-circle envelope.
type Sphere struct {
	C r2.Vec
	R float64
}

// Kind implements Envelope.
func (Sphere) Kind() Kind { return KindSphere }

// Bound implements Envelope.
func (e Sphere) Bound() geom.Rect {
	return geom.Rect{
		Min: r2.Vec{X: e.C.X - e.R, Y: e.C.Y - e.R},
		Max: r2.Vec{X: e.C.X + e.R, Y: e.C.Y + e.R},
	}
}

// Center implements Envelope.
func (e Sphere) Center() r2.Vec { return e.C }

// Merge implements Envelope: the smallest circle containing both circles.
func (e Sphere) Merge(other Envelope) Envelope {
	o := other.(Sphere)
	d := r2.Norm(r2.Sub(o.C, e.C))
	if d+o.R <= e.R {
		return e
	}
	if d+e.R <= o.R {
		return o
	}
	radius := (d+e.R+o.R)/2 + Buffer
	t := (radius - e.R) / d
	return Sphere{C: r2.Add(e.C, r2.Scale(t, r2.Sub(o.C, e.C))), R: radius}
}

// MinDist implements Envelope: centre-to-rectangle distance minus the
// radius, clamped at zero.
func (e Sphere) MinDist(bound geom.Rect) float64 {
	return math.Max(0, bound.DistanceToPoint(e.C)-e.R)
}

// MaxDist implements Envelope.
func (e Sphere) MaxDist(bound geom.Rect) float64 {
	return bound.MaxDistToPoint(e.C) + e.R
}

// MergeAll folds a non-empty list of envelopes into one.
func MergeAll(envs []Envelope) Envelope {
	if len(envs) == 0 {
		return nil
	}
	acc := envs[0]
	for _, e := range envs[1:] {
		acc = acc.Merge(e)
	}
	return acc
}

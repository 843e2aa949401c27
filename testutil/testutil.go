// Package testutil provides deterministic helpers for tests: a seeded
// thread-safe RNG, random geometry generators, a brute-force reference for
// nearest-neighbour results, and an instrumented provider that counts
// shape accesses.
package testutil

import (
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Float64 returns a pseudo-random number in [0, 1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Intn returns a non-negative pseudo-random number in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UniformPoints generates n points with coordinates in [minV, maxV).
func (r *RNG) UniformPoints(n int, minV, maxV float64) []geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxV - minV
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.P(minV+r.rand.Float64()*span, minV+r.rand.Float64()*span)
	}
	return pts
}

// UniformBoxes generates n axis-aligned square polygons with lower-left
// corners in [minV, maxV) and sides up to maxSide.
func (r *RNG) UniformBoxes(n int, minV, maxV, maxSide float64) []geom.Polygon {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxV - minV
	boxes := make([]geom.Polygon, n)
	for i := range boxes {
		x := minV + r.rand.Float64()*span
		y := minV + r.rand.Float64()*span
		s := r.rand.Float64() * maxSide
		boxes[i] = geom.Polygon{Shell: geom.Ring{
			geom.P(x, y), geom.P(x+s, y), geom.P(x+s, y+s), geom.P(x, y+s),
		}}
	}
	return boxes
}

// UniformSegments generates n two-point polylines within [minV, maxV).
func (r *RNG) UniformSegments(n int, minV, maxV float64) []geom.LineString {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxV - minV
	segs := make([]geom.LineString, n)
	for i := range segs {
		segs[i] = geom.LineString{
			geom.P(minV+r.rand.Float64()*span, minV+r.rand.Float64()*span),
			geom.P(minV+r.rand.Float64()*span, minV+r.rand.Float64()*span),
		}
	}
	return segs
}

// PointProvider wraps points in a Slice provider.
func PointProvider(pts []geom.Point) provider.Slice {
	shapes := make(provider.Slice, len(pts))
	for i, p := range pts {
		shapes[i] = p
	}
	return shapes
}

// BruteForceKNN computes the exact k nearest neighbours of q by scanning
// the whole provider: the reference every index result must match.
// Results are ordered by ascending distance, ties by ascending id.
func BruteForceKNN(p provider.Provider, q geom.Geometry, k int) ([]model.Neighbor, error) {
	var all []model.Neighbor
	var err error
	for id, g := range p.All() {
		var d float64
		d, err = geom.Distance(g, q)
		if err != nil {
			break
		}
		all = append(all, model.Neighbor{ID: id, Distance: d})
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })
	if k < len(all) {
		all = all[:k]
	}
	return all, nil
}

// CountingProvider wraps a provider and counts Get calls, so tests can
// assert how many exact distance evaluations a query needed.
type CountingProvider struct {
	provider.Provider
	gets atomic.Int64
}

// NewCountingProvider wraps p.
func NewCountingProvider(p provider.Provider) *CountingProvider {
	return &CountingProvider{Provider: p}
}

// Get implements provider.Provider.
func (c *CountingProvider) Get(id model.ShapeID) (geom.Geometry, bool) {
	c.gets.Add(1)
	return c.Provider.Get(id)
}

// Gets returns the number of Get calls so far.
func (c *CountingProvider) Gets() int64 { return c.gets.Load() }

// Reset zeroes the counter.
func (c *CountingProvider) Reset() { c.gets.Store(0) }

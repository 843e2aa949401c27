package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestRectBasics(t *testing.T) {
	r := NewRect(3, 4, 1, 2) // corners in any order
	assert.Equal(t, 1.0, r.Min.X)
	assert.Equal(t, 2.0, r.Min.Y)
	assert.Equal(t, 3.0, r.Max.X)
	assert.Equal(t, 4.0, r.Max.Y)
	assert.Equal(t, r2.Vec{X: 2, Y: 3}, r.Center())
	assert.True(t, r.IsFinite())
	assert.False(t, r.IsEmpty())
}

func TestRectEmptyUnion(t *testing.T) {
	e := EmptyRect()
	assert.True(t, e.IsEmpty())

	r := NewRect(0, 0, 1, 1)
	assert.Equal(t, r, e.Union(r))
	assert.Equal(t, r, r.Union(e))

	u := r.Union(NewRect(2, 2, 3, 3))
	assert.Equal(t, NewRect(0, 0, 3, 3), u)
}

func TestRectDistance(t *testing.T) {
	a := NewRect(0, 0, 1, 1)

	t.Run("Overlap", func(t *testing.T) {
		assert.Equal(t, 0.0, a.Distance(NewRect(0.5, 0.5, 2, 2)))
	})

	t.Run("Touching", func(t *testing.T) {
		assert.Equal(t, 0.0, a.Distance(NewRect(1, 0, 2, 1)))
	})

	t.Run("HorizontalGap", func(t *testing.T) {
		assert.InDelta(t, 1.0, a.Distance(NewRect(2, 0, 3, 1)), 1e-12)
	})

	t.Run("DiagonalGap", func(t *testing.T) {
		assert.InDelta(t, math.Sqrt(2), a.Distance(NewRect(2, 2, 3, 3)), 1e-12)
	})

	t.Run("MaxDistDominates", func(t *testing.T) {
		b := NewRect(2, 2, 3, 3)
		assert.GreaterOrEqual(t, a.MaxDist(b), a.Distance(b))
		// Farthest corners are (0,0) and (3,3).
		assert.InDelta(t, math.Sqrt(18), a.MaxDist(b), 1e-12)
	})
}

func TestRectPointQueries(t *testing.T) {
	r := NewRect(0, 0, 2, 2)
	assert.True(t, r.ContainsPoint(r2.Vec{X: 1, Y: 1}))
	assert.True(t, r.ContainsPoint(r2.Vec{X: 0, Y: 2}))
	assert.False(t, r.ContainsPoint(r2.Vec{X: 3, Y: 1}))

	assert.Equal(t, 0.0, r.DistanceToPoint(r2.Vec{X: 1, Y: 1}))
	assert.InDelta(t, 1.0, r.DistanceToPoint(r2.Vec{X: 3, Y: 1}), 1e-12)
	assert.InDelta(t, math.Sqrt(8), r.MaxDistToPoint(r2.Vec{X: 0, Y: 0}), 1e-12)
}

func TestRectContains(t *testing.T) {
	outer := NewRect(0, 0, 10, 10)
	assert.True(t, outer.Contains(NewRect(1, 1, 9, 9)))
	assert.True(t, outer.Contains(outer))
	assert.True(t, outer.Contains(EmptyRect()))
	assert.False(t, outer.Contains(NewRect(5, 5, 11, 9)))
}

package provider

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/model"
)

func TestSlice(t *testing.T) {
	s := Slice{geom.P(0, 0), geom.P(1, 1), geom.P(2, 2)}

	assert.Equal(t, 3, s.Len())

	g, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, geom.P(1, 1), g)

	_, ok = s.Get(3)
	assert.False(t, ok)

	var ids []model.ShapeID
	for id, g := range s.All() {
		ids = append(ids, id)
		assert.NotNil(t, g)
	}
	assert.Equal(t, []model.ShapeID{0, 1, 2}, ids)
}

func TestMapIterationOrder(t *testing.T) {
	m := NewMap(map[model.ShapeID]geom.Geometry{
		42: geom.P(4, 2),
		7:  geom.P(0, 7),
		19: geom.P(1, 9),
	})

	assert.Equal(t, 3, m.Len())

	var ids []model.ShapeID
	for id := range m.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, []model.ShapeID{7, 19, 42}, ids)

	g, ok := m.Get(42)
	require.True(t, ok)
	assert.Equal(t, geom.P(4, 2), g)

	_, ok = m.Get(1)
	assert.False(t, ok)
}

func TestSubset(t *testing.T) {
	base := Slice{geom.P(0, 0), geom.P(1, 1), geom.P(2, 2), geom.P(3, 3)}

	bm := roaring64.New()
	bm.Add(1)
	bm.Add(3)
	bm.Add(99) // absent from base, ignored

	sub := NewSubset(base, bm)
	assert.Equal(t, 2, sub.Len())

	_, ok := sub.Get(0)
	assert.False(t, ok)

	g, ok := sub.Get(3)
	require.True(t, ok)
	assert.Equal(t, geom.P(3, 3), g)

	var ids []model.ShapeID
	for id := range sub.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, []model.ShapeID{1, 3}, ids)
}

func TestAllEarlyStop(t *testing.T) {
	s := Slice{geom.P(0, 0), geom.P(1, 1), geom.P(2, 2)}
	count := 0
	for range s.All() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

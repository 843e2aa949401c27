package provider

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/model"
)

// Subset restricts a provider to the ids present in a bitmap. It is the
// building block for filtered queries and joins: build the bitmap once,
// query the restricted view many times.
//
// Ids in the bitmap that are absent from the base provider are ignored.
type Subset struct {
	base Provider
	ids  *roaring64.Bitmap
	n    int
}

// NewSubset builds a restricted view of base. The bitmap must not be
// mutated afterwards.
func NewSubset(base Provider, ids *roaring64.Bitmap) *Subset {
	n := 0
	it := ids.Iterator()
	for it.HasNext() {
		if _, ok := base.Get(model.ShapeID(it.Next())); ok {
			n++
		}
	}
	return &Subset{base: base, ids: ids, n: n}
}

// Len implements Provider.
func (s *Subset) Len() int { return s.n }

// Get implements Provider.
func (s *Subset) Get(id model.ShapeID) (geom.Geometry, bool) {
	if !s.ids.Contains(uint64(id)) {
		return nil, false
	}
	return s.base.Get(id)
}

// All implements Provider.
func (s *Subset) All() iter.Seq2[model.ShapeID, geom.Geometry] {
	return func(yield func(model.ShapeID, geom.Geometry) bool) {
		it := s.ids.Iterator()
		for it.HasNext() {
			id := model.ShapeID(it.Next())
			g, ok := s.base.Get(id)
			if !ok {
				continue
			}
			if !yield(id, g) {
				return
			}
		}
	}
}

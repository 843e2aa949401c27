package bvh

import (
	"fmt"

	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
)

// CheckInvariants verifies the structural guarantees of a built tree:
// every child envelope (and every owned shape envelope) lies within its
// parent's envelope, and the leaves partition the provider's id set.
// It is intended for tests and costs O(n).
func (t *Tree) CheckInvariants(p provider.Provider) error {
	if len(t.Items) == 0 {
		if p.Len() != 0 {
			return fmt.Errorf("bvh: empty tree over provider with %d shapes", p.Len())
		}
		return nil
	}

	seen := make(map[model.ShapeID]int, len(t.Items))
	for i, n := range t.Nodes {
		outer := n.Env.Bound()
		if n.IsLeaf() {
			if n.LeafEnd == n.LeafStart {
				return fmt.Errorf("bvh: node %d is an empty leaf", i)
			}
			for j := n.LeafStart; j < n.LeafEnd; j++ {
				seen[t.Items[j]]++
				if !outer.Contains(t.ItemEnvs[j].Bound()) {
					return fmt.Errorf("bvh: shape %d escapes leaf %d", t.Items[j], i)
				}
			}
			continue
		}
		for c := n.ChildStart; c < n.ChildEnd; c++ {
			if !outer.Contains(t.Nodes[c].Env.Bound()) {
				return fmt.Errorf("bvh: child %d escapes node %d", c, i)
			}
		}
	}

	if len(seen) != p.Len() || len(t.Items) != p.Len() {
		return fmt.Errorf("bvh: leaves hold %d ids (%d distinct), provider has %d", len(t.Items), len(seen), p.Len())
	}
	for id, g := range p.All() {
		if seen[id] != 1 {
			return fmt.Errorf("bvh: id %d appears %d times in leaves", id, seen[id])
		}
		_ = g
	}
	return nil
}

package bvh

import (
	"context"
	"iter"

	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/index"
	"github.com/datastorm-open/SpatialIndex/internal/searcher"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
)

// ApproxNearest yields every indexed shape paired with a lower bound on
// its distance to a geometry bounded by bound, in non-decreasing
// lower-bound order.
//
// The traversal is best-first branch-and-bound: a min-heap seeded with the
// root is drained entry by entry; nodes expand into their children or
// owned shapes, shapes are yielded. All traversal state lives in the
// returned iterator and is released when the caller stops pulling.
func (t *Tree) ApproxNearest(bound geom.Rect) iter.Seq[model.Candidate] {
	return func(yield func(model.Candidate) bool) {
		if len(t.Nodes) == 0 {
			return
		}
		q := searcher.NewEntryQueue()
		q.PushNode(t.Nodes[t.Root].Env.MinDist(bound), t.Root)
		for {
			e, ok := q.Pop()
			if !ok {
				return
			}
			if e.IsShape {
				if !yield(model.Candidate{ID: e.ID, LowerBound: e.LowerBound}) {
					return
				}
				continue
			}
			n := &t.Nodes[e.Node]
			if n.IsLeaf() {
				for i := n.LeafStart; i < n.LeafEnd; i++ {
					q.PushShape(t.ItemEnvs[i].MinDist(bound), t.Items[i])
				}
			} else {
				for c := n.ChildStart; c < n.ChildEnd; c++ {
					q.PushNode(t.Nodes[c].Env.MinDist(bound), c)
				}
			}
		}
	}
}

// ApproxNearestQuery validates q and streams candidates for it. A
// validation failure is yielded once and terminates the stream.
func (t *Tree) ApproxNearestQuery(q geom.Geometry) iter.Seq2[model.Candidate, error] {
	return func(yield func(model.Candidate, error) bool) {
		if err := geom.Validate(q); err != nil {
			yield(model.Candidate{}, err)
			return
		}
		for c := range t.ApproxNearest(q.Bound()) {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// TrueKNN answers an exact k-nearest-neighbour query against the shapes
// of p using the tree for candidate ordering.
func (t *Tree) TrueKNN(ctx context.Context, p provider.Provider, q geom.Geometry, k int, o index.QueryOptions) ([]model.Neighbor, error) {
	if k < 0 {
		return nil, index.ErrInvalidK
	}
	if k == 0 || len(t.Items) == 0 {
		return nil, nil
	}
	if err := geom.Validate(q); err != nil {
		return nil, err
	}

	return searcher.Refine(ctx, t.ApproxNearest(q.Bound()), k, searcher.Options{
		MaxCandidates: o.MaxCandidates,
		Filter:        o.Filter,
		Distance: func(id model.ShapeID) (float64, error) {
			g, ok := p.Get(id)
			if !ok {
				return 0, &index.ErrUnknownShape{ID: id}
			}
			return geom.Distance(g, q)
		},
	})
}

// TrueKNNStream runs TrueKNN and yields the ranked result one entry at a
// time. The full best-k buffer is resolved before the first yield; a
// failure is yielded once and leaves the stream terminal.
func (t *Tree) TrueKNNStream(ctx context.Context, p provider.Provider, q geom.Geometry, k int, o index.QueryOptions) iter.Seq2[model.Neighbor, error] {
	return func(yield func(model.Neighbor, error) bool) {
		res, err := t.TrueKNN(ctx, p, q, k, o)
		if err != nil {
			yield(model.Neighbor{}, err)
			return
		}
		for _, n := range res {
			if cerr := ctx.Err(); cerr != nil {
				yield(model.Neighbor{}, cerr)
				return
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

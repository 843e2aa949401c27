// Package strtree builds a spatial index by Sort-Tile-Recurse bulk
// packing: entries are sorted by center on one axis, tiled into vertical
// slabs, and sorted on the other axis within each slab. Packing is fully
// deterministic and needs no random source, which makes it a useful
// alternative to the divisive k-means builder behind the same query
// surface.
package strtree

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/datastorm-open/SpatialIndex/envelope"
	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/index"
	"github.com/datastorm-open/SpatialIndex/internal/bvh"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
)

var _ index.Index = (*Index)(nil)

// Options contains the build parameters of the STR index.
type Options struct {
	// NodeCapacity is the maximum number of entries per node, leaves
	// included. Must be >= 2.
	NodeCapacity int

	// Enclosure selects the bounding volume variant.
	Enclosure envelope.Kind
}

// DefaultOptions contains the default build parameters.
var DefaultOptions = Options{
	NodeCapacity: 16,
	Enclosure:    envelope.KindRect,
}

func (o Options) validate() error {
	if o.NodeCapacity < 2 {
		return &index.ErrInvalidOptions{Field: "NodeCapacity", Reason: fmt.Sprintf("must be >= 2, got %d", o.NodeCapacity)}
	}
	return nil
}

// Index is an immutable STR-packed BVH over a shape provider.
type Index struct {
	tree *bvh.Tree
	p    provider.Provider
	opts Options
}

// New bulk-packs an index over p. An empty provider yields an empty index.
func New(p provider.Provider, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	// Leaf level: one build node per packed run of shapes.
	level, err := packLeaves(p, opts)
	if err != nil {
		return nil, err
	}

	// Upper levels: pack nodes the same way until a single root remains.
	for len(level) > 1 {
		level = packNodes(level, opts.NodeCapacity)
	}

	var root *bvh.BuildNode
	if len(level) == 1 {
		root = level[0]
	}
	return &Index{tree: bvh.Flatten(root, opts.Enclosure), p: p, opts: opts}, nil
}

func packLeaves(p provider.Provider, opts Options) ([]*bvh.BuildNode, error) {
	type entry struct {
		id  model.ShapeID
		env envelope.Envelope
	}
	entries := make([]entry, 0, p.Len())
	var err error
	for id, g := range p.All() {
		var env envelope.Envelope
		env, err = envelope.Enclose(opts.Enclosure, g)
		if err != nil {
			if errors.Is(err, geom.ErrNonFinite) {
				err = fmt.Errorf("%w: %w", &index.ErrNonFinite{ID: id}, err)
			} else {
				err = fmt.Errorf("strtree: shape %d: %w", id, err)
			}
			break
		}
		entries = append(entries, entry{id: id, env: env})
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	centers := make([]r2.Vec, len(entries))
	for i, e := range entries {
		centers[i] = e.env.Center()
	}
	runs := sortTile(centers, opts.NodeCapacity)

	leaves := make([]*bvh.BuildNode, len(runs))
	for i, run := range runs {
		leaf := &bvh.BuildNode{
			Items:    make([]model.ShapeID, len(run)),
			ItemEnvs: make([]envelope.Envelope, len(run)),
		}
		for j, e := range run {
			leaf.Items[j] = entries[e].id
			leaf.ItemEnvs[j] = entries[e].env
		}
		leaf.Env = envelope.MergeAll(leaf.ItemEnvs)
		leaves[i] = leaf
	}
	return leaves, nil
}

func packNodes(nodes []*bvh.BuildNode, capacity int) []*bvh.BuildNode {
	centers := make([]r2.Vec, len(nodes))
	for i, n := range nodes {
		centers[i] = n.Env.Center()
	}
	runs := sortTile(centers, capacity)

	parents := make([]*bvh.BuildNode, len(runs))
	for i, run := range runs {
		parent := &bvh.BuildNode{Children: make([]*bvh.BuildNode, len(run))}
		envs := make([]envelope.Envelope, len(run))
		for j, c := range run {
			parent.Children[j] = nodes[c]
			envs[j] = nodes[c].Env
		}
		parent.Env = envelope.MergeAll(envs)
		parents[i] = parent
	}
	return parents
}

// sortTile groups positions into runs of at most capacity entries: sort by
// center x, slice into ceil(sqrt(n/capacity)) vertical slabs, sort each
// slab by center y, and cut runs off each slab. Ties fall back to the
// position so packing is deterministic.
func sortTile(centers []r2.Vec, capacity int) [][]int {
	n := len(centers)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := centers[order[i]], centers[order[j]]
		if a.X != b.X {
			return a.X < b.X
		}
		return order[i] < order[j]
	})

	pages := (n + capacity - 1) / capacity
	slabs := int(math.Ceil(math.Sqrt(float64(pages))))
	slabSize := (n + slabs - 1) / slabs

	var runs [][]int
	for start := 0; start < n; start += slabSize {
		end := min(start+slabSize, n)
		slab := order[start:end]
		sort.Slice(slab, func(i, j int) bool {
			a, b := centers[slab[i]], centers[slab[j]]
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			return slab[i] < slab[j]
		})
		for rs := 0; rs < len(slab); rs += capacity {
			re := min(rs+capacity, len(slab))
			run := make([]int, re-rs)
			copy(run, slab[rs:re])
			runs = append(runs, run)
		}
	}
	return runs
}

// TrueKNN implements index.Index.
func (ix *Index) TrueKNN(ctx context.Context, q geom.Geometry, k int, opts ...index.QueryOption) ([]model.Neighbor, error) {
	return ix.tree.TrueKNN(ctx, ix.p, q, k, index.ApplyQueryOptions(opts))
}

// TrueKNNStream implements index.Index.
func (ix *Index) TrueKNNStream(ctx context.Context, q geom.Geometry, k int, opts ...index.QueryOption) iter.Seq2[model.Neighbor, error] {
	return ix.tree.TrueKNNStream(ctx, ix.p, q, k, index.ApplyQueryOptions(opts))
}

// ApproxNearest implements index.Index.
func (ix *Index) ApproxNearest(q geom.Geometry) iter.Seq2[model.Candidate, error] {
	return ix.tree.ApproxNearestQuery(q)
}

// Provider implements index.Index.
func (ix *Index) Provider() provider.Provider { return ix.p }

// Len implements index.Index.
func (ix *Index) Len() int { return ix.tree.Len() }

// Stats implements index.Index.
func (ix *Index) Stats() index.Stats { return ix.tree.Stats() }

// Tree exposes the underlying hierarchy to sibling packages for invariant
// checking in tests.
func (ix *Index) Tree() *bvh.Tree { return ix.tree }

// Package dkmeans builds the canonical spatial index: a bounding-volume
// hierarchy constructed top-down by divisive k-means clustering of
// envelope centers.
package dkmeans

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/datastorm-open/SpatialIndex/envelope"
	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/index"
	"github.com/datastorm-open/SpatialIndex/internal/bvh"
	"github.com/datastorm-open/SpatialIndex/internal/kmeans"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
)

// Compile-time check that the index satisfies the shared query surface.
var _ index.Index = (*Index)(nil)

// Options contains the build parameters of the divisive k-means index.
type Options struct {
	// LeafCapacity is the maximum number of shapes per leaf. Must be >= 1.
	LeafCapacity int

	// MaxFanout is the number of clusters requested at each split and the
	// maximum number of children per internal node. Must be >= 2.
	MaxFanout int

	// MinFanout is the minimum number of children per internal node (the
	// root excepted). Must be >= 1 and <= MaxFanout.
	MinFanout int

	// KMeansMaxIters bounds the Lloyd reassignment rounds per split.
	// Must be >= 1.
	KMeansMaxIters int

	// Enclosure selects the bounding volume variant.
	Enclosure envelope.Kind

	// Seed drives all randomised choices of the build. Builds with equal
	// options and providers produce identical trees.
	Seed uint64

	// Workers bounds the goroutines used to build top-level subtrees.
	// Values <= 1 build sequentially. The tree shape does not depend on
	// Workers.
	Workers int
}

// DefaultOptions contains the default build parameters.
var DefaultOptions = Options{
	LeafCapacity:   8,
	MaxFanout:      16,
	MinFanout:      2,
	KMeansMaxIters: 8,
	Enclosure:      envelope.KindRect,
}

func (o Options) validate() error {
	if o.LeafCapacity < 1 {
		return &index.ErrInvalidOptions{Field: "LeafCapacity", Reason: fmt.Sprintf("must be >= 1, got %d", o.LeafCapacity)}
	}
	if o.MaxFanout < 2 {
		return &index.ErrInvalidOptions{Field: "MaxFanout", Reason: fmt.Sprintf("must be >= 2, got %d", o.MaxFanout)}
	}
	if o.MinFanout < 1 || o.MinFanout > o.MaxFanout {
		return &index.ErrInvalidOptions{Field: "MinFanout", Reason: fmt.Sprintf("must be in [1, MaxFanout], got %d", o.MinFanout)}
	}
	if o.KMeansMaxIters < 1 {
		return &index.ErrInvalidOptions{Field: "KMeansMaxIters", Reason: fmt.Sprintf("must be >= 1, got %d", o.KMeansMaxIters)}
	}
	return nil
}

// Index is an immutable divisive k-means BVH over a shape provider.
type Index struct {
	tree *bvh.Tree
	p    provider.Provider
	opts Options
}

// entry pairs everything the build needs per shape.
type entry struct {
	id     model.ShapeID
	env    envelope.Envelope
	center r2.Vec
}

// New bulk-builds an index over p. An empty provider yields an empty
// index, not an error; shapes with non-finite coordinates are rejected.
func New(p provider.Provider, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	entries, err := collectEntries(p, opts.Enclosure)
	if err != nil {
		return nil, err
	}

	b := &builder{opts: opts, entries: entries}
	root, err := b.buildRoot()
	if err != nil {
		return nil, err
	}
	return &Index{tree: bvh.Flatten(root, opts.Enclosure), p: p, opts: opts}, nil
}

func collectEntries(p provider.Provider, kind envelope.Kind) ([]entry, error) {
	entries := make([]entry, 0, p.Len())
	var err error
	for id, g := range p.All() {
		var env envelope.Envelope
		env, err = envelope.Enclose(kind, g)
		if err != nil {
			if errors.Is(err, geom.ErrNonFinite) {
				err = fmt.Errorf("%w: %w", &index.ErrNonFinite{ID: id}, err)
			} else {
				err = fmt.Errorf("dkmeans: shape %d: %w", id, err)
			}
			break
		}
		entries = append(entries, entry{id: id, env: env, center: env.Center()})
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

type builder struct {
	opts    Options
	entries []entry
}

func (b *builder) buildRoot() (*bvh.BuildNode, error) {
	if len(b.entries) == 0 {
		return nil, nil
	}
	idx := make([]int, len(b.entries))
	for i := range idx {
		idx[i] = i
	}
	if b.opts.Workers > 1 && len(idx) > b.opts.LeafCapacity {
		return b.buildParallel(idx)
	}
	return b.build(idx, 1), nil
}

// build recurses over entry positions. path identifies the node within the
// tree and, combined with the seed, pins down the RNG stream of its split,
// so the result is independent of build scheduling.
func (b *builder) build(idx []int, path uint64) *bvh.BuildNode {
	if len(idx) <= b.opts.LeafCapacity {
		return b.leaf(idx)
	}
	groups := b.split(idx, path)
	node := &bvh.BuildNode{Children: make([]*bvh.BuildNode, len(groups))}
	for g, grp := range groups {
		node.Children[g] = b.build(grp, childPath(path, g))
	}
	b.encloseChildren(node)
	return node
}

// buildParallel builds the root split's subtrees concurrently. Child
// RNG streams are path-derived, so the tree matches a sequential build.
func (b *builder) buildParallel(idx []int) (*bvh.BuildNode, error) {
	groups := b.split(idx, 1)
	node := &bvh.BuildNode{Children: make([]*bvh.BuildNode, len(groups))}

	var eg errgroup.Group
	eg.SetLimit(b.opts.Workers)
	for g, grp := range groups {
		eg.Go(func() error {
			node.Children[g] = b.build(grp, childPath(1, g))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	b.encloseChildren(node)
	return node, nil
}

func (b *builder) leaf(idx []int) *bvh.BuildNode {
	node := &bvh.BuildNode{
		Items:    make([]model.ShapeID, len(idx)),
		ItemEnvs: make([]envelope.Envelope, len(idx)),
	}
	for i, e := range idx {
		node.Items[i] = b.entries[e].id
		node.ItemEnvs[i] = b.entries[e].env
	}
	node.Env = envelope.MergeAll(node.ItemEnvs)
	return node
}

func (b *builder) encloseChildren(node *bvh.BuildNode) {
	envs := make([]envelope.Envelope, len(node.Children))
	for i, c := range node.Children {
		envs[i] = c.Env
	}
	node.Env = envelope.MergeAll(envs)
}

// split clusters the entries at idx into between MinFanout and MaxFanout
// groups of positions into b.entries.
func (b *builder) split(idx []int, path uint64) [][]int {
	centers := make([]r2.Vec, len(idx))
	for i, e := range idx {
		centers[i] = b.entries[e].center
	}

	rng := rand.New(rand.NewSource(pathSeed(b.opts.Seed, path)))
	groups := kmeans.Partition(centers, b.opts.MaxFanout, b.opts.KMeansMaxIters, rng)
	if len(groups) < min(b.opts.MinFanout, len(idx)) {
		// Clustering collapsed below the fan-out floor (e.g. coincident
		// centers); force a balanced split instead.
		groups = chunk(len(idx), min(b.opts.MinFanout, len(idx)))
	}

	out := make([][]int, len(groups))
	for g, grp := range groups {
		ids := make([]int, len(grp))
		for i, local := range grp {
			ids[i] = idx[local]
		}
		out[g] = ids
	}
	return out
}

// chunk deals n positions into k contiguous, nearly equal groups.
func chunk(n, k int) [][]int {
	groups := make([][]int, 0, k)
	q, r := n/k, n%k
	start := 0
	for c := 0; c < k && start < n; c++ {
		size := q
		if c < r {
			size++
		}
		if size == 0 {
			continue
		}
		grp := make([]int, size)
		for i := range grp {
			grp[i] = start + i
		}
		groups = append(groups, grp)
		start += size
	}
	return groups
}

func childPath(parent uint64, child int) uint64 {
	return parent*31 + uint64(child) + 1
}

func pathSeed(seed, path uint64) int64 {
	x := seed ^ path*0x9E3779B97F4A7C15
	x ^= x >> 33
	return int64(x)
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

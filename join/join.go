// Package join implements true k-nearest-neighbour spatial joins: every
// shape on the left side is matched against an index built over the right
// side, and results stream out in left iteration order.
package join

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/index"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
)

// How selects the join semantics for left shapes with no match.
type How int

const (
	// HowLeft emits every left shape, with an empty neighbour list when
	// the right side is empty.
	HowLeft How = iota

	// HowInner drops left shapes whose neighbour list is empty.
	HowInner
)

// Options tunes a join.
type Options struct {
	// How selects inner or left semantics. Default: HowLeft.
	How How

	// Workers bounds the goroutines refining left shapes concurrently.
	// Values <= 1 run sequentially. Output order is unaffected.
	Workers int

	// ChunkSize is the number of left shapes resolved per parallel batch.
	// Only used when Workers > 1. Default: 1024.
	ChunkSize int

	// MaxCandidates and Filter are forwarded to every per-shape query.
	MaxCandidates int
	Filter        func(model.ShapeID) bool
}

// Result is the match list for one left shape, ordered by ascending exact
// distance and then right id.
type Result struct {
	LeftID    model.ShapeID
	Neighbors []model.Neighbor
}

// Nearest joins every left shape with its k exact nearest neighbours in
// right. The returned stream is pull-driven: consuming one result runs
// exactly one refinement pass (or drains one pre-computed batch when
// Workers > 1), and dropping the stream releases all per-query state.
//
// A self join (left backed by the same provider as right) is supported;
// the identity match is not excluded — ask for k+1 and drop it.
func Nearest(ctx context.Context, left provider.Provider, right index.Index, k int, optFns ...func(o *Options)) iter.Seq2[Result, error] {
	opts := Options{ChunkSize: 1024}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 1024
	}

	queryOpts := []index.QueryOption{}
	if opts.MaxCandidates > 0 {
		queryOpts = append(queryOpts, index.WithMaxCandidates(opts.MaxCandidates))
	}
	if opts.Filter != nil {
		queryOpts = append(queryOpts, index.WithFilter(opts.Filter))
	}

	if k < 0 {
		return func(yield func(Result, error) bool) {
			yield(Result{}, index.ErrInvalidK)
		}
	}
	if opts.Workers > 1 {
		return nearestParallel(ctx, left, right, k, opts, queryOpts)
	}
	return func(yield func(Result, error) bool) {
		for id, g := range left.All() {
			if err := ctx.Err(); err != nil {
				yield(Result{}, err)
				return
			}
			neighbors, err := right.TrueKNN(ctx, g, k, queryOpts...)
			if err != nil {
				yield(Result{}, err)
				return
			}
			if opts.How == HowInner && len(neighbors) == 0 {
				continue
			}
			if !yield(Result{LeftID: id, Neighbors: neighbors}, nil) {
				return
			}
		}
	}
}

// nearestParallel resolves left shapes chunk by chunk: each chunk is
// refined concurrently, then yielded in order before the next chunk
// starts, keeping memory bounded by ChunkSize.
func nearestParallel(ctx context.Context, left provider.Provider, right index.Index, k int, opts Options, queryOpts []index.QueryOption) iter.Seq2[Result, error] {
	type task struct {
		id model.ShapeID
		g  geom.Geometry
	}

	return func(yield func(Result, error) bool) {
		chunk := make([]task, 0, opts.ChunkSize)
		results := make([]Result, opts.ChunkSize)

		flush := func() (bool, error) {
			eg, gctx := errgroup.WithContext(ctx)
			eg.SetLimit(opts.Workers)
			for i, t := range chunk {
				eg.Go(func() error {
					neighbors, err := right.TrueKNN(gctx, t.g, k, queryOpts...)
					if err != nil {
						return err
					}
					results[i] = Result{LeftID: t.id, Neighbors: neighbors}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return false, err
			}
			for i := range chunk {
				if opts.How == HowInner && len(results[i].Neighbors) == 0 {
					continue
				}
				if !yield(results[i], nil) {
					return false, nil
				}
			}
			chunk = chunk[:0]
			return true, nil
		}

		for id, g := range left.All() {
			chunk = append(chunk, task{id: id, g: g})
			if len(chunk) == opts.ChunkSize {
				ok, err := flush()
				if err != nil {
					yield(Result{}, err)
					return
				}
				if !ok {
					return
				}
			}
		}
		if len(chunk) > 0 {
			if ok, err := flush(); err != nil {
				yield(Result{}, err)
				_ = ok
			}
		}
	}
}

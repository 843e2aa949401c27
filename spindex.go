package spindex

import (
	"context"
	"iter"
	"time"

	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/index"
	"github.com/datastorm-open/SpatialIndex/index/dkmeans"
	"github.com/datastorm-open/SpatialIndex/index/strtree"
	"github.com/datastorm-open/SpatialIndex/join"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
)

// SpatialIndex bundles a built index with logging and metrics. It is the
// primary entry point of the library; packages index/dkmeans and
// index/strtree remain available for callers who want the builders
// directly.
type SpatialIndex struct {
	idx     index.Index
	p       provider.Provider
	logger  *Logger
	metrics MetricsCollector
}

// New builds a spatial index over p. An empty provider yields a usable
// index that answers every query with empty results.
func New(p provider.Provider, optFns ...Option) (*SpatialIndex, error) {
	opts := applyOptions(optFns)

	start := time.Now()
	var (
		idx index.Index
		err error
	)
	switch opts.algorithm {
	case AlgorithmSTR:
		idx, err = strtree.New(p, func(o *strtree.Options) {
			o.NodeCapacity = opts.nodeCapacity
			o.Enclosure = opts.enclosure
		})
	default:
		idx, err = dkmeans.New(p, func(o *dkmeans.Options) {
			o.LeafCapacity = opts.leafCapacity
			o.MaxFanout = opts.maxFanout
			o.MinFanout = opts.minFanout
			o.KMeansMaxIters = opts.kmeansMaxIters
			o.Enclosure = opts.enclosure
			o.Seed = opts.seed
			o.Workers = opts.workers
		})
	}
	duration := time.Since(start)

	opts.metrics.RecordBuild(p.Len(), duration, err)
	opts.logger.LogBuild(string(opts.algorithm), p.Len(), duration, err)
	if err != nil {
		return nil, err
	}

	return &SpatialIndex{idx: idx, p: p, logger: opts.logger, metrics: opts.metrics}, nil
}

// TrueKNN returns the k nearest shapes to q ordered by exact distance,
// ties broken by ascending id.
func (si *SpatialIndex) TrueKNN(ctx context.Context, q geom.Geometry, k int, opts ...index.QueryOption) ([]model.Neighbor, error) {
	start := time.Now()
	res, err := si.idx.TrueKNN(ctx, q, k, opts...)
	duration := time.Since(start)
	si.metrics.RecordQuery(k, duration, err)
	si.logger.LogQuery(k, len(res), duration, err)
	return res, err
}

// TrueKNNStream is TrueKNN yielding entries one at a time in final ranked
// order.
func (si *SpatialIndex) TrueKNNStream(ctx context.Context, q geom.Geometry, k int, opts ...index.QueryOption) iter.Seq2[model.Neighbor, error] {
	return func(yield func(model.Neighbor, error) bool) {
		start := time.Now()
		count := 0
		var streamErr error
		for n, err := range si.idx.TrueKNNStream(ctx, q, k, opts...) {
			if err != nil {
				streamErr = err
				yield(model.Neighbor{}, err)
				break
			}
			count++
			if !yield(n, nil) {
				break
			}
		}
		duration := time.Since(start)
		si.metrics.RecordQuery(k, duration, streamErr)
		si.logger.LogQuery(k, count, duration, streamErr)
	}
}

// ApproxNearest streams every indexed shape with a lower bound on its
// distance to q, in non-decreasing lower-bound order. It is the raw
// traversal true-kNN refinement is built on, exposed for callers who want
// to drive their own refinement.
func (si *SpatialIndex) ApproxNearest(q geom.Geometry) iter.Seq2[model.Candidate, error] {
	return si.idx.ApproxNearest(q)
}

// Join finds, for every shape of left, its k exact nearest neighbours in
// this index. Rows stream lazily in left iteration order.
func (si *SpatialIndex) Join(ctx context.Context, left provider.Provider, k int, optFns ...func(o *join.Options)) iter.Seq2[join.Result, error] {
	return func(yield func(join.Result, error) bool) {
		start := time.Now()
		rows := 0
		for row, err := range join.Nearest(ctx, left, si.idx, k, optFns...) {
			if err != nil {
				yield(join.Result{}, err)
				break
			}
			rows++
			if !yield(row, nil) {
				break
			}
		}
		duration := time.Since(start)
		si.metrics.RecordJoin(rows, k, duration)
		si.logger.LogJoin(rows, k, duration)
	}
}

// Index returns the underlying index.
func (si *SpatialIndex) Index() index.Index { return si.idx }

// Provider returns the shape provider the index was built over.
func (si *SpatialIndex) Provider() provider.Provider { return si.p }

// Len returns the number of indexed shapes.
func (si *SpatialIndex) Len() int { return si.idx.Len() }

// Stats returns structural statistics about the index.
func (si *SpatialIndex) Stats() index.Stats { return si.idx.Stats() }

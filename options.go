package spindex

import (
	"log/slog"

	"github.com/datastorm-open/SpatialIndex/envelope"
	"github.com/datastorm-open/SpatialIndex/index/dkmeans"
	"github.com/datastorm-open/SpatialIndex/index/strtree"
)

// Algorithm selects the bulk build strategy.
type Algorithm string

const (
	// AlgorithmDKMeans builds the tree by divisive k-means clustering of
	// envelope centers. Default.
	AlgorithmDKMeans Algorithm = "dkmeans"

	// AlgorithmSTR builds the tree by Sort-Tile-Recurse bulk packing.
	AlgorithmSTR Algorithm = "str"
)

type options struct {
	algorithm      Algorithm
	enclosure      envelope.Kind
	leafCapacity   int
	maxFanout      int
	minFanout      int
	kmeansMaxIters int
	nodeCapacity   int
	seed           uint64
	workers        int
	logger         *Logger
	metrics        MetricsCollector
}

// Option configures New.
type Option func(*options)

// WithAlgorithm selects the build strategy.
func WithAlgorithm(a Algorithm) Option {
	return func(o *options) { o.algorithm = a }
}

// WithEnclosure selects the bounding volume variant used throughout the
// tree: rectangles (default) or smallest enclosing circles.
func WithEnclosure(k envelope.Kind) Option {
	return func(o *options) { o.enclosure = k }
}

// WithLeafCapacity sets the maximum number of shapes per leaf of the
// divisive k-means builder.
func WithLeafCapacity(n int) Option {
	return func(o *options) { o.leafCapacity = n }
}

// WithFanout bounds the number of children per internal node of the
// divisive k-means builder.
func WithFanout(minFanout, maxFanout int) Option {
	return func(o *options) {
		o.minFanout = minFanout
		o.maxFanout = maxFanout
	}
}

// WithKMeansMaxIters bounds the Lloyd reassignment rounds per split.
func WithKMeansMaxIters(n int) Option {
	return func(o *options) { o.kmeansMaxIters = n }
}

// WithNodeCapacity sets the entries-per-node capacity of the STR builder.
func WithNodeCapacity(n int) Option {
	return func(o *options) { o.nodeCapacity = n }
}

// WithSeed fixes the random source of the build. Equal seeds, options and
// providers produce identical trees.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithWorkers bounds the goroutines used during the build. The tree shape
// does not depend on the worker count.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger configures structured logging. Pass nil to disable.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the given level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) { o.logger = NewTextLogger(level) }
}

// WithMetricsCollector configures a metrics collector for monitoring
// builds, queries and joins.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		algorithm:      AlgorithmDKMeans,
		enclosure:      envelope.KindRect,
		leafCapacity:   dkmeans.DefaultOptions.LeafCapacity,
		maxFanout:      dkmeans.DefaultOptions.MaxFanout,
		minFanout:      dkmeans.DefaultOptions.MinFanout,
		kmeansMaxIters: dkmeans.DefaultOptions.KMeansMaxIters,
		nodeCapacity:   strtree.DefaultOptions.NodeCapacity,
		logger:         NoopLogger(),
		metrics:        NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

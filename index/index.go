// Package index defines the query surface shared by all spatial index
// implementations.
package index

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/datastorm-open/SpatialIndex/envelope"
	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
)

var (
	// ErrInvalidK is returned when a negative neighbour count is requested.
	// k == 0 is valid and yields an empty result.
	ErrInvalidK = errors.New("index: k must be non-negative")
)

// ErrInvalidOptions indicates a build parameter outside its permitted range.
type ErrInvalidOptions struct {
	Field  string
	Reason string
}

func (e *ErrInvalidOptions) Error() string {
	return fmt.Sprintf("index: invalid option %s: %s", e.Field, e.Reason)
}

// ErrNonFinite indicates a shape whose coordinates are NaN or infinite.
// Such shapes are rejected at build time; the index cannot host them.
type ErrNonFinite struct {
	ID model.ShapeID
}

func (e *ErrNonFinite) Error() string {
	return fmt.Sprintf("index: shape %d has non-finite coordinates", e.ID)
}

// ErrUnknownShape indicates that a provider failed to resolve an id the
// index owns. It can only happen when the provider was mutated after the
// build, which the provider contract forbids.
type ErrUnknownShape struct {
	ID model.ShapeID
}

func (e *ErrUnknownShape) Error() string {
	return fmt.Sprintf("index: provider does not know shape %d", e.ID)
}

// SearchResult is an exact nearest-neighbour match.
type SearchResult = model.Neighbor

// QueryOptions tunes a single true-kNN query.
type QueryOptions struct {
	// MaxCandidates caps the number of exact distance evaluations. Zero
	// means unlimited. When the cap fires the result is best-effort.
	MaxCandidates int

	// Filter drops candidates before their exact distance is computed.
	// A nil filter accepts everything.
	Filter func(model.ShapeID) bool
}

// QueryOption mutates QueryOptions.
type QueryOption func(*QueryOptions)

// WithMaxCandidates caps the number of exact distance evaluations.
func WithMaxCandidates(n int) QueryOption {
	return func(o *QueryOptions) { o.MaxCandidates = n }
}

// WithFilter restricts results to ids accepted by f.
func WithFilter(f func(model.ShapeID) bool) QueryOption {
	return func(o *QueryOptions) { o.Filter = f }
}

// ApplyQueryOptions folds option functions into a QueryOptions value.
func ApplyQueryOptions(optFns []QueryOption) QueryOptions {
	var o QueryOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// Stats describes a built index.
type Stats struct {
	Shapes    int
	Nodes     int
	Leaves    int
	Depth     int
	Enclosure envelope.Kind
}

// Index is an immutable spatial index answering true k-nearest-neighbour
// queries: results are ranked by exact geometry-to-geometry distance, not
// by the distance between bounding volumes.
//
// Indexes are safe for concurrent queries; all per-query state lives in
// the returned iterators and is released when the caller stops pulling.
type Index interface {
	// TrueKNN returns the k nearest shapes to q ordered by exact distance,
	// ties broken by ascending id. Fewer than k results are returned only
	// when the index holds fewer than k accepted shapes or when a
	// MaxCandidates cap stops the search first.
	TrueKNN(ctx context.Context, q geom.Geometry, k int, opts ...QueryOption) ([]model.Neighbor, error)

	// TrueKNNStream is TrueKNN yielding entries one at a time in final
	// ranked order. It buffers k entries internally before the first yield.
	TrueKNNStream(ctx context.Context, q geom.Geometry, k int, opts ...QueryOption) iter.Seq2[model.Neighbor, error]

	// ApproxNearest yields every shape paired with a lower bound on its
	// distance to q, in non-decreasing lower-bound order. The bound is
	// derived from enclosures and never exceeds the exact distance.
	ApproxNearest(q geom.Geometry) iter.Seq2[model.Candidate, error]

	// Provider returns the shape provider the index was built over.
	Provider() provider.Provider

	// Len returns the number of indexed shapes.
	Len() int

	// Stats returns structural statistics about the index.
	Stats() Stats
}

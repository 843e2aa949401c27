package searcher

import (
	"context"
	"iter"

	"github.com/datastorm-open/SpatialIndex/model"
)

// Options controls one refinement pass.
type Options struct {
	// MaxCandidates caps exact distance evaluations; zero means unlimited.
	MaxCandidates int

	// Filter drops candidates before their exact distance is computed.
	Filter func(model.ShapeID) bool

	// Distance computes the exact distance from a shape to the query.
	Distance func(model.ShapeID) (float64, error)
}

// Refine consumes a stream of candidates in non-decreasing lower-bound
// order and returns the k exact nearest among them, ordered by ascending
// distance and then id.
//
// The upper bound on the k-th exact distance is unknown up front, so
// refinement interleaves with the traversal: each pull either tightens the
// best-k buffer or proves that no unseen candidate can beat it. The stream
// contract makes the stopping rule sound — once a lower bound exceeds the
// worst buffered exact distance and the buffer is full, every later
// candidate is at least that far away.
func Refine(ctx context.Context, candidates iter.Seq[model.Candidate], k int, opts Options) ([]model.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}

	best := NewBestK(k)
	evaluated := 0
	var err error

	for cand := range candidates {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			break
		}
		if worst, ok := best.Worst(); ok && best.Full() && cand.LowerBound > worst.Distance {
			break
		}
		if opts.Filter != nil && !opts.Filter(cand.ID) {
			continue
		}

		d, derr := opts.Distance(cand.ID)
		if derr != nil {
			err = derr
			break
		}
		best.Offer(model.Neighbor{ID: cand.ID, Distance: d})

		evaluated++
		if opts.MaxCandidates > 0 && evaluated >= opts.MaxCandidates {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return best.Sorted(), nil
}

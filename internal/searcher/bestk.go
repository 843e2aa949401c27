package searcher

import (
	"github.com/datastorm-open/SpatialIndex/model"
)

// BestK is a bounded max-heap of the k best exact matches found so far,
// ordered so that the worst-of-the-best sits on top and is cheap to
// inspect. "Worse" means lexicographically greater (distance, id), which
// bakes the ascending-id tie-break into the buffer itself.
type BestK struct {
	k     int
	items []model.Neighbor
}

// NewBestK creates a buffer for at most k entries. k must be positive.
func NewBestK(k int) *BestK {
	capHint := k
	if capHint > 1024 {
		capHint = 1024
	}
	return &BestK{k: k, items: make([]model.Neighbor, 0, capHint)}
}

// Len returns the number of buffered entries.
func (b *BestK) Len() int { return len(b.items) }

// Full reports whether the buffer holds k entries.
func (b *BestK) Full() bool { return len(b.items) == b.k }

// Worst returns the worst buffered entry. ok is false when empty.
func (b *BestK) Worst() (model.Neighbor, bool) {
	if len(b.items) == 0 {
		return model.Neighbor{}, false
	}
	return b.items[0], true
}

// Offer inserts n if the buffer has room or n beats the current worst
// entry, evicting that entry in the latter case.
func (b *BestK) Offer(n model.Neighbor) {
	if len(b.items) < b.k {
		b.items = append(b.items, n)
		b.siftUp(len(b.items) - 1)
		return
	}
	if n.Less(b.items[0]) {
		b.items[0] = n
		b.siftDown(0)
	}
}

// Sorted drains the buffer and returns its entries ordered by ascending
// distance, ties by ascending id. The buffer is empty afterwards.
func (b *BestK) Sorted() []model.Neighbor {
	out := make([]model.Neighbor, len(b.items))
	for i := len(b.items) - 1; i >= 0; i-- {
		out[i] = b.popWorst()
	}
	return out
}

func (b *BestK) popWorst() model.Neighbor {
	n := len(b.items)
	worst := b.items[0]
	b.items[0] = b.items[n-1]
	b.items = b.items[:n-1]
	if len(b.items) > 0 {
		b.siftDown(0)
	}
	return worst
}

// worse reports whether items[i] is a worse match than items[j].
func (b *BestK) worse(i, j int) bool {
	return b.items[j].Less(b.items[i])
}

func (b *BestK) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !b.worse(i, parent) {
			break
		}
		b.items[i], b.items[parent] = b.items[parent], b.items[i]
		i = parent
	}
}

func (b *BestK) siftDown(i int) {
	n := len(b.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && b.worse(right, left) {
			child = right
		}
		if !b.worse(child, i) {
			break
		}
		b.items[i], b.items[child] = b.items[child], b.items[i]
		i = child
	}
}

// Package searcher implements the per-query machinery of true-kNN search:
// the best-first entry queue, the bounded best-k heap, and the refinement
// loop that promotes approximate candidates to exact results.
package searcher

import (
	"github.com/datastorm-open/SpatialIndex/model"
)

// Entry is an element of the best-first traversal frontier: either a tree
// node or a shape, keyed by a lower bound on its distance to the query.
type Entry struct {
	LowerBound float64
	IsShape    bool
	seq        uint64
	Node       int32
	ID         model.ShapeID
}

// EntryQueue is a binary min-heap of entries ordered by lower bound, with
// ties broken nodes-before-shapes and then by insertion order. It is
// value-based and does not implement container/heap to avoid interface
// overhead on the traversal hot path.
type EntryQueue struct {
	items []Entry
	seq   uint64
}

// NewEntryQueue creates an empty queue with a small preallocated frontier.
func NewEntryQueue() *EntryQueue {
	return &EntryQueue{items: make([]Entry, 0, 64)}
}

// Len returns the number of queued entries.
func (q *EntryQueue) Len() int { return len(q.items) }

// PushNode enqueues a tree node with the given lower bound.
func (q *EntryQueue) PushNode(lb float64, node int32) {
	q.push(Entry{LowerBound: lb, Node: node})
}

// PushShape enqueues a shape with the given lower bound.
func (q *EntryQueue) PushShape(lb float64, id model.ShapeID) {
	q.push(Entry{LowerBound: lb, IsShape: true, ID: id})
}

func (q *EntryQueue) push(e Entry) {
	e.seq = q.seq
	q.seq++
	q.items = append(q.items, e)
	q.siftUp(len(q.items) - 1)
}

// Pop removes and returns the minimum entry.
func (q *EntryQueue) Pop() (Entry, bool) {
	n := len(q.items)
	if n == 0 {
		return Entry{}, false
	}
	e := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return e, true
}

func (q *EntryQueue) less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.LowerBound != b.LowerBound {
		return a.LowerBound < b.LowerBound
	}
	if a.IsShape != b.IsShape {
		return !a.IsShape // nodes drain before shapes at equal bounds
	}
	return a.seq < b.seq
}

func (q *EntryQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *EntryQueue) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && q.less(right, left) {
			child = right
		}
		if !q.less(child, i) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}

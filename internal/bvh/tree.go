// Package bvh holds the bounding-volume hierarchy shared by all index
// builders: an immutable array-backed tree of envelopes, the best-first
// approximate-nearest traversal over it, and the exact refinement layer.
package bvh

import (
	"github.com/datastorm-open/SpatialIndex/envelope"
	"github.com/datastorm-open/SpatialIndex/index"
	"github.com/datastorm-open/SpatialIndex/model"
)

// Node is one tree node. Children of an internal node occupy the
// contiguous range [ChildStart, ChildEnd) of Tree.Nodes; a leaf owns the
// range [LeafStart, LeafEnd) of Tree.Items.
type Node struct {
	Env        envelope.Envelope
	ChildStart int32
	ChildEnd   int32
	LeafStart  int32
	LeafEnd    int32
}

// IsLeaf reports whether the node owns shapes rather than children.
func (n Node) IsLeaf() bool { return n.ChildEnd == n.ChildStart }

// Tree is the flattened, immutable hierarchy. Item envelopes are kept
// parallel to item ids so that leaf expansion during traversal can bound
// each shape individually.
type Tree struct {
	Kind     envelope.Kind
	Nodes    []Node
	Items    []model.ShapeID
	ItemEnvs []envelope.Envelope
	Root     int32
	Depth    int
}

// BuildNode is the linked form builders produce before flattening. A node
// is a leaf when it has no children; leaves carry their item ids and the
// per-item envelopes.
type BuildNode struct {
	Env      envelope.Envelope
	Children []*BuildNode
	Items    []model.ShapeID
	ItemEnvs []envelope.Envelope
}

// Flatten lays out the build tree breadth-first so that every node's
// children are contiguous. A nil root yields an empty tree.
func Flatten(root *BuildNode, kind envelope.Kind) *Tree {
	t := &Tree{Kind: kind, Root: 0}
	if root == nil {
		return t
	}

	queue := []*BuildNode{root}
	depths := []int{1}
	t.Nodes = make([]Node, 1, 64)

	for i := 0; i < len(queue); i++ {
		bn := queue[i]
		if depths[i] > t.Depth {
			t.Depth = depths[i]
		}
		n := Node{Env: bn.Env}
		if len(bn.Children) == 0 {
			n.LeafStart = int32(len(t.Items))
			t.Items = append(t.Items, bn.Items...)
			t.ItemEnvs = append(t.ItemEnvs, bn.ItemEnvs...)
			n.LeafEnd = int32(len(t.Items))
		} else {
			n.ChildStart = int32(len(queue))
			for _, c := range bn.Children {
				queue = append(queue, c)
				depths = append(depths, depths[i]+1)
				t.Nodes = append(t.Nodes, Node{})
			}
			n.ChildEnd = int32(len(queue))
		}
		t.Nodes[i] = n
	}
	return t
}

// Len returns the number of indexed shapes.
func (t *Tree) Len() int { return len(t.Items) }

// Stats summarises the tree structure.
func (t *Tree) Stats() index.Stats {
	leaves := 0
	for _, n := range t.Nodes {
		if n.IsLeaf() {
			leaves++
		}
	}
	if len(t.Items) == 0 {
		leaves = 0
	}
	return index.Stats{
		Shapes:    len(t.Items),
		Nodes:     len(t.Nodes),
		Leaves:    leaves,
		Depth:     t.Depth,
		Enclosure: t.Kind,
	}
}

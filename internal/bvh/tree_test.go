package bvh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datastorm-open/SpatialIndex/envelope"
	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/model"
)

func env(t *testing.T, g geom.Geometry) envelope.Envelope {
	t.Helper()
	e, err := envelope.Enclose(envelope.KindRect, g)
	require.NoError(t, err)
	return e
}

func leafNode(t *testing.T, ids []model.ShapeID, shapes []geom.Geometry) *BuildNode {
	t.Helper()
	n := &BuildNode{Items: ids}
	for _, g := range shapes {
		n.ItemEnvs = append(n.ItemEnvs, env(t, g))
	}
	n.Env = envelope.MergeAll(n.ItemEnvs)
	return n
}

func TestFlattenLayout(t *testing.T) {
	left := leafNode(t, []model.ShapeID{0, 1}, []geom.Geometry{geom.P(0, 0), geom.P(1, 0)})
	right := leafNode(t, []model.ShapeID{2}, []geom.Geometry{geom.P(10, 0)})
	root := &BuildNode{Children: []*BuildNode{left, right}}
	root.Env = left.Env.Merge(right.Env)

	tree := Flatten(root, envelope.KindRect)

	require.Len(t, tree.Nodes, 3)
	assert.Equal(t, 2, tree.Depth)
	assert.Equal(t, 3, tree.Len())

	rootNode := tree.Nodes[tree.Root]
	assert.False(t, rootNode.IsLeaf())
	assert.Equal(t, int32(1), rootNode.ChildStart)
	assert.Equal(t, int32(3), rootNode.ChildEnd)

	// Children are contiguous and in declaration order.
	assert.True(t, tree.Nodes[1].IsLeaf())
	assert.True(t, tree.Nodes[2].IsLeaf())
	assert.Equal(t, []model.ShapeID{0, 1, 2}, tree.Items)
}

func TestFlattenNil(t *testing.T) {
	tree := Flatten(nil, envelope.KindSphere)
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.Nodes)

	stats := tree.Stats()
	assert.Equal(t, 0, stats.Shapes)
	assert.Equal(t, envelope.KindSphere, stats.Enclosure)

	// An empty tree yields nothing.
	count := 0
	for range tree.ApproxNearest(geom.P(0, 0).Bound()) {
		count++
	}
	assert.Equal(t, 0, count)
}

func TestApproxNearestMonotone(t *testing.T) {
	left := leafNode(t, []model.ShapeID{0, 1}, []geom.Geometry{geom.P(0, 0), geom.P(1, 0)})
	right := leafNode(t, []model.ShapeID{2, 3}, []geom.Geometry{geom.P(10, 0), geom.P(11, 0)})
	root := &BuildNode{Children: []*BuildNode{left, right}}
	root.Env = left.Env.Merge(right.Env)
	tree := Flatten(root, envelope.KindRect)

	prev := -1.0
	var ids []model.ShapeID
	for c := range tree.ApproxNearest(geom.P(0.2, 0).Bound()) {
		assert.GreaterOrEqual(t, c.LowerBound, prev-1e-9)
		prev = c.LowerBound
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []model.ShapeID{0, 1, 2, 3}, ids)
	assert.Equal(t, model.ShapeID(0), ids[0])
}

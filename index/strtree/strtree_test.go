package strtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datastorm-open/SpatialIndex/envelope"
	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/index"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
	"github.com/datastorm-open/SpatialIndex/testutil"
)

func mustBuild(t *testing.T, p provider.Provider, optFns ...func(o *Options)) *Index {
	t.Helper()
	ix, err := New(p, optFns...)
	require.NoError(t, err)
	return ix
}

func TestOptionsValidation(t *testing.T) {
	_, err := New(provider.Slice{geom.P(0, 0)}, func(o *Options) { o.NodeCapacity = 1 })
	var invalid *index.ErrInvalidOptions
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "NodeCapacity", invalid.Field)
}

func TestEmptyProvider(t *testing.T) {
	ix := mustBuild(t, provider.Slice{})
	assert.Equal(t, 0, ix.Len())

	res, err := ix.TrueKNN(context.Background(), geom.P(0, 0), 3)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSingleShape(t *testing.T) {
	ix := mustBuild(t, provider.Slice{geom.P(2, 2)})

	res, err := ix.TrueKNN(context.Background(), geom.P(0, 0), 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, model.ShapeID(0), res[0].ID)
}

func TestPackingInvariants(t *testing.T) {
	rng := testutil.NewRNG(13)

	for _, kind := range []envelope.Kind{envelope.KindRect, envelope.KindSphere} {
		p := testutil.PointProvider(rng.UniformPoints(900, -200, 200))
		ix := mustBuild(t, p, func(o *Options) { o.Enclosure = kind })

		require.NoError(t, ix.Tree().CheckInvariants(p))

		tree := ix.Tree()
		for _, n := range tree.Nodes {
			if n.IsLeaf() {
				assert.LessOrEqual(t, int(n.LeafEnd-n.LeafStart), DefaultOptions.NodeCapacity)
			} else {
				assert.LessOrEqual(t, int(n.ChildEnd-n.ChildStart), DefaultOptions.NodeCapacity)
			}
		}
	}
}

func TestAgreesWithBruteForce(t *testing.T) {
	rng := testutil.NewRNG(17)
	ctx := context.Background()

	shapes := make(provider.Slice, 0, 500)
	for _, pt := range rng.UniformPoints(250, -50, 50) {
		shapes = append(shapes, pt)
	}
	for _, box := range rng.UniformBoxes(250, -50, 50, 3) {
		shapes = append(shapes, box)
	}
	ix := mustBuild(t, shapes)

	for trial := 0; trial < 40; trial++ {
		q := geom.P(rng.Float64()*120-60, rng.Float64()*120-60)
		k := 1 + rng.Intn(9)

		want, err := testutil.BruteForceKNN(shapes, q, k)
		require.NoError(t, err)
		got, err := ix.TrueKNN(ctx, q, k)
		require.NoError(t, err)

		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID, "trial %d rank %d", trial, i)
			assert.InDelta(t, want[i].Distance, got[i].Distance, 1e-9)
		}
	}
}

func TestDeterministicBuild(t *testing.T) {
	rng := testutil.NewRNG(19)
	p := testutil.PointProvider(rng.UniformPoints(300, 0, 100))

	a := mustBuild(t, p)
	b := mustBuild(t, p)
	assert.Equal(t, a.Tree().Items, b.Tree().Items)
	assert.Equal(t, len(a.Tree().Nodes), len(b.Tree().Nodes))
}

func TestSameQuerySurfaceAsDKMeans(t *testing.T) {
	var _ index.Index = (*Index)(nil)

	// The shared interface is checked at compile time above. The answer
	// must equal the brute-force reference, the same reference the dkmeans
	// tests hold that builder to; only the tree shape differs.
	rng := testutil.NewRNG(29)
	p := testutil.PointProvider(rng.UniformPoints(400, 0, 100))
	ix := mustBuild(t, p)

	q := geom.P(50, 50)
	want, err := testutil.BruteForceKNN(p, q, 7)
	require.NoError(t, err)
	got, err := ix.TrueKNN(context.Background(), q, 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

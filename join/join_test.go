package join

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/index"
	"github.com/datastorm-open/SpatialIndex/index/dkmeans"
	"github.com/datastorm-open/SpatialIndex/model"
	"github.com/datastorm-open/SpatialIndex/provider"
	"github.com/datastorm-open/SpatialIndex/testutil"
)

func buildRight(t *testing.T, p provider.Provider) index.Index {
	t.Helper()
	ix, err := dkmeans.New(p)
	require.NoError(t, err)
	return ix
}

func collectRows(t *testing.T, seq func(yield func(Result, error) bool)) []Result {
	t.Helper()
	var rows []Result
	for row, err := range seq {
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

func TestNearestMatchesBruteForcePerRow(t *testing.T) {
	rng := testutil.NewRNG(41)
	ctx := context.Background()

	right := testutil.PointProvider(rng.UniformPoints(1000, 0, 1000))
	left := testutil.PointProvider(rng.UniformPoints(100, 0, 1000))
	ix := buildRight(t, right)

	rows := collectRows(t, Nearest(ctx, left, ix, 5))
	require.Len(t, rows, left.Len())

	for i, row := range rows {
		assert.Equal(t, model.ShapeID(i), row.LeftID, "left order must be preserved")

		g, ok := left.Get(row.LeftID)
		require.True(t, ok)
		want, err := testutil.BruteForceKNN(right, g, 5)
		require.NoError(t, err)

		require.Len(t, row.Neighbors, len(want))
		for j := range want {
			assert.Equal(t, want[j].ID, row.Neighbors[j].ID, "row %d rank %d", i, j)
			assert.InDelta(t, want[j].Distance, row.Neighbors[j].Distance, 1e-9)
		}
	}
}

func TestHowSemantics(t *testing.T) {
	ctx := context.Background()
	left := provider.Slice{geom.P(0, 0), geom.P(1, 1)}
	emptyRight := buildRight(t, provider.Slice{})

	t.Run("LeftKeepsEmptyRows", func(t *testing.T) {
		rows := collectRows(t, Nearest(ctx, left, emptyRight, 3))
		require.Len(t, rows, 2)
		assert.Empty(t, rows[0].Neighbors)
		assert.Empty(t, rows[1].Neighbors)
	})

	t.Run("InnerDropsEmptyRows", func(t *testing.T) {
		rows := collectRows(t, Nearest(ctx, left, emptyRight, 3, func(o *Options) {
			o.How = HowInner
		}))
		assert.Empty(t, rows)
	})
}

func TestParallelMatchesSequential(t *testing.T) {
	rng := testutil.NewRNG(43)
	ctx := context.Background()

	right := testutil.PointProvider(rng.UniformPoints(500, 0, 100))
	left := testutil.PointProvider(rng.UniformPoints(150, 0, 100))
	ix := buildRight(t, right)

	seq := collectRows(t, Nearest(ctx, left, ix, 3))
	par := collectRows(t, Nearest(ctx, left, ix, 3, func(o *Options) {
		o.Workers = 4
		o.ChunkSize = 32
	}))

	assert.Equal(t, seq, par)
}

func TestSelfJoinKeepsIdentityMatch(t *testing.T) {
	ctx := context.Background()
	shapes := testutil.PointProvider([]geom.Point{geom.P(0, 0), geom.P(10, 0), geom.P(20, 0)})
	ix := buildRight(t, shapes)

	rows := collectRows(t, Nearest(ctx, shapes, ix, 2))
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.NotEmpty(t, row.Neighbors)
		// The first match of each row is the shape itself at distance 0.
		assert.Equal(t, row.LeftID, row.Neighbors[0].ID)
		assert.Equal(t, 0.0, row.Neighbors[0].Distance)
	}
}

func TestLazyPull(t *testing.T) {
	ctx := context.Background()
	right := testutil.PointProvider([]geom.Point{geom.P(0, 0), geom.P(1, 0)})
	counting := testutil.NewCountingProvider(right)
	ix := buildRight(t, counting)
	counting.Reset()

	left := testutil.PointProvider([]geom.Point{geom.P(0, 0), geom.P(5, 0), geom.P(9, 0)})

	pulled := 0
	for _, err := range Nearest(ctx, left, ix, 1) {
		require.NoError(t, err)
		pulled++
		if pulled == 1 {
			break
		}
	}
	assert.Equal(t, 1, pulled)
	// Only the first left shape was refined; dropping the stream must not
	// have touched the remaining ones.
	assert.LessOrEqual(t, counting.Gets(), int64(2))
}

func TestNegativeK(t *testing.T) {
	ctx := context.Background()
	shapes := provider.Slice{geom.P(0, 0)}
	ix := buildRight(t, shapes)

	var sawErr error
	for _, err := range Nearest(ctx, shapes, ix, -2) {
		sawErr = err
	}
	assert.ErrorIs(t, sawErr, index.ErrInvalidK)
}

func TestCancelledContext(t *testing.T) {
	shapes := provider.Slice{geom.P(0, 0)}
	ix := buildRight(t, shapes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr error
	for _, err := range Nearest(ctx, shapes, ix, 1) {
		sawErr = err
	}
	assert.ErrorIs(t, sawErr, context.Canceled)
}

func TestFilterForwarded(t *testing.T) {
	ctx := context.Background()
	right := testutil.PointProvider([]geom.Point{geom.P(0, 0), geom.P(1, 0), geom.P(2, 0)})
	ix := buildRight(t, right)
	left := provider.Slice{geom.P(0, 0)}

	rows := collectRows(t, Nearest(ctx, left, ix, 2, func(o *Options) {
		o.Filter = func(id model.ShapeID) bool { return id != 0 }
	}))
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Neighbors, 2)
	assert.Equal(t, model.ShapeID(1), rows[0].Neighbors[0].ID)
	assert.Equal(t, model.ShapeID(2), rows[0].Neighbors[1].ID)
}

package envelope

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/datastorm-open/SpatialIndex/geom"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "Rect", KindRect.String())
	assert.Equal(t, "Sphere", KindSphere.String())
}

func TestEncloseRect(t *testing.T) {
	ls := geom.LineString{geom.P(0, 0), geom.P(4, 2)}
	env, err := Enclose(KindRect, ls)
	require.NoError(t, err)

	assert.Equal(t, KindRect, env.Kind())
	assert.True(t, env.Bound().Contains(ls.Bound()))
	assert.InDelta(t, 2.0, env.Center().X, 1e-6)
	assert.InDelta(t, 1.0, env.Center().Y, 1e-6)
}

func TestEncloseSphere(t *testing.T) {
	t.Run("Point", func(t *testing.T) {
		env, err := Enclose(KindSphere, geom.P(3, 4))
		require.NoError(t, err)
		s := env.(Sphere)
		assert.Equal(t, r2.Vec{X: 3, Y: 4}, s.C)
		assert.LessOrEqual(t, s.R, 1e-6)
	})

	t.Run("Segment", func(t *testing.T) {
		env, err := Enclose(KindSphere, geom.LineString{geom.P(-1, 0), geom.P(1, 0)})
		require.NoError(t, err)
		s := env.(Sphere)
		assert.InDelta(t, 0.0, s.C.X, 1e-9)
		assert.InDelta(t, 0.0, s.C.Y, 1e-9)
		assert.InDelta(t, 1.0, s.R, 1e-6)
	})

	t.Run("CoversAllVertices", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		pts := make(geom.MultiPoint, 40)
		for i := range pts {
			pts[i] = geom.P(rng.Float64()*100-50, rng.Float64()*100-50)
		}
		env, err := Enclose(KindSphere, pts)
		require.NoError(t, err)
		s := env.(Sphere)
		for _, p := range pts {
			d := r2.Norm(r2.Sub(r2.Vec{X: p.X, Y: p.Y}, s.C))
			assert.LessOrEqual(t, d, s.R+1e-9)
		}
	})
}

func TestEncloseRejectsBadGeometries(t *testing.T) {
	for _, kind := range []Kind{KindRect, KindSphere} {
		_, err := Enclose(kind, nil)
		assert.ErrorIs(t, err, geom.ErrEmptyGeometry)

		_, err = Enclose(kind, geom.P(math.NaN(), 0))
		assert.ErrorIs(t, err, geom.ErrNonFinite)

		_, err = Enclose(kind, geom.P(math.Inf(-1), 0))
		assert.ErrorIs(t, err, geom.ErrNonFinite)
	}
}

func TestMergeContainment(t *testing.T) {
	shapes := []geom.Geometry{
		geom.P(0, 0),
		geom.LineString{geom.P(5, 5), geom.P(9, 1)},
		geom.Polygon{Shell: geom.Ring{geom.P(-3, -3), geom.P(-1, -3), geom.P(-2, -1)}},
	}

	for _, kind := range []Kind{KindRect, KindSphere} {
		envs := make([]Envelope, len(shapes))
		for i, g := range shapes {
			env, err := Enclose(kind, g)
			require.NoError(t, err)
			envs[i] = env
		}
		merged := MergeAll(envs)
		require.NotNil(t, merged)
		assert.Equal(t, kind, merged.Kind())
		for _, env := range envs {
			assert.True(t, merged.Bound().Contains(env.Bound()),
				"%v envelope escapes merge", kind)
		}
	}
}

func TestMergeAllEmpty(t *testing.T) {
	assert.Nil(t, MergeAll(nil))
}

// Lower and upper bounds must bracket the exact distance for any pair of
// enclosed shape and query geometry.
func TestDistanceBoundsSound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	randomShape := func() geom.Geometry {
		switch rng.Intn(3) {
		case 0:
			return geom.P(rng.Float64()*200-100, rng.Float64()*200-100)
		case 1:
			x, y := rng.Float64()*200-100, rng.Float64()*200-100
			return geom.LineString{geom.P(x, y), geom.P(x+rng.Float64()*10, y+rng.Float64()*10)}
		default:
			x, y := rng.Float64()*200-100, rng.Float64()*200-100
			s := rng.Float64()*5 + 0.1
			return geom.Polygon{Shell: geom.Ring{
				geom.P(x, y), geom.P(x+s, y), geom.P(x+s, y+s), geom.P(x, y+s),
			}}
		}
	}

	for _, kind := range []Kind{KindRect, KindSphere} {
		for trial := 0; trial < 200; trial++ {
			g := randomShape()
			q := randomShape()

			env, err := Enclose(kind, g)
			require.NoError(t, err)
			exact, err := geom.Distance(g, q)
			require.NoError(t, err)

			bound := q.Bound()
			lower := env.MinDist(bound)
			upper := env.MaxDist(bound)

			assert.LessOrEqual(t, lower, exact+1e-9, "%v lower bound unsound", kind)
			assert.GreaterOrEqual(t, upper, exact-1e-9, "%v upper bound unsound", kind)
		}
	}
}

func TestSphereMerge(t *testing.T) {
	a := Sphere{C: r2.Vec{X: 0, Y: 0}, R: 1}
	b := Sphere{C: r2.Vec{X: 4, Y: 0}, R: 1}

	m := a.Merge(b).(Sphere)
	assert.InDelta(t, 2.0, m.C.X, 1e-6)
	assert.InDelta(t, 3.0, m.R, 1e-6)

	t.Run("ContainedStaysPut", func(t *testing.T) {
		inner := Sphere{C: r2.Vec{X: 0.5, Y: 0}, R: 0.1}
		outer := Sphere{C: r2.Vec{X: 0, Y: 0}, R: 2}
		assert.Equal(t, outer, outer.Merge(inner))
		assert.Equal(t, outer, inner.Merge(outer))
	})
}

package envelope

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Containment tests in the incremental construction tolerate a relative
// error so that points on the boundary count as inside.
const circleEps = 1 + 1e-14

type circle struct {
	c r2.Vec
	r float64
}

func (c circle) contains(p r2.Vec) bool {
	return r2.Norm(r2.Sub(p, c.c)) <= c.r*circleEps
}

// smallestCircle returns the centre and radius of the smallest circle
// containing all points. A randomized incremental construction in the
// manner of Welzl's algorithm, scanning a shuffled copy of the points,
// runs in expected linear time; the shuffle is seeded deterministically
// so that index builds are reproducible.
func smallestCircle(pts []r2.Vec) (r2.Vec, float64) {
	if len(pts) == 0 {
		return r2.Vec{}, 0
	}
	shuffled := make([]r2.Vec, len(pts))
	copy(shuffled, pts)
	rng := rand.New(rand.NewSource(int64(len(pts))))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	c := circle{r: -1}
	for i, p := range shuffled {
		if c.r < 0 || !c.contains(p) {
			c = circleOnePoint(shuffled[:i+1], p)
		}
	}
	return c.c, c.r
}

// circleOnePoint returns the smallest circle containing pts with p on the
// boundary.
func circleOnePoint(pts []r2.Vec, p r2.Vec) circle {
	c := circle{c: p, r: 0}
	for i, q := range pts {
		if !c.contains(q) {
			if c.r == 0 {
				c = circleDiameter(p, q)
			} else {
				c = circleTwoPoints(pts[:i+1], p, q)
			}
		}
	}
	return c
}

// circleTwoPoints returns the smallest circle containing pts with p and q
// on the boundary.
func circleTwoPoints(pts []r2.Vec, p, q r2.Vec) circle {
	circ := circleDiameter(p, q)
	left := circle{r: -1}
	right := circle{r: -1}

	pq := r2.Sub(q, p)
	for _, s := range pts {
		cross := r2.Cross(pq, r2.Sub(s, p))
		c, ok := circumcircle(p, q, s)
		if !ok {
			continue
		}
		d := r2.Cross(pq, r2.Sub(c.c, p))
		switch {
		case cross > 0 && (left.r < 0 || d > r2.Cross(pq, r2.Sub(left.c, p))):
			left = c
		case cross < 0 && (right.r < 0 || d < r2.Cross(pq, r2.Sub(right.c, p))):
			right = c
		}
	}

	switch {
	case left.r < 0 && right.r < 0:
		return circ
	case left.r < 0:
		return right
	case right.r < 0:
		return left
	case left.r <= right.r:
		return left
	default:
		return right
	}
}

func circleDiameter(a, b r2.Vec) circle {
	c := r2.Scale(0.5, r2.Add(a, b))
	r := math.Max(r2.Norm(r2.Sub(a, c)), r2.Norm(r2.Sub(b, c)))
	return circle{c: c, r: r}
}

// circumcircle computes the circle through three points, translated to a
// local origin for numerical stability. ok is false when the points are
// collinear.
func circumcircle(a, b, c r2.Vec) (circle, bool) {
	ox := (math.Min(math.Min(a.X, b.X), c.X) + math.Max(math.Max(a.X, b.X), c.X)) / 2
	oy := (math.Min(math.Min(a.Y, b.Y), c.Y) + math.Max(math.Max(a.Y, b.Y), c.Y)) / 2
	ax, ay := a.X-ox, a.Y-oy
	bx, by := b.X-ox, b.Y-oy
	cx, cy := c.X-ox, c.Y-oy

	d := (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by)) * 2
	if d == 0 {
		return circle{}, false
	}
	x := ox + ((ax*ax+ay*ay)*(by-cy)+(bx*bx+by*by)*(cy-ay)+(cx*cx+cy*cy)*(ay-by))/d
	y := oy + ((ax*ax+ay*ay)*(cx-bx)+(bx*bx+by*by)*(ax-cx)+(cx*cx+cy*cy)*(bx-ax))/d
	center := r2.Vec{X: x, Y: y}
	r := math.Max(math.Max(r2.Norm(r2.Sub(a, center)), r2.Norm(r2.Sub(b, center))), r2.Norm(r2.Sub(c, center)))
	return circle{c: center, r: r}, true
}

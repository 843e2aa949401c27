// Package kmeans implements the deterministic clustering step of divisive
// index construction: k-means++-style seeding, a bounded number of Lloyd
// rounds, and guards that keep every cluster non-empty.
package kmeans

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// sampleSize bounds the medoid scan used to pick the first seed.
const sampleSize = 64

// Partition groups point indices into at most k non-empty clusters.
// The same points, k, maxIters and RNG state always produce the same
// grouping: assignment ties go to the lower cluster index, argmax/argmin
// scans keep the first winner, and the fallback partition is a plain sort.
func Partition(pts []r2.Vec, k, maxIters int, rng *rand.Rand) [][]int {
	n := len(pts)
	if n == 0 {
		return nil
	}
	if k >= n {
		groups := make([][]int, n)
		for i := range groups {
			groups[i] = []int{i}
		}
		return groups
	}

	centers := seedCenters(pts, k, rng)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < maxIters; iter++ {
		if !assignAll(pts, centers, assign) {
			break
		}
		updateCenters(pts, centers, assign)
	}

	// Re-seed empty clusters from the largest one, at most k times, then
	// give up and fall back to a balanced split.
	for attempt := 0; attempt < k; attempt++ {
		empty := emptyCluster(assign, k)
		if empty < 0 {
			break
		}
		largest := largestCluster(assign, k)
		a, b := farthestPair(pts, members(assign, largest))
		centers[empty] = pts[a]
		centers[largest] = pts[b]
		assignAll(pts, centers, assign)
	}
	if emptyCluster(assign, k) >= 0 {
		return balancedPartition(pts, k)
	}

	groups := make([][]int, k)
	for i, c := range assign {
		groups[c] = append(groups[c], i)
	}
	out := groups[:0]
	for _, g := range groups {
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// seedCenters picks k initial centers: the medoid of a bounded sample
// first, then repeatedly the point farthest from every chosen center.
func seedCenters(pts []r2.Vec, k int, rng *rand.Rand) []r2.Vec {
	n := len(pts)

	sample := make([]int, n)
	for i := range sample {
		sample[i] = i
	}
	if n > sampleSize {
		perm := rng.Perm(n)
		sample = perm[:sampleSize]
		sort.Ints(sample)
	}

	first := sample[0]
	bestSum := math.Inf(1)
	for _, i := range sample {
		var sum float64
		for _, j := range sample {
			sum += distSq(pts[i], pts[j])
		}
		if sum < bestSum {
			bestSum = sum
			first = i
		}
	}

	centers := make([]r2.Vec, 1, k)
	centers[0] = pts[first]

	nearest := make([]float64, n)
	for i := range nearest {
		nearest[i] = distSq(pts[i], centers[0])
	}
	for len(centers) < k {
		far, farDist := 0, -1.0
		for i, d := range nearest {
			if d > farDist {
				far, farDist = i, d
			}
		}
		c := pts[far]
		centers = append(centers, c)
		for i := range nearest {
			if d := distSq(pts[i], c); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return centers
}

// assignAll reassigns every point to its nearest center and reports
// whether anything moved. Equidistant points stay in the lower cluster.
func assignAll(pts []r2.Vec, centers []r2.Vec, assign []int) bool {
	changed := false
	for i, p := range pts {
		best, bestDist := 0, distSq(p, centers[0])
		for c := 1; c < len(centers); c++ {
			if d := distSq(p, centers[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		if assign[i] != best {
			assign[i] = best
			changed = true
		}
	}
	return changed
}

func updateCenters(pts []r2.Vec, centers []r2.Vec, assign []int) {
	sums := make([]r2.Vec, len(centers))
	counts := make([]int, len(centers))
	for i, c := range assign {
		sums[c] = r2.Add(sums[c], pts[i])
		counts[c]++
	}
	for c := range centers {
		if counts[c] > 0 {
			centers[c] = r2.Scale(1/float64(counts[c]), sums[c])
		}
	}
}

func emptyCluster(assign []int, k int) int {
	seen := make([]bool, k)
	for _, c := range assign {
		seen[c] = true
	}
	for c, ok := range seen {
		if !ok {
			return c
		}
	}
	return -1
}

func largestCluster(assign []int, k int) int {
	counts := make([]int, k)
	for _, c := range assign {
		counts[c]++
	}
	best := 0
	for c, n := range counts {
		if n > counts[best] {
			best = c
		}
	}
	return best
}

func members(assign []int, cluster int) []int {
	var out []int
	for i, c := range assign {
		if c == cluster {
			out = append(out, i)
		}
	}
	return out
}

// farthestPair approximates the most distant pair of the given points with
// a deterministic double sweep: the point farthest from the first member,
// then the point farthest from that.
func farthestPair(pts []r2.Vec, idx []int) (int, int) {
	a := idx[0]
	for _, i := range idx {
		if distSq(pts[i], pts[idx[0]]) > distSq(pts[a], pts[idx[0]]) {
			a = i
		}
	}
	b := idx[0]
	for _, i := range idx {
		if distSq(pts[i], pts[a]) > distSq(pts[b], pts[a]) {
			b = i
		}
	}
	return a, b
}

// balancedPartition is the degenerate-input fallback: indices sorted by
// coordinates are dealt into k nearly equal contiguous groups.
func balancedPartition(pts []r2.Vec, k int) [][]int {
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := pts[order[i]], pts[order[j]]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return order[i] < order[j]
	})

	groups := make([][]int, 0, k)
	q, r := len(pts)/k, len(pts)%k
	start := 0
	for c := 0; c < k && start < len(pts); c++ {
		size := q
		if c < r {
			size++
		}
		if size == 0 {
			continue
		}
		groups = append(groups, order[start:start+size])
		start += size
	}
	return groups
}

func distSq(a, b r2.Vec) float64 {
	return r2.Norm2(r2.Sub(a, b))
}

// Package cluster groups users by behavior with a deterministic k-means.
//
// Fit is a pure function: it holds no state between calls and the same
// points, k and seed always yield the same Model.
package cluster

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Defaults used when callers pass non-positive values.
const (
	DefaultK        = 3
	DefaultSeed     = 42
	DefaultRestarts = 10
	maxIterations   = 300
)

// Model is the outcome of one Fit call.
type Model struct {
	Centroids [][]float64
	Labels    []int
	Inertia   float64
}

// K returns the number of clusters actually fitted.
func (m Model) K() int {
	return len(m.Centroids)
}

// Label returns the cluster of the i-th fitted point, or -1 when out of range.
func (m Model) Label(i int) int {
	if i < 0 || i >= len(m.Labels) {
		return -1
	}
	return m.Labels[i]
}

// Predict returns the nearest centroid for p, or -1 for an empty model.
func (m Model) Predict(p []float64) int {
	if len(m.Centroids) == 0 {
		return -1
	}
	return nearest(m.Centroids, clean(p))
}

// Fit runs k-means++ seeded k-means DefaultRestarts times and keeps the run
// with the lowest inertia. k is capped at the number of distinct points.
// NaN and infinite coordinates are treated as 0.
func Fit(points [][]float64, k int, seed uint64) Model {
	if len(points) == 0 {
		return Model{}
	}
	if k <= 0 {
		k = DefaultK
	}

	data := make([][]float64, len(points))
	for i, p := range points {
		data[i] = clean(p)
	}
	if d := distinct(data); k > d {
		k = d
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var best Model
	for run := 0; run < DefaultRestarts; run++ {
		m := lloyd(data, seedCentroids(data, k, rng))
		if run == 0 || m.Inertia < best.Inertia {
			best = m
		}
	}
	return best
}

// seedCentroids picks k initial centroids with the k-means++ rule.
func seedCentroids(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(data[rng.IntN(len(data))]))

	dist := make([]float64, len(data))
	for len(centroids) < k {
		var sum float64
		for i, p := range data {
			d := squared(p, centroids[nearest(centroids, p)])
			dist[i] = d
			sum += d
		}
		if sum == 0 {
			break
		}

		target := rng.Float64() * sum
		pick := -1
		for i, d := range dist {
			if d == 0 {
				continue
			}
			pick = i
			target -= d
			if target < 0 {
				break
			}
		}
		centroids = append(centroids, clone(data[pick]))
	}
	return centroids
}

func lloyd(data [][]float64, centroids [][]float64) Model {
	labels := make([]int, len(data))
	for i := range labels {
		labels[i] = -1
	}
	dims := len(data[0])

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range data {
			if c := nearest(centroids, p); c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, len(centroids))
		counts := make([]int, len(centroids))
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range data {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}
		for c := range centroids {
			// an empty cluster keeps its previous centroid
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centroids[c] = sums[c]
		}
	}

	var inertia float64
	for i, p := range data {
		inertia += squared(p, centroids[labels[i]])
	}
	return Model{Centroids: centroids, Labels: labels, Inertia: inertia}
}

// nearest returns the index of the closest centroid; ties go to the lower index.
func nearest(centroids [][]float64, p []float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squared(p, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func squared(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func distinct(data [][]float64) int {
	n := 0
	for i, p := range data {
		dup := false
		for _, q := range data[:i] {
			if floats.Equal(p, q) {
				dup = true
				break
			}
		}
		if !dup {
			n++
		}
	}
	return n
}

func clean(p []float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = v
	}
	return out
}

func clone(p []float64) []float64 {
	return append([]float64(nil), p...)
}

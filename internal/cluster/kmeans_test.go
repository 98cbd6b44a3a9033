package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeGroups() [][]float64 {
	return [][]float64{
		{10, 5}, {12, 6}, {11, 4},
		{500, 300}, {510, 290}, {495, 305},
		{2000, 1500}, {2050, 1480}, {1990, 1520},
	}
}

func TestFit_SeparatesGroups(t *testing.T) {
	m := Fit(threeGroups(), 3, DefaultSeed)

	require.Equal(t, 3, m.K())
	require.Len(t, m.Labels, 9)

	for g := 0; g < 3; g++ {
		first := m.Label(g * 3)
		assert.Equal(t, first, m.Label(g*3+1))
		assert.Equal(t, first, m.Label(g*3+2))
	}
	assert.NotEqual(t, m.Label(0), m.Label(3))
	assert.NotEqual(t, m.Label(3), m.Label(6))
	assert.NotEqual(t, m.Label(0), m.Label(6))
}

func TestFit_Deterministic(t *testing.T) {
	a := Fit(threeGroups(), 3, DefaultSeed)
	b := Fit(threeGroups(), 3, DefaultSeed)
	assert.Equal(t, a, b)
}

func TestFit_CapsKAtDistinctPoints(t *testing.T) {
	points := [][]float64{{1, 1}, {1, 1}, {5, 5}}
	m := Fit(points, 3, DefaultSeed)

	assert.Equal(t, 2, m.K())
	assert.Equal(t, m.Label(0), m.Label(1))
	assert.NotEqual(t, m.Label(0), m.Label(2))
	assert.InDelta(t, 0.0, m.Inertia, 1e-9)
}

func TestFit_EdgeCases(t *testing.T) {
	t.Run("no points", func(t *testing.T) {
		m := Fit(nil, 3, DefaultSeed)
		assert.Zero(t, m.K())
		assert.Equal(t, -1, m.Label(0))
		assert.Equal(t, -1, m.Predict([]float64{1, 2}))
	})

	t.Run("single point", func(t *testing.T) {
		m := Fit([][]float64{{3, 4}}, 3, DefaultSeed)
		assert.Equal(t, 1, m.K())
		assert.Equal(t, 0, m.Label(0))
	})

	t.Run("non-positive k uses default", func(t *testing.T) {
		m := Fit(threeGroups(), 0, DefaultSeed)
		assert.Equal(t, DefaultK, m.K())
	})

	t.Run("NaN coordinates treated as zero", func(t *testing.T) {
		m := Fit([][]float64{{math.NaN(), 0}, {0, 0}, {100, 100}}, 2, DefaultSeed)
		assert.Equal(t, m.Label(0), m.Label(1))
		assert.False(t, math.IsNaN(m.Inertia))
	})
}

func TestModel_Predict(t *testing.T) {
	m := Fit(threeGroups(), 3, DefaultSeed)
	assert.Equal(t, m.Label(0), m.Predict([]float64{9, 5}))
	assert.Equal(t, m.Label(6), m.Predict([]float64{2100, 1400}))
}

func TestModel_PredictMatchesFittedLabels(t *testing.T) {
	points := threeGroups()
	points = append(points, []float64{math.NaN(), 3})
	m := Fit(points, 3, DefaultSeed)
	for i, p := range points {
		assert.Equal(t, m.Label(i), m.Predict(p), "point %d", i)
	}
}

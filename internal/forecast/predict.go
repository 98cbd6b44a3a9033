// Package forecast predicts a user's next trip emission from route history.
package forecast

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// MinTrendSamples is the smallest history fitted with a regression line.
const MinTrendSamples = 3

// Route is one recorded route used as predictor input.
type Route struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	DistanceMiles float64   `json:"distance_miles" db:"distance_miles"`
	Emission      float64   `json:"emission" db:"emission"`
	Mode          string    `json:"mode" db:"mode"`
	Timestamp     time.Time `json:"timestamp" db:"created_at"`
}

// Outcome says whether a Prediction carries a value.
type Outcome string

// Method names the estimator that produced a value.
type Method string

const (
	Predicted        Outcome = "predicted"
	InsufficientData Outcome = "insufficient_data"

	MethodNone  Method = ""
	MethodMean  Method = "mean"
	MethodTrend Method = "trend"
)

// Prediction is a point estimate of future emissions in lbs CO2.
type Prediction struct {
	Value   float64 `json:"value"`
	Outcome Outcome `json:"outcome"`
	Method  Method  `json:"method,omitempty"`
	Samples int     `json:"samples"`
}

// Available reports whether the prediction carries a value.
func (p Prediction) Available() bool {
	return p.Outcome == Predicted
}

// Predict estimates the next emission. With no routes the outcome is
// InsufficientData. Fewer than MinTrendSamples routes yield the mean emission.
// Otherwise emission is regressed on distance and evaluated at the mean
// distance, falling back to the mean when that distance is zero.
func Predict(routes []Route) Prediction {
	n := len(routes)
	if n == 0 {
		return Prediction{Outcome: InsufficientData}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, r := range routes {
		xs[i] = clean(r.DistanceMiles)
		ys[i] = clean(r.Emission)
	}

	meanY := stat.Mean(ys, nil)
	if n < MinTrendSamples {
		return result(meanY, MethodMean, n)
	}

	meanX := stat.Mean(xs, nil)
	if meanX == 0 || math.IsNaN(meanX) {
		return result(meanY, MethodMean, n)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	v := alpha + beta*meanX
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return result(meanY, MethodMean, n)
	}
	return result(v, MethodTrend, n)
}

func result(v float64, m Method, samples int) Prediction {
	if v < 0 {
		v = 0
	}
	return Prediction{
		Value:   Round2(v),
		Outcome: Predicted,
		Method:  m,
		Samples: samples,
	}
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

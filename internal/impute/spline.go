// Package impute fills gaps in each entity's time series using only that
// entity's own observations.
package impute

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// SplineFill fills missing values strictly inside the observed year range with a
// shape-preserving monotone cubic (Fritsch-Butland). Years outside the range are
// left missing. Fewer than two observations is a no-op. Missing values are NaN.
// years must be strictly increasing. It returns a new slice and the fill count.
func SplineFill(years, values []float64) ([]float64, int) {
	out := append([]float64(nil), values...)

	var xs, ys []float64
	for i, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, years[i])
			ys = append(ys, v)
		}
	}
	if len(xs) < 2 {
		return out, 0
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return out, 0
		}
	}

	var fb interp.FritschButland
	if err := fb.Fit(xs, ys); err != nil {
		return out, 0
	}

	lo, hi := xs[0], xs[len(xs)-1]
	filled := 0
	for i, v := range out {
		if !math.IsNaN(v) || years[i] < lo || years[i] > hi {
			continue
		}
		if p := fb.Predict(years[i]); !math.IsNaN(p) && !math.IsInf(p, 0) {
			out[i] = p
			filled++
		}
	}
	return out, filled
}

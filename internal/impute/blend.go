package impute

import "math"

// Alpha is the EWM smoothing factor for a span, 2/(span+1).
func Alpha(span int) float64 {
	return 2 / (float64(span) + 1)
}

// ForwardFill carries the last observation forward; leading gaps stay NaN.
func ForwardFill(values []float64) []float64 {
	out := make([]float64, len(values))
	last := math.NaN()
	for i, v := range values {
		if !math.IsNaN(v) {
			last = v
		}
		out[i] = last
	}
	return out
}

// BackwardFill carries the next observation backward; trailing gaps stay NaN.
func BackwardFill(values []float64) []float64 {
	out := make([]float64, len(values))
	next := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			next = values[i]
		}
		out[i] = next
	}
	return out
}

// EWM is a recursive exponentially weighted mean, y[t] = (1-a)*y[t-1] + a*x[t],
// seeded by the first observation. Missing inputs keep the previous mean.
func EWM(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	mean := math.NaN()
	for i, v := range values {
		switch {
		case math.IsNaN(v):
		case math.IsNaN(mean):
			mean = v
		default:
			mean = (1-alpha)*mean + alpha*v
		}
		out[i] = mean
	}
	return out
}

func reversed(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[len(values)-1-i] = v
	}
	return out
}

// Blend averages a forward-filled EWM (in year order) with a backward-filled EWM
// (in reverse year order), skipping a side that has no value yet.
func Blend(values []float64, span int) []float64 {
	alpha := Alpha(span)
	fwd := EWM(ForwardFill(values), alpha)
	bwd := reversed(EWM(reversed(BackwardFill(values)), alpha))

	out := make([]float64, len(values))
	for i := range values {
		f, b := fwd[i], bwd[i]
		switch {
		case math.IsNaN(f):
			out[i] = b
		case math.IsNaN(b):
			out[i] = f
		default:
			out[i] = (f + b) / 2
		}
	}
	return out
}

// BlendFill replaces the missing entries of current with the blend of original.
// A series with no observations is returned unchanged; a single observation is
// broadcast to every year.
func BlendFill(original, current []float64, span int) ([]float64, int) {
	out := append([]float64(nil), current...)
	blend := Blend(original, span)
	filled := 0
	for i, v := range out {
		if math.IsNaN(v) && !math.IsNaN(blend[i]) {
			out[i] = blend[i]
			filled++
		}
	}
	return out, filled
}

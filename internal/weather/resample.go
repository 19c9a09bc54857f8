package weather

import (
	"fmt"
	"math"
)

// Resample returns data resampled to n samples by linear interpolation.
// The first and last samples are preserved exactly. n must lie in
// [2, len(data)]; n == len(data) returns a copy.
func Resample(data []float64, n int) ([]float64, error) {
	l := len(data)
	if l == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidResample)
	}
	if n == l {
		out := make([]float64, l)
		copy(out, data)
		return out, nil
	}
	if n < 2 || n > l {
		return nil, fmt.Errorf("%w: %d samples from %d", ErrInvalidResample, n, l)
	}

	out := make([]float64, n)
	out[0] = data[0]

	step := float64(l-1) / float64(n-1)
	for i := 1; i < n-1; i++ {
		t := float64(i) * step
		lo := math.Floor(t)
		hi := math.Ceil(t)
		frac := t - lo
		before, after := data[int(lo)], data[int(hi)]
		out[i] = before + (after-before)*frac
	}

	out[n-1] = data[l-1]
	return out, nil
}

// ApplyCorrection returns values multiplied by factor.
func ApplyCorrection(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}

package editor

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIndexOutOfRange is returned by RemoveAt for an index outside the samples
var ErrIndexOutOfRange = errors.New("sample index out of range")

// CutByValue keeps the samples whose value lies within [lo, hi], in their
// original order. The bounds may be given in either order.
func CutByValue(samples []float64, lo, hi float64) []float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	out := make([]float64, 0, len(samples))
	for _, v := range samples {
		if v >= lo && v <= hi {
			out = append(out, v)
		}
	}
	return out
}

// CutByIndex keeps the samples whose position lies within [from, to].
// Positions outside the slice are ignored, so the window may overhang it.
func CutByIndex(samples []float64, from, to int) []float64 {
	if from > to {
		from, to = to, from
	}
	from = max(from, 0)
	to = min(to, len(samples)-1)
	if from > to {
		return []float64{}
	}
	return slices.Clone(samples[from : to+1])
}

// RemoveAt drops the samples at the given positions.
func RemoveAt(samples []float64, indexes ...int) ([]float64, error) {
	drop := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= len(samples) {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(samples))
		}
		drop[i] = struct{}{}
	}

	out := make([]float64, 0, len(samples)-len(drop))
	for i, v := range samples {
		if _, ok := drop[i]; !ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Package stats holds the per-frequency scatter statistics: the arithmetic
// mean of a sample set and its relative root-mean-square error.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the derived pair computed from one sample set.
type Summary struct {
	Mean             float64 `json:"mean"`
	RelativeRMSError float64 `json:"relativeRmsError"`
}

// Mean returns the arithmetic mean of samples, or 0 for an empty set.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// RelativeRMSError returns sqrt((1/n) * sum(((x_i - mean) / mean)^2)).
//
// The deviation is divided by the mean without a guard: a zero mean yields
// NaN or +Inf, and an empty set yields NaN. Callers that plot or persist the
// value must be ready for both.
func RelativeRMSError(samples []float64) float64 {
	m := Mean(samples)

	dev := make([]float64, len(samples))
	for i, x := range samples {
		dev[i] = (x - m) / m
	}

	return math.Sqrt(floats.Dot(dev, dev) / float64(len(samples)))
}

// Summarize computes both statistics for samples.
func Summarize(samples []float64) Summary {
	return Summary{
		Mean:             Mean(samples),
		RelativeRMSError: RelativeRMSError(samples),
	}
}

package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	testCases := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7.5}, 7.5},
		{"three", []float64{10, 20, 30}, 20},
		{"negative", []float64{-1, -3}, -2},
		{"zero mean", []float64{-2, 2}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Mean(tc.samples), 1e-12)
		})
	}
}

func TestMean_EmptyIsExactlyZero(t *testing.T) {
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.False(t, math.Signbit(Mean(nil)))
}

func TestRelativeRMSError(t *testing.T) {
	got := RelativeRMSError([]float64{10, 20, 30})
	want := math.Sqrt((0.25 + 0 + 0.25) / 3)
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 0.2041, got, 1e-4)
}

func TestRelativeRMSError_SingleSample(t *testing.T) {
	for _, x := range []float64{1, -4.2, 1e-9, 3e12} {
		assert.Equal(t, 0.0, RelativeRMSError([]float64{x}), "sample %v", x)
	}
}

func TestRelativeRMSError_ZeroMean(t *testing.T) {
	// 0/0 for a single zero sample
	assert.True(t, math.IsNaN(RelativeRMSError([]float64{0})))

	// non-zero deviations over a zero mean blow up
	got := RelativeRMSError([]float64{-2, 2})
	assert.True(t, math.IsInf(got, 1), "got %v", got)
}

func TestRelativeRMSError_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(RelativeRMSError(nil)))
}

func TestOrderInvariance(t *testing.T) {
	base := []float64{3.1, 0.4, 15.9, 2.6, 5.3, 5.8, 9.7}
	permutations := [][]float64{
		{0.4, 2.6, 3.1, 5.3, 5.8, 9.7, 15.9},
		{15.9, 9.7, 5.8, 5.3, 3.1, 2.6, 0.4},
		{5.3, 15.9, 0.4, 9.7, 3.1, 5.8, 2.6},
	}

	want := Summarize(base)
	for _, p := range permutations {
		got := Summarize(p)
		assert.InDelta(t, want.Mean, got.Mean, 1e-12)
		assert.InDelta(t, want.RelativeRMSError, got.RelativeRMSError, 1e-12)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 20, 30})
	require.InDelta(t, 20.0, s.Mean, 1e-12)
	require.InDelta(t, 0.20412414523193154, s.RelativeRMSError, 1e-12)
}

package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCutByValue(t *testing.T) {
	in := []float64{5, -1, 12, 7, 7.5, 100}

	assert.Equal(t, []float64{5, 7, 7.5}, CutByValue(in, 5, 10))
	assert.Equal(t, []float64{5, 7, 7.5}, CutByValue(in, 10, 5))
	assert.Equal(t, []float64{}, CutByValue(in, 200, 300))
	assert.Equal(t, []float64{5, -1, 12, 7, 7.5, 100}, in)
}

func TestCutByIndex(t *testing.T) {
	in := []float64{0, 10, 20, 30, 40}

	testCases := []struct {
		name     string
		from, to int
		want     []float64
	}{
		{"inner", 1, 3, []float64{10, 20, 30}},
		{"swapped", 3, 1, []float64{10, 20, 30}},
		{"overhang", -2, 1, []float64{0, 10}},
		{"past end", 3, 9, []float64{30, 40}},
		{"outside", 7, 9, []float64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CutByIndex(in, tc.from, tc.to)
			assert.Equal(t, tc.want, got)
		})
	}

	out := CutByIndex(in, 0, 1)
	out[0] = 99
	assert.Equal(t, 0.0, in[0])
}

func TestRemoveAt(t *testing.T) {
	in := []float64{0, 10, 20, 30}

	out, err := RemoveAt(in, 3, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 20}, out)

	_, err = RemoveAt(in, 4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = RemoveAt(in, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

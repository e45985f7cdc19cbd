// Package normalize turns station statistics into comparison curves: mean
// field value divided by the transmitter current at each frequency.
package normalize

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roman-kulish/scatter-prep/internal/station"
)

// ErrMissingCurrent is returned when no transmitter current is known for a
// frequency of the curve being built
var ErrMissingCurrent = errors.New("missing transmitter current")

// CurrentLookup returns the transmitter current recorded for freq.
type CurrentLookup func(freq float64) (float64, bool)

// Point is one point of a curve.
type Point struct {
	Frequency float64 `json:"frequency"`
	Value     float64 `json:"value"`
}

// Curve is a labelled curve of one station.
type Curve struct {
	Station station.ID `json:"station"`
	Label   string     `json:"label"`
	Points  []Point    `json:"points"`
}

// Comparison is a set of station curves over a shared frequency axis.
type Comparison struct {
	Axis   []float64 `json:"axis"`
	Curves []Curve   `json:"curves"`
}

// AxisUnion returns the distinct frequencies of all series in ascending
// order.
func AxisUnion(series ...*station.Series) []float64 {
	var axis []float64
	for _, s := range series {
		axis = append(axis, s.FileOrder()...)
	}

	slices.Sort(axis)
	return slices.Compact(axis)
}

// NormalizedCurve divides the mean of every frequency of s by its current,
// in ascending frequency order. A single frequency without a current fails
// the whole curve.
func NormalizedCurve(s *station.Series, lookup CurrentLookup) ([]Point, error) {
	entries := s.SortedEntries()
	points := make([]Point, 0, len(entries))

	for _, e := range entries {
		current, ok := lookup(e.Frequency)
		if !ok {
			return nil, fmt.Errorf("normalizing station %s: %w at %s",
				s.ID(), ErrMissingCurrent, station.FormatFrequency(e.Frequency))
		}
		points = append(points, Point{Frequency: e.Frequency, Value: e.Stats.Mean / current})
	}

	return points, nil
}

// ErrorCurve returns the relative RMS error of every frequency of s, in
// ascending frequency order.
func ErrorCurve(s *station.Series) []Point {
	entries := s.SortedEntries()
	points := make([]Point, len(entries))

	for i, e := range entries {
		points[i] = Point{Frequency: e.Frequency, Value: e.Stats.RelativeRMSError}
	}

	return points
}

// Compare builds the normalized curve of every series plus their shared
// axis. It fails if any curve fails.
func Compare(series []*station.Series, lookup CurrentLookup) (Comparison, error) {
	curves := make([]Curve, 0, len(series))
	var errs []error

	for _, s := range series {
		points, err := NormalizedCurve(s, lookup)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		curves = append(curves, Curve{Station: s.ID(), Label: s.ID().String(), Points: points})
	}

	if err := errors.Join(errs...); err != nil {
		return Comparison{}, err
	}

	return Comparison{Axis: AxisUnion(series...), Curves: curves}, nil
}

// MapLookup returns a CurrentLookup backed by an exact-key map.
func MapLookup(currents map[float64]float64) CurrentLookup {
	return func(freq float64) (float64, bool) {
		c, ok := currents[freq]
		return c, ok
	}
}

package storage

import (
	"database/sql"
	"errors"
	"math"

	"github.com/roman-kulish/scatter-prep/internal/record"
	"github.com/roman-kulish/scatter-prep/internal/station"
	"github.com/roman-kulish/scatter-prep/internal/stats"
)

// frequencyTolerance is the relative tolerance used to match frequencies
// coming from different files
const frequencyTolerance = 1e-9

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

// CurrentsFromRecords derives the transmitter current of every record as
// the mean of its values.
func CurrentsFromRecords(records []record.Record) []Current {
	out := make([]Current, len(records))
	for i, rec := range records {
		out[i] = Current{Frequency: rec.Frequency, Current: stats.Mean(rec.Samples)}
	}
	return out
}

// SQLite stores NaN as NULL, so NULL reads back as NaN.
func toNullFloat64(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: !math.IsNaN(f)}
}

func fromNullFloat64(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

func toSummary(d *stationStatsData) Summary {
	return Summary{
		Station: station.ID{
			Line:    int(d.Line),
			Site:    int(d.Site),
			Device:  int(d.Device),
			Channel: int(d.Channel),
			Tag:     d.Tag,
		},
		Frequency:     d.Frequency,
		Samples:       int(d.Samples),
		Current:       d.Current,
		Mean:          fromNullFloat64(d.Mean),
		RelativeError: fromNullFloat64(d.RelativeError),
	}
}

// freqCompare compares frequencies using a tolerance relative to b.
// Returns:
//
//	-1 if a < b
//	 0 if a ≈ b (within tolerance)
//	+1 if a > b
func freqCompare(a, b float64) int {
	tolerance := frequencyTolerance * math.Max(1, math.Abs(b))

	diff := a - b
	if math.Abs(diff) <= tolerance {
		return 0
	}
	if diff < 0 {
		return -1
	}
	return 1
}

// freqEqual returns true if a equals b within tolerance
func freqEqual(a, b float64) bool {
	return freqCompare(a, b) == 0
}

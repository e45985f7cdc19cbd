package storage

import (
	"database/sql"

	"github.com/roman-kulish/scatter-prep/internal/station"
)

// Current is the transmitter current recorded at one frequency.
type Current struct {
	Frequency float64 `json:"frequency"`
	Current   float64 `json:"current"`
}

// Summary is the stored statistics of one station frequency joined with
// the transmitter current at that frequency.
type Summary struct {
	Station       station.ID
	Frequency     float64
	Samples       int
	Current       sql.NullFloat64 // Invalid when no current was imported for the frequency
	Mean          float64
	RelativeError float64
}

type stationStatsData struct {
	Line          int64
	Site          int64
	Device        int64
	Channel       int64
	Tag           string
	Frequency     float64
	Samples       int64
	Current       sql.NullFloat64
	Mean          sql.NullFloat64
	RelativeError sql.NullFloat64
}

package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/scatter-prep/internal/normalize"
	"github.com/roman-kulish/scatter-prep/internal/station"
)

// Store provides an interface for persisting transmitter currents and the
// per-station statistics derived from receiver scatter tables.
type Store interface {
	// ImportCurrents replaces all stored transmitter currents with currents.
	// The replacement is atomic: on error the previous currents are kept.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - currents: Transmitter current per frequency, frequencies unique
	//
	// Returns:
	//   - error: ErrNoCurrents if currents is empty, or if storage fails
	ImportCurrents(ctx context.Context, currents []Current) error

	// Currents returns the stored transmitter currents in ascending
	// frequency order.
	Currents(ctx context.Context) ([]Current, error)

	// CurrentLookup snapshots the stored currents into a lookup function
	// suitable for normalize.NormalizedCurve. Later imports do not affect
	// the returned lookup.
	//
	// Returns:
	//   - lookup: Matches frequencies within a relative tolerance of 1e-9
	//   - error: ErrNoCurrents if nothing was imported, or if reading fails
	CurrentLookup(ctx context.Context) (normalize.CurrentLookup, error)

	// StoreStation saves the current statistics of every frequency of s,
	// replacing statistics previously stored for the same station and
	// frequency. All frequencies are stored in a single transaction.
	StoreStation(ctx context.Context, s *station.Series) error

	// Summaries returns every stored station frequency joined with its
	// transmitter current, ordered by station and frequency.
	Summaries(ctx context.Context) ([]Summary, error)

	// Close releases all database connections and resources.
	// It is safe to call Close multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)

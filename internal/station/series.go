// Package station holds the per-station scatter table: for every frequency
// recorded by a receiver channel, the current sample set and the statistics
// derived from it.
package station

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/roman-kulish/scatter-prep/internal/record"
	"github.com/roman-kulish/scatter-prep/internal/stats"
)

var (
	// ErrUnknownFrequency is returned for a frequency that was not loaded
	ErrUnknownFrequency = errors.New("unknown frequency")

	// ErrDuplicateFrequency is returned when a source repeats a frequency
	ErrDuplicateFrequency = errors.New("duplicate frequency")
)

// Source is where a Series is loaded from. *record.File implements it.
type Source interface {
	Name() string
	ReadAll(ctx context.Context) ([]record.Record, error)
}

// Entry is an immutable view of one frequency of a Series.
type Entry struct {
	Frequency float64       `json:"frequency"`
	Line      int           `json:"line"` // Zero based line index in the source file
	Samples   []float64     `json:"samples"`
	Stats     stats.Summary `json:"stats"`
}

// state is never modified after it is published; replacing samples swaps
// the whole state so readers never see samples and stats out of step.
type state struct {
	samples []float64
	summary stats.Summary
}

type slot struct {
	frequency float64
	line      int
	current   atomic.Pointer[state]
}

func (s *slot) entry() Entry {
	st := s.current.Load()
	return Entry{
		Frequency: s.frequency,
		Line:      s.line,
		Samples:   slices.Clone(st.samples),
		Stats:     st.summary,
	}
}

// Series is one station's frequency table. The set of frequencies is fixed
// at construction; only the samples (and so the stats) of a frequency can
// change, through Replace.
//
// Reads are safe at any time. Replace calls for different frequencies may
// run concurrently; calls for the same frequency must be serialized by the
// caller (see editor.Editor).
type Series struct {
	id     ID
	source Source

	slots  []*slot         // file order
	sorted []*slot         // ascending frequency
	index  map[float64]int // frequency -> position in slots
}

// Load reads all records of src and builds its Series. The station identity
// is parsed from the source name before any data is read.
func Load(ctx context.Context, src Source) (*Series, error) {
	id, err := ParseID(src.Name())
	if err != nil {
		return nil, err
	}

	records, err := src.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Name(), err)
	}

	s, err := New(id, records)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Name(), err)
	}
	s.source = src

	return s, nil
}

// New builds a Series from records given in file order; record i is
// assumed to come from line i of its file.
func New(id ID, records []record.Record) (*Series, error) {
	s := &Series{
		id:    id,
		slots: make([]*slot, 0, len(records)),
		index: make(map[float64]int, len(records)),
	}

	for i, rec := range records {
		if _, ok := s.index[rec.Frequency]; ok {
			return nil, fmt.Errorf("%w: %g at line %d", ErrDuplicateFrequency, rec.Frequency, i)
		}

		sl := &slot{frequency: rec.Frequency, line: i}
		sl.current.Store(newState(rec.Samples))

		s.index[rec.Frequency] = len(s.slots)
		s.slots = append(s.slots, sl)
	}

	s.sorted = slices.Clone(s.slots)
	slices.SortFunc(s.sorted, func(a, b *slot) int {
		switch {
		case a.frequency < b.frequency:
			return -1
		case a.frequency > b.frequency:
			return 1
		}
		return 0
	})

	return s, nil
}

func newState(samples []float64) *state {
	samples = slices.Clone(samples)
	if samples == nil {
		samples = []float64{}
	}
	return &state{samples: samples, summary: stats.Summarize(samples)}
}

// ID returns the station identity.
func (s *Series) ID() ID {
	return s.id
}

// Source returns the source the series was loaded from, or nil when it was
// built with New.
func (s *Series) Source() Source {
	return s.source
}

// Len returns the number of frequencies.
func (s *Series) Len() int {
	return len(s.slots)
}

func (s *Series) lookup(freq float64) (*slot, error) {
	i, ok := s.index[freq]
	if !ok {
		return nil, fmt.Errorf("%w: %g on station %s", ErrUnknownFrequency, freq, s.id)
	}
	return s.slots[i], nil
}

// Has reports whether freq is one of the series frequencies.
func (s *Series) Has(freq float64) bool {
	_, ok := s.index[freq]
	return ok
}

// Stats returns the current statistics for freq.
func (s *Series) Stats(freq float64) (stats.Summary, error) {
	sl, err := s.lookup(freq)
	if err != nil {
		return stats.Summary{}, err
	}
	return sl.current.Load().summary, nil
}

// Samples returns a copy of the current samples for freq.
func (s *Series) Samples(freq float64) ([]float64, error) {
	sl, err := s.lookup(freq)
	if err != nil {
		return nil, err
	}
	return slices.Clone(sl.current.Load().samples), nil
}

// Entry returns samples and stats of freq taken from the same state.
func (s *Series) Entry(freq float64) (Entry, error) {
	sl, err := s.lookup(freq)
	if err != nil {
		return Entry{}, err
	}
	return sl.entry(), nil
}

// LineOf returns the zero based line index freq was read from.
func (s *Series) LineOf(freq float64) (int, error) {
	sl, err := s.lookup(freq)
	if err != nil {
		return 0, err
	}
	return sl.line, nil
}

// FileOrder returns the frequencies in the order they appear in the source.
func (s *Series) FileOrder() []float64 {
	out := make([]float64, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.frequency
	}
	return out
}

// Frequencies returns the frequencies in ascending order.
func (s *Series) Frequencies() []float64 {
	out := make([]float64, len(s.sorted))
	for i, sl := range s.sorted {
		out[i] = sl.frequency
	}
	return out
}

// Entries returns a snapshot of every frequency in file order.
func (s *Series) Entries() []Entry {
	out := make([]Entry, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.entry()
	}
	return out
}

// SortedEntries returns a snapshot of every frequency in ascending order.
func (s *Series) SortedEntries() []Entry {
	out := make([]Entry, len(s.sorted))
	for i, sl := range s.sorted {
		out[i] = sl.entry()
	}
	return out
}

// Replace installs samples as the sample set of freq and recomputes its
// statistics. The previous samples and stats are discarded together. The
// slice is copied; the caller may reuse it.
//
// Replace does no locking of its own. Readers always see a consistent pair,
// but two concurrent Replace calls on the same frequency race and the last
// one wins. Edits should go through editor.Editor, which allows one writer
// per frequency; calling Replace directly gives up that guarantee.
func (s *Series) Replace(freq float64, samples []float64) error {
	sl, err := s.lookup(freq)
	if err != nil {
		return err
	}
	sl.current.Store(newState(samples))
	return nil
}

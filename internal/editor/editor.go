// Package editor applies operator edits to station scatter tables: it
// installs filtered sample sets and recovers the on-disk samples of a single
// frequency, keeping at most one edit in flight per station and frequency.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/roman-kulish/scatter-prep/internal/record"
	"github.com/roman-kulish/scatter-prep/internal/station"
	"github.com/roman-kulish/scatter-prep/internal/stats"
)

// recoveryTolerance is the relative tolerance used to match the frequency
// read back from disk against the frequency being recovered.
const recoveryTolerance = 1e-9

var (
	// ErrRecoveryKeyMismatch warns that a recovered line holds a different
	// frequency than expected. The samples are installed regardless.
	ErrRecoveryKeyMismatch = errors.New("recovered frequency mismatch")

	// ErrEmptySampleSet is returned when an edit would leave no samples
	ErrEmptySampleSet = errors.New("empty sample set")

	// ErrNoRecoverySource is returned by RecoverFromSource for a series
	// whose source cannot re-read single lines
	ErrNoRecoverySource = errors.New("series has no recovery source")
)

// RecoverySource re-reads a single record by its line index.
type RecoverySource interface {
	ReadRecordAtLine(ctx context.Context, lineIndex int) (record.Record, error)
}

// Recovery describes a completed recovery.
type Recovery struct {
	Frequency float64
	Line      int
	Samples   []float64
	Stats     stats.Summary

	// Warning is non-nil, and wraps ErrRecoveryKeyMismatch, when the line
	// held a different frequency. The samples were installed anyway.
	Warning error
}

// editKey identifies a series by pointer, so two series that happen to share
// a station ID never wait on each other.
type editKey struct {
	series    *station.Series
	frequency float64
}

// WithLogger sets the logger for the editor
func WithLogger(logger *slog.Logger) func(*Editor) {
	return func(e *Editor) {
		e.logger = logger.With(slog.String("component", "editor"))
	}
}

// WithMetrics sets the metrics the editor reports to
func WithMetrics(m *Metrics) func(*Editor) {
	return func(e *Editor) {
		e.metrics = m
	}
}

// Editor serializes edits per (series, frequency). Edits of different
// frequencies, or different series, never wait on each other.
//
// A lock is created on the first edit of a key and lives as long as the
// Editor, keeping its series reachable. Use one Editor per set of loaded
// series and drop it together with them.
type Editor struct {
	logger  *slog.Logger
	metrics *Metrics

	mu    sync.Mutex
	locks map[editKey]*sync.Mutex
}

// New creates an Editor with a discard logger and no metrics.
func New(options ...func(*Editor)) *Editor {
	e := Editor{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		locks:  make(map[editKey]*sync.Mutex),
	}

	for _, option := range options {
		option(&e)
	}

	return &e
}

func (e *Editor) lock(s *station.Series, freq float64) func() {
	key := editKey{series: s, frequency: freq}

	e.mu.Lock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (e *Editor) log(s *station.Series, freq float64) *slog.Logger {
	return e.logger.With(
		slog.String("station", s.ID().String()),
		slog.String("frequency", station.FormatFrequency(freq)),
	)
}

// Install replaces the sample set of freq with samples and recomputes its
// statistics. No other frequency is touched.
func (e *Editor) Install(s *station.Series, freq float64, samples []float64) error {
	if !s.Has(freq) {
		e.metrics.edit(opInstall, outcomeRejected)
		return fmt.Errorf("installing samples: %w: %g on station %s", station.ErrUnknownFrequency, freq, s.ID())
	}
	if len(samples) == 0 {
		e.metrics.edit(opInstall, outcomeRejected)
		return fmt.Errorf("installing samples: %w", ErrEmptySampleSet)
	}

	unlock := e.lock(s, freq)
	defer unlock()

	if err := s.Replace(freq, samples); err != nil {
		e.metrics.edit(opInstall, outcomeFailed)
		return fmt.Errorf("installing samples: %w", err)
	}

	e.metrics.edit(opInstall, outcomeOK)
	e.log(s, freq).Debug("samples installed", slog.Int("count", len(samples)))

	return nil
}

// Edit reads the current samples of freq, passes them to fn and installs
// the result, all while holding the edit lock for freq. Index based filters
// such as CutByIndex and RemoveAt must go through Edit so the indexes refer
// to the samples they were computed against.
func (e *Editor) Edit(s *station.Series, freq float64, fn func(samples []float64) ([]float64, error)) error {
	if !s.Has(freq) {
		e.metrics.edit(opInstall, outcomeRejected)
		return fmt.Errorf("editing samples: %w: %g on station %s", station.ErrUnknownFrequency, freq, s.ID())
	}

	unlock := e.lock(s, freq)
	defer unlock()

	current, err := s.Samples(freq)
	if err != nil {
		e.metrics.edit(opInstall, outcomeFailed)
		return fmt.Errorf("editing samples: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		e.metrics.edit(opInstall, outcomeRejected)
		return fmt.Errorf("editing samples: %w", err)
	}
	if len(next) == 0 {
		e.metrics.edit(opInstall, outcomeRejected)
		return fmt.Errorf("editing samples: %w", ErrEmptySampleSet)
	}

	if err = s.Replace(freq, next); err != nil {
		e.metrics.edit(opInstall, outcomeFailed)
		return fmt.Errorf("editing samples: %w", err)
	}

	e.metrics.edit(opInstall, outcomeOK)
	e.log(s, freq).Debug("samples edited",
		slog.Int("before", len(current)),
		slog.Int("after", len(next)))

	return nil
}

// Recover re-reads line lineIndex of src and installs its samples as the
// sample set of freq, discarding in-memory edits of that frequency only.
//
// The line index is trusted: when the line holds another frequency the
// samples are still installed and Recovery.Warning reports the mismatch.
// On a read error nothing is installed.
func (e *Editor) Recover(ctx context.Context, s *station.Series, freq float64, lineIndex int, src RecoverySource) (Recovery, error) {
	if !s.Has(freq) {
		e.metrics.edit(opRecover, outcomeRejected)
		return Recovery{}, fmt.Errorf("recovering samples: %w: %g on station %s", station.ErrUnknownFrequency, freq, s.ID())
	}

	unlock := e.lock(s, freq)
	defer unlock()

	logger := e.log(s, freq)

	rec, err := src.ReadRecordAtLine(ctx, lineIndex)
	if err != nil {
		e.metrics.edit(opRecover, outcomeFailed)
		return Recovery{}, fmt.Errorf("recovering samples from line %d: %w", lineIndex, err)
	}

	var warning error
	if !sameFrequency(rec.Frequency, freq) {
		warning = fmt.Errorf("%w: line %d holds %g, want %g", ErrRecoveryKeyMismatch, lineIndex, rec.Frequency, freq)
		e.metrics.mismatch()
		logger.Warn(warning.Error(), slog.Int("line", lineIndex))
	}

	if err = s.Replace(freq, rec.Samples); err != nil {
		e.metrics.edit(opRecover, outcomeFailed)
		return Recovery{}, fmt.Errorf("recovering samples: %w", err)
	}

	e.metrics.edit(opRecover, outcomeOK)
	logger.Debug("samples recovered", slog.Int("line", lineIndex), slog.Int("count", len(rec.Samples)))

	entry, err := s.Entry(freq)
	if err != nil {
		return Recovery{}, err
	}

	return Recovery{
		Frequency: freq,
		Line:      lineIndex,
		Samples:   entry.Samples,
		Stats:     entry.Stats,
		Warning:   warning,
	}, nil
}

// RecoverFromSource recovers freq from the file the series was loaded from,
// using the line index recorded at load time.
func (e *Editor) RecoverFromSource(ctx context.Context, s *station.Series, freq float64) (Recovery, error) {
	src, ok := s.Source().(RecoverySource)
	if !ok {
		return Recovery{}, fmt.Errorf("recovering samples: %w: station %s", ErrNoRecoverySource, s.ID())
	}

	line, err := s.LineOf(freq)
	if err != nil {
		e.metrics.edit(opRecover, outcomeRejected)
		return Recovery{}, fmt.Errorf("recovering samples: %w", err)
	}

	return e.Recover(ctx, s, freq, line, src)
}

func sameFrequency(got, want float64) bool {
	return math.Abs(got-want) <= recoveryTolerance*math.Max(1, math.Abs(want))
}

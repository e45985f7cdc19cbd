// Package loader loads receiver files into station series concurrently.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/roman-kulish/scatter-prep/internal/record"
	"github.com/roman-kulish/scatter-prep/internal/station"
)

// Result is the outcome of loading one file. Exactly one of Series and Err
// is set, unless the file was never attempted because ctx was done.
type Result struct {
	Path   string
	Series *station.Series
	Err    error
}

type options struct {
	logger  *slog.Logger
	workers int
}

// WithLogger sets the logger for the loader
func WithLogger(logger *slog.Logger) func(*options) {
	return func(o *options) {
		o.logger = logger.With(slog.String("component", "loader"))
	}
}

// WithWorkers limits the number of files loaded at once. Values below one
// select runtime.NumCPU.
func WithWorkers(n int) func(*options) {
	return func(o *options) {
		o.workers = n
	}
}

// LoadAll loads every path into its own series. A file that fails to load
// is reported in its Result and does not affect the others. Results are
// returned in the order of paths. The returned error is non-nil only when
// ctx is done.
func LoadAll(ctx context.Context, paths []string, opts ...func(*options)) ([]Result, error) {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}

	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			s, err := station.Load(gctx, record.NewFile(path))
			results[i] = Result{Path: path, Series: s, Err: err}

			logger := o.logger.With(slog.String("file", filepath.Base(path)))
			if err != nil {
				logger.Error("load failed", slog.String("error", err.Error()))
				return nil
			}

			logger.Debug("station loaded",
				slog.String("station", s.ID().String()),
				slog.Int("frequencies", s.Len()))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("loading receiver files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("loading receiver files: %w", err)
	}

	return results, nil
}

// Expand resolves glob patterns into a sorted list of distinct paths.
func Expand(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

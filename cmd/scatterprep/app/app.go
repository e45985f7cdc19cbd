package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roman-kulish/scatter-prep/internal/editor"
	"github.com/roman-kulish/scatter-prep/internal/export"
	"github.com/roman-kulish/scatter-prep/internal/loader"
	"github.com/roman-kulish/scatter-prep/internal/normalize"
	"github.com/roman-kulish/scatter-prep/internal/record"
	"github.com/roman-kulish/scatter-prep/internal/station"
	"github.com/roman-kulish/scatter-prep/internal/storage"
)

// loaded is a series with the file it was read from
type loaded struct {
	path   string
	series *station.Series
	edited bool
}

func Run(ctx context.Context, config *Config, logger *slog.Logger) (err error) {
	if config.Output.Directory != "" {
		if err = os.MkdirAll(config.Output.Directory, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	store := storage.NewSqliteStore(config.Storage.DBPath)
	defer closeWithError(store, &err)

	if config.Input.Transmitter != "" {
		if err = importTransmitter(ctx, store, config.Input.Transmitter, logger); err != nil {
			return err
		}
	}

	stations, err := loadReceivers(ctx, &config.Input, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	ed := editor.New(editor.WithLogger(logger), editor.WithMetrics(editor.NewMetrics(reg)))

	if err = applyCuts(stations, config.Cuts, ed, logger); err != nil {
		return err
	}

	for _, st := range stations {
		if err = store.StoreStation(ctx, st.series); err != nil {
			return fmt.Errorf("storing station %s: %w", st.series.ID(), err)
		}

		if config.Output.WriteFiltered && st.edited {
			path, err := export.WriteFilteredFile(st.series, st.path, config.Output.Directory)
			if err != nil {
				return err
			}
			logger.Info("filtered samples written", slog.String("path", path))
		}
	}

	if err = writeCurves(ctx, store, stations, config, logger); err != nil {
		return err
	}

	if err = writeSummary(ctx, store, config); err != nil {
		return err
	}

	if config.Output.MetricsFile != "" {
		if err = prometheus.WriteToTextfile(outputPath(config, config.Output.MetricsFile), reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	return nil
}

func importTransmitter(ctx context.Context, store storage.Store, path string, logger *slog.Logger) error {
	records, err := record.NewFile(path).ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("reading transmitter file: %w", err)
	}

	if err = store.ImportCurrents(ctx, storage.CurrentsFromRecords(records)); err != nil {
		return fmt.Errorf("importing transmitter currents from %s: %w", path, err)
	}

	logger.Info("transmitter currents imported",
		slog.String("path", path),
		slog.Int("frequencies", len(records)))
	return nil
}

func loadReceivers(ctx context.Context, config *InputConfig, logger *slog.Logger) ([]*loaded, error) {
	paths, err := loader.Expand(config.Receivers)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errNoReceivers
	}

	results, err := loader.LoadAll(ctx, paths, loader.WithWorkers(config.Workers), loader.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var stations []*loaded
	var errs []error
	seen := make(map[station.ID]string, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue // logged by the loader
		}

		id := r.Series.ID()
		if first, ok := seen[id]; ok {
			errs = append(errs, fmt.Errorf("%w: %s in %s and %s", errDuplicateStation, id, first, r.Path))
			continue
		}
		seen[id] = r.Path

		stations = append(stations, &loaded{path: r.Path, series: r.Series})
	}
	if err = errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("none of %d receiver files could be loaded", len(paths))
	}

	logger.Info("receiver files loaded",
		slog.Int("loaded", len(stations)),
		slog.Int("failed", len(paths)-len(stations)))
	return stations, nil
}

func applyCuts(stations []*loaded, cuts []CutConfig, ed *editor.Editor, logger *slog.Logger) error {
	byID := make(map[string]*loaded, len(stations))
	for _, st := range stations {
		byID[st.series.ID().String()] = st
	}

	var errs []error
	for _, cut := range cuts {
		st, ok := byID[cut.Station]
		if !ok {
			logger.Warn("cut skipped, station not loaded", slog.String("station", cut.Station))
			continue
		}

		err := ed.Edit(st.series, cut.Frequency, func(samples []float64) ([]float64, error) {
			if cut.isValueCut() {
				return editor.CutByValue(samples, *cut.Min, *cut.Max), nil
			}
			return editor.CutByIndex(samples, *cut.From, *cut.To), nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("cutting %s at %s: %w", cut.Station, station.FormatFrequency(cut.Frequency), err))
			continue
		}
		st.edited = true
	}

	return errors.Join(errs...)
}

func writeCurves(ctx context.Context, store storage.Store, stations []*loaded, config *Config, logger *slog.Logger) error {
	lookup, err := store.CurrentLookup(ctx)
	if errors.Is(err, storage.ErrNoCurrents) {
		logger.Warn("no transmitter currents, normalized curves skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading transmitter currents: %w", err)
	}

	series := make([]*station.Series, len(stations))
	for i, st := range stations {
		series[i] = st.series
	}

	cmp, err := normalize.Compare(series, lookup)
	if err != nil {
		return err
	}

	return writeFile(outputPath(config, config.Output.CurvesFile), func(w io.Writer) error {
		return export.WriteComparison(w, cmp)
	})
}

func writeSummary(ctx context.Context, store storage.Store, config *Config) error {
	summaries, err := store.Summaries(ctx)
	if err != nil {
		return fmt.Errorf("reading summaries: %w", err)
	}

	return writeFile(outputPath(config, config.Output.SummaryFile), func(w io.Writer) error {
		return export.WriteSummary(w, summaries)
	})
}

func writeFile(path string, write func(w io.Writer) error) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer closeWithError(fh, &err)

	if err = write(fh); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func outputPath(config *Config, name string) string {
	if filepath.IsAbs(name) || config.Output.Directory == "" {
		return name
	}
	return filepath.Join(config.Output.Directory, name)
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

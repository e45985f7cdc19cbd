// Package export writes station scatter tables and stored summaries as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roman-kulish/scatter-prep/internal/normalize"
	"github.com/roman-kulish/scatter-prep/internal/station"
	"github.com/roman-kulish/scatter-prep/internal/storage"
)

const filteredSuffix = "_filtered"

var summaryHeader = []string{
	"line",
	"site",
	"device",
	"channel",
	"tag",
	"frequency",
	"current",
	"mean",
	"relative_error",
}

// FilteredPath returns the path edited samples of path are written to:
// "x.csv" becomes "x_filtered.csv".
func FilteredPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + filteredSuffix + ext
}

// WriteFiltered writes one "frequency,sample1,sample2,..." line per
// frequency of s, in file order.
func WriteFiltered(w io.Writer, s *station.Series) error {
	cw := csv.NewWriter(w)

	for _, e := range s.Entries() {
		row := make([]string, 0, len(e.Samples)+1)
		row = append(row, formatFloat(e.Frequency))
		for _, v := range e.Samples {
			row = append(row, formatFloat(v))
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", station.FormatFrequency(e.Frequency), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFilteredFile writes s next to its source file, see FilteredPath.
// The written path is returned.
func WriteFilteredFile(s *station.Series, sourcePath, dir string) (path string, err error) {
	path = FilteredPath(sourcePath)
	if dir != "" {
		path = filepath.Join(dir, filepath.Base(path))
	}

	fh, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating filtered file: %w", err)
	}
	defer closeWithError(fh, &err)

	if err = WriteFiltered(fh, s); err != nil {
		return "", fmt.Errorf("writing filtered file %s: %w", path, err)
	}
	return path, nil
}

// WriteSummary writes summaries as CSV with a header line. A missing
// current is written as an empty field.
func WriteSummary(w io.Writer, summaries []storage.Summary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range summaries {
		var current string
		if s.Current.Valid {
			current = formatFloat(s.Current.Float64)
		}

		row := []string{
			strconv.Itoa(s.Station.Line),
			strconv.Itoa(s.Station.Site),
			strconv.Itoa(s.Station.Device),
			strconv.Itoa(s.Station.Channel),
			s.Station.Tag,
			formatFloat(s.Frequency),
			current,
			formatFloat(s.Mean),
			formatFloat(s.RelativeError),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing summary of %s: %w", s.Station, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteComparison writes normalized curves side by side: a "frequency"
// column holding the shared axis, then one column per curve. A curve with
// no point at an axis frequency gets an empty field.
func WriteComparison(w io.Writer, cmp normalize.Comparison) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(cmp.Curves)+1)
	header = append(header, "frequency")

	columns := make([]map[float64]float64, len(cmp.Curves))
	for i, c := range cmp.Curves {
		header = append(header, c.Label)

		columns[i] = make(map[float64]float64, len(c.Points))
		for _, p := range c.Points {
			columns[i][p.Frequency] = p.Value
		}
	}

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, freq := range cmp.Axis {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(freq))
		for _, col := range columns {
			v, ok := col[freq]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatFloat(v))
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", station.FormatFrequency(freq), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

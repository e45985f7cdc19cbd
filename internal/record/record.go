// Package record parses the comma separated scatter files written by the
// receivers: one record per line, the first field is the frequency and the
// remaining fields are the repeated measurements taken at that frequency.
package record

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const maxLineSize = 4 << 20

var (
	// ErrMalformedFrequency is returned when the first field of a record is not a number
	ErrMalformedFrequency = errors.New("malformed frequency")

	// ErrMalformedSample is returned when one of the measurement fields is not a number
	ErrMalformedSample = errors.New("malformed sample")

	// ErrOutOfRange is returned when a requested line does not hold a record
	ErrOutOfRange = errors.New("line out of range")
)

// Record is one parsed line: a frequency and the samples measured at it.
type Record struct {
	Frequency float64
	Samples   []float64
}

// LineError attaches the zero based line index to a parse failure.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err.Error())
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// IsBlank reports whether line terminates a record stream.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Parse parses a single record line. Empty fields, including trailing ones
// left by a dangling comma, are skipped.
func Parse(line string) (Record, error) {
	var fields []string
	for _, f := range strings.Split(line, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return Record{}, fmt.Errorf("%w: empty record", ErrMalformedFrequency)
	}

	freq, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedFrequency, fields[0])
	}

	samples := make([]float64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %q", ErrMalformedSample, f)
		}
		samples = append(samples, v)
	}

	return Record{Frequency: freq, Samples: samples}, nil
}

// Scan reads records from r in order until the first blank line or the end
// of input. A blank line is a terminator, not an error.
func Scan(ctx context.Context, r io.Reader) ([]Record, error) {
	scanner := newScanner(r)

	var records []Record
	for line := 0; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := scanner.Text()
		if IsBlank(text) {
			break
		}

		rec, err := Parse(text)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	return records, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

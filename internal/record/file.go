package record

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a read-only handle on a record file on disk. It holds no open
// descriptor: every read re-opens the file, so a File can be shared by any
// number of goroutines and always reflects what is on disk, never in-memory
// edits made to data loaded from it.
type File struct {
	path string
}

// NewFile returns a File for path. The file is not opened until read.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the path the File reads from.
func (f *File) Path() string {
	return f.path
}

// Name returns the base name of the file without its extension.
func (f *File) Name() string {
	base := filepath.Base(f.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadAll reads every record up to the first blank line.
func (f *File) ReadAll(ctx context.Context) (records []Record, err error) {
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.path, err)
	}
	defer closeWithError(fh, &err)

	return Scan(ctx, fh)
}

// ReadRecordAtLine re-reads the file, skips lineIndex lines and parses the
// next one. Records carry no explicit line numbers, so the caller must know
// which index belongs to which frequency (the file order seen at load time).
func (f *File) ReadRecordAtLine(ctx context.Context, lineIndex int) (rec Record, err error) {
	if lineIndex < 0 {
		return Record{}, fmt.Errorf("%w: negative index %d", ErrOutOfRange, lineIndex)
	}
	if err = ctx.Err(); err != nil {
		return Record{}, err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return Record{}, fmt.Errorf("opening %s: %w", f.path, err)
	}
	defer closeWithError(fh, &err)

	scanner := newScanner(fh)
	for line := 0; scanner.Scan(); line++ {
		if line < lineIndex {
			continue
		}

		text := scanner.Text()
		if IsBlank(text) {
			return Record{}, fmt.Errorf("%w: line %d is blank", ErrOutOfRange, lineIndex)
		}

		if rec, err = Parse(text); err != nil {
			return Record{}, &LineError{Line: line, Err: err}
		}
		return rec, nil
	}
	if err = scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", f.path, err)
	}

	return Record{}, fmt.Errorf("%w: %s has fewer than %d lines", ErrOutOfRange, f.path, lineIndex+1)
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

package storage

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/roman-kulish/scatter-prep/internal/normalize"
	"github.com/roman-kulish/scatter-prep/internal/station"
)

// ErrNoCurrents is returned when no transmitter currents are available
var ErrNoCurrents = errors.New("no transmitter currents")

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a new store backed by the Sqlite database at
// dbPath. Connections are opened, and the schema initialized, on first use.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // single writer

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

// getReadDB opens the read-only connection once the schema is in place.
func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	if _, err := s.getWriteDB(); err != nil {
		return nil, err
	}

	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) ImportCurrents(ctx context.Context, currents []Current) (err error) {
	if len(currents) == 0 {
		return fmt.Errorf("importing currents: %w", ErrNoCurrents)
	}

	sorted := slices.Clone(currents)
	slices.SortFunc(sorted, func(a, b Current) int {
		return cmp.Compare(a.Frequency, b.Frequency)
	})
	for i := 1; i < len(sorted); i++ {
		if freqEqual(sorted[i].Frequency, sorted[i-1].Frequency) {
			return fmt.Errorf("importing currents: %w: %g", station.ErrDuplicateFrequency, sorted[i].Frequency)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	if _, err = tx.ExecContext(ctx, deleteCurrentsSQL); err != nil {
		return fmt.Errorf("deleting currents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertCurrentSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, c := range sorted {
		if _, err = stmt.ExecContext(ctx, c.Frequency, c.Current); err != nil {
			return fmt.Errorf("inserting current: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SqliteStore) Currents(ctx context.Context) (currents []Current, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectCurrentsSQL)
	if err != nil {
		err = fmt.Errorf("querying currents: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var c Current
		if err = rows.Scan(&c.Frequency, &c.Current); err != nil {
			err = fmt.Errorf("scanning current: %w", err)
			return
		}
		currents = append(currents, c)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating currents: %w", err)
	}
	return
}

func (s *SqliteStore) CurrentLookup(ctx context.Context) (normalize.CurrentLookup, error) {
	currents, err := s.Currents(ctx)
	if err != nil {
		return nil, err
	}
	if len(currents) == 0 {
		return nil, ErrNoCurrents
	}

	return func(freq float64) (float64, bool) {
		i, ok := slices.BinarySearchFunc(currents, freq, func(c Current, target float64) int {
			return freqCompare(c.Frequency, target)
		})
		if !ok {
			return 0, false
		}
		return currents[i].Current, true
	}, nil
}

func (s *SqliteStore) StoreStation(ctx context.Context, series *station.Series) (err error) {
	entries := series.Entries()
	if len(entries) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, upsertStationStatsSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	id := series.ID()
	for _, e := range entries {
		_, err = stmt.ExecContext(
			ctx,
			id.Line,
			id.Site,
			id.Device,
			id.Channel,
			id.Tag,
			e.Frequency,
			len(e.Samples),
			toNullFloat64(e.Stats.Mean),
			toNullFloat64(e.Stats.RelativeRMSError),
		)
		if err != nil {
			return fmt.Errorf("storing %s at %s: %w", id, station.FormatFrequency(e.Frequency), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SqliteStore) Summaries(ctx context.Context) (summaries []Summary, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSummariesSQL)
	if err != nil {
		err = fmt.Errorf("querying summaries: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var d stationStatsData
		if err = rows.Scan(
			&d.Line,
			&d.Site,
			&d.Device,
			&d.Channel,
			&d.Tag,
			&d.Frequency,
			&d.Samples,
			&d.Current,
			&d.Mean,
			&d.RelativeError,
		); err != nil {
			err = fmt.Errorf("scanning summary: %w", err)
			return
		}
		summaries = append(summaries, toSummary(&d))
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating summaries: %w", err)
	}
	return
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}

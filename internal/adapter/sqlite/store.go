// Package sqlite persists the cleaned table and the exclusion subsets into
// an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"

	_ "modernc.org/sqlite"
)

const timestampLayout = "2006-01-02T15:04:05"

// Store implements pipeline.Loader. Every Load replaces the previous run's
// rows in a single transaction.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.initDB(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initDB(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sightings (
			id INTEGER PRIMARY KEY,
			date_time TEXT NOT NULL,
			duration_seconds REAL NOT NULL,
			shape TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT,
			country TEXT,
			summary TEXT NOT NULL,
			mufon_report INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sightings table: %w", err)
	}

	for _, sub := range (domain.Dataset{}).Subsets() {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY,
				date_time TEXT NOT NULL,
				city TEXT NOT NULL,
				state TEXT NOT NULL,
				shape TEXT NOT NULL,
				duration TEXT NOT NULL,
				summary TEXT NOT NULL,
				posted TEXT NOT NULL,
				source TEXT NOT NULL
			)
		`, sub.Name))
		if err != nil {
			return fmt.Errorf("failed to create %s table: %w", sub.Name, err)
		}
	}

	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_sightings_date_time ON sightings(date_time)`)
	if err != nil {
		return fmt.Errorf("failed to create sightings index: %w", err)
	}
	return nil
}

// Load replaces the contents of every table with ds. Subset tables hold the
// raw records as scraped.
func (s *Store) Load(ctx context.Context, ds domain.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertSightings(ctx, tx, ds.Records); err != nil {
		return err
	}
	for _, sub := range ds.Subsets() {
		if err := insertSubset(ctx, tx, sub); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("sqlite tables replaced",
		"sightings", len(ds.Records),
		"annotated", len(ds.Annotated),
		"hoaxes", len(ds.Hoaxes),
		"madar", len(ds.Madar),
	)
	return nil
}

func insertSightings(ctx context.Context, tx *sql.Tx, records []domain.CleanRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM sightings`); err != nil {
		return fmt.Errorf("failed to clear sightings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sightings
		(id, date_time, duration_seconds, shape, city, state, country, summary, mufon_report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sightings insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			i+1,
			r.Timestamp.Format(timestampLayout),
			r.DurationSeconds,
			r.Shape,
			r.City,
			nullable(r.State),
			nullable(r.Country),
			r.Summary,
			r.MUFONReport,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sighting %d: %w", i+1, err)
		}
	}
	return nil
}

func insertSubset(ctx context.Context, tx *sql.Tx, sub domain.NamedSubset) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, sub.Name)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", sub.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s
		(id, date_time, city, state, shape, duration, summary, posted, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, sub.Name))
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", sub.Name, err)
	}
	defer stmt.Close()

	for i, s := range sub.Sightings {
		r := s.Raw
		_, err := stmt.ExecContext(ctx, i+1, r.DateTime, r.City, r.State, r.Shape, r.Duration, r.Summary, r.Posted, r.Source)
		if err != nil {
			return fmt.Errorf("failed to insert %s row %d: %w", sub.Name, i+1, err)
		}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Package database writes scan results to a queryable SQLite file.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mfdiff/internal/database/migrations"
	"mfdiff/internal/mfdiff"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Run describes one scan for the runs table.
type Run struct {
	ID        string
	Template  string
	StartedAt time.Time
	MaxDepth  int
}

// StoredRecord is a file_records row joined with its identity.
type StoredRecord struct {
	Identity string
	mfdiff.FileRecord
}

// SQLiteDatabase holds scan results in the report schema.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens path (or ":memory:") and migrates it to the latest
// schema.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens a SQLite connection with foreign keys enforced.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each pooled connection to ":memory:" would see its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// WriteGrouping stores one scan in a single transaction.
func (s *SQLiteDatabase) WriteGrouping(ctx context.Context, run Run, g *mfdiff.Grouping) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, template, started_at, max_depth, record_count) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.Template, run.StartedAt, run.MaxDepth, g.RecordCount())
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	insertPeriod, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO periods (run_id, period, label, skipped, root) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing period insert: %w", err)
	}
	defer insertPeriod.Close()

	for _, p := range g.Periods() {
		if _, err := insertPeriod.ExecContext(ctx, run.ID, p.String(), p.Label(), false, ""); err != nil {
			return fmt.Errorf("inserting period %s: %w", p, err)
		}
	}
	for _, sp := range g.Skipped() {
		if _, err := insertPeriod.ExecContext(ctx, run.ID, sp.Period.String(), sp.Period.Label(), true, sp.Root); err != nil {
			return fmt.Errorf("inserting skipped period %s: %w", sp.Period, err)
		}
	}

	insertRecord, err := tx.PrepareContext(ctx, `INSERT INTO file_records
		(identity_id, period, period_label, actual_name, relative_path, size, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer insertRecord.Close()

	for identity, records := range g.All() {
		res, err := tx.ExecContext(ctx, "INSERT INTO identities (run_id, identity) VALUES (?, ?)", run.ID, identity)
		if err != nil {
			return fmt.Errorf("inserting identity %q: %w", identity, err)
		}
		identityID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading identity id: %w", err)
		}

		for _, r := range records {
			_, err := insertRecord.ExecContext(ctx, identityID, r.Period.String(), r.PeriodLabel,
				r.ActualName, r.RelativePath, r.Size, r.Created, r.Modified)
			if err != nil {
				return fmt.Errorf("inserting record %s: %w", r.RelativePath, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Identities returns the identities recorded for a run in key order.
func (s *SQLiteDatabase) Identities(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT identity FROM identities WHERE run_id = ? ORDER BY identity", runID)
	if err != nil {
		return nil, fmt.Errorf("listing identities: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// History returns the records of one identity ordered by period.
func (s *SQLiteDatabase) History(ctx context.Context, runID, identity string) ([]StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT i.identity, r.period, r.period_label, r.actual_name,
			r.relative_path, r.size, r.created_at, r.modified_at
		FROM file_records r JOIN identities i ON i.id = r.identity_id
		WHERE i.run_id = ? AND i.identity = ?
		ORDER BY r.period, r.relative_path`, runID, identity)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var (
			rec    StoredRecord
			period string
		)
		err := rows.Scan(&rec.Identity, &period, &rec.PeriodLabel, &rec.ActualName,
			&rec.RelativePath, &rec.Size, &rec.Created, &rec.Modified)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if rec.Period, err = parsePeriod(period); err != nil {
			return nil, err
		}
		rec.NormalizedIdentity = rec.Identity
		out = append(out, rec)
	}
	return out, rows.Err()
}

func parsePeriod(s string) (mfdiff.Period, error) {
	ps := mfdiff.ParsePeriodList(s)
	if len(ps) != 1 {
		return mfdiff.Period{}, fmt.Errorf("stored period %q is malformed", s)
	}
	return ps[0], nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo writes a complete copy of the database to destPath using VACUUM INTO.
// destPath must not exist.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

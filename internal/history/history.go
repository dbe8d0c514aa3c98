// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records finished batches in a SQLite database so past
// runs and their failures can be listed later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docpdf/internal/batch"
	"github.com/pdiddy/docpdf/pkg/types"
)

// DefaultLimit is the number of batches List returns when limit is not
// positive.
const DefaultLimit = 20

// Store is the history database.
type Store struct {
	db *sql.DB
}

// Record is one batch as stored in the history.
type Record struct {
	BatchID   string
	Started   time.Time
	Finished  time.Time
	Total     int
	Succeeded int
	Failed    int
	Results   []types.ConversionResult
}

// Failures returns the failed results of the batch.
func (r Record) Failures() []types.ConversionResult {
	var out []types.ConversionResult
	for _, res := range r.Results {
		if !res.Succeeded() {
			out = append(out, res)
		}
	}
	return out
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			started TEXT NOT NULL,
			finished TEXT NOT NULL,
			total INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			source TEXT NOT NULL,
			output TEXT,
			kind TEXT,
			op TEXT,
			message TEXT,
			PRIMARY KEY (batch_id, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_started ON batches(started)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores a finished batch. Saving the same batch ID again replaces the
// earlier record.
func (s *Store) Save(ctx context.Context, sum batch.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE batch_id = ?`, sum.BatchID); err != nil {
		return fmt.Errorf("clearing results of %s: %w", sum.BatchID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO batches (id, started, finished, total, succeeded, failed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sum.BatchID,
		sum.Started.UTC().Format(time.RFC3339Nano),
		sum.Finished.UTC().Format(time.RFC3339Nano),
		len(sum.Results), sum.Succeeded(), sum.Failed(),
	); err != nil {
		return fmt.Errorf("inserting batch %s: %w", sum.BatchID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (batch_id, idx, source, output, kind, op, message) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range sum.Results {
		var kind, op, message string
		if r.Err != nil {
			kind, op, message = string(r.Err.Kind), r.Err.Op, r.Err.Message
		}
		if _, err := stmt.ExecContext(ctx, sum.BatchID, r.Index, r.SourcePath, r.OutputPath, kind, op, message); err != nil {
			return fmt.Errorf("inserting result %d of %s: %w", r.Index, sum.BatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch %s: %w", sum.BatchID, err)
	}
	return nil
}

// List returns the most recent batches, newest first, with their results.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started, finished, total, succeeded, failed
		 FROM batches ORDER BY started DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var started, finished string
		if err := rows.Scan(&r.BatchID, &started, &finished, &r.Total, &r.Succeeded, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		r.Started, _ = time.Parse(time.RFC3339Nano, started)
		r.Finished, _ = time.Parse(time.RFC3339Nano, finished)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batches: %w", err)
	}
	rows.Close()

	for i := range records {
		results, err := s.results(ctx, records[i].BatchID)
		if err != nil {
			return nil, err
		}
		records[i].Results = results
	}
	return records, nil
}

func (s *Store) results(ctx context.Context, batchID string) ([]types.ConversionResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, source, COALESCE(output, ''), COALESCE(kind, ''), COALESCE(op, ''), COALESCE(message, '')
		 FROM results WHERE batch_id = ? ORDER BY idx`, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying results of %s: %w", batchID, err)
	}
	defer rows.Close()

	var out []types.ConversionResult
	for rows.Next() {
		var r types.ConversionResult
		var kind, op, message string
		if err := rows.Scan(&r.Index, &r.SourcePath, &r.OutputPath, &kind, &op, &message); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if kind != "" {
			r.OutputPath = ""
			r.Err = &types.JobError{
				Kind:       types.ErrorKind(kind),
				Op:         op,
				SourcePath: r.SourcePath,
				Message:    message,
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

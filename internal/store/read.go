package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/searchc/internal/ir"
)

// ErrRunNotFound is returned when a run ID (or the latest run) does not exist.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, specs_dir, default_size, seq, created_at`

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// LatestRun returns the run with the highest seq.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs in seq order. Returns an empty slice, not nil,
// when the log is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadCompilations returns the compilations of a run in the order they
// were written.
func (s *Store) ReadCompilations(ctx context.Context, runID string) ([]Compilation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, query_name, fingerprint, request, seq
		FROM compilations
		WHERE run_id = ?
		ORDER BY seq ASC, query_name COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	defer rows.Close()

	out := []Compilation{}
	for rows.Next() {
		var (
			c    Compilation
			body string
		)
		if err := rows.Scan(&c.RunID, &c.QueryName, &c.Fingerprint, &body, &c.Seq); err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		v, err := ir.ParseValue([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("decode compilation %q: %w", c.QueryName, err)
		}
		obj, ok := v.(ir.Object)
		if !ok {
			return nil, fmt.Errorf("decode compilation %q: request is %T, want object", c.QueryName, v)
		}
		c.Request = obj
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run  Run
		size sql.NullInt64
	)
	if err := row.Scan(&run.ID, &run.SpecsDir, &size, &run.Seq, &run.CreatedAt); err != nil {
		return Run{}, err
	}
	if size.Valid {
		n := int(size.Int64)
		run.DefaultSize = &n
	}
	return run, nil
}

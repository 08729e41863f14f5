package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/searchc/internal/ir"
)

// Run is one pass of the compiler over a definitions directory.
type Run struct {
	ID          string
	SpecsDir    string
	DefaultSize *int // nil when the run compiled without a page size
	Seq         int64
	CreatedAt   string
}

// Compilation is one compiled request inside a run.
type Compilation struct {
	RunID       string
	QueryName   string
	Fingerprint string
	Request     ir.Object
	Seq         int64
}

// NewRunID returns a time-ordered run identifier (UUIDv7).
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BeginRun records a new run and returns it with its ID and seq assigned.
func (s *Store) BeginRun(ctx context.Context, specsDir string, defaultSize *int) (Run, error) {
	run := Run{ID: NewRunID(), SpecsDir: specsDir, DefaultSize: defaultSize}

	var size sql.NullInt64
	if defaultSize != nil {
		size = sql.NullInt64{Int64: int64(*defaultSize), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO runs (id, specs_dir, default_size, seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs))
		RETURNING seq, created_at
	`, run.ID, run.SpecsDir, size).Scan(&run.Seq, &run.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// WriteCompilation records a compiled request. The fingerprint is computed
// from the request when empty. Writing the same (run, query) twice is a
// no-op so an interrupted run can be resumed.
func (s *Store) WriteCompilation(ctx context.Context, c Compilation) error {
	if c.RunID == "" || c.QueryName == "" {
		return errors.New("write compilation: run id and query name are required")
	}
	if c.Request == nil {
		return fmt.Errorf("write compilation %q: nil request", c.QueryName)
	}

	body, err := ir.MarshalCanonical(c.Request)
	if err != nil {
		return fmt.Errorf("write compilation %q: %w", c.QueryName, err)
	}
	fp := c.Fingerprint
	if fp == "" {
		if fp, err = ir.RequestFingerprint(c.Request); err != nil {
			return fmt.Errorf("write compilation %q: %w", c.QueryName, err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compilations (run_id, query_name, fingerprint, request, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM compilations WHERE run_id = ?))
		ON CONFLICT(run_id, query_name) DO NOTHING
	`, c.RunID, c.QueryName, fp, string(body), c.RunID)
	if err != nil {
		return fmt.Errorf("write compilation %q: %w", c.QueryName, err)
	}
	return nil
}

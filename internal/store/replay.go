package store

import (
	"context"
	"fmt"

	"github.com/roach88/searchc/internal/ir"
)

// RecompileFunc compiles the named query again and returns its rendered
// request.
type RecompileFunc func(ctx context.Context, queryName string) (ir.Object, error)

// Mismatch describes a query whose recompiled request differs from the
// logged one. Err is set when recompilation itself failed.
type Mismatch struct {
	QueryName string
	Stored    string
	Replayed  string
	Err       error
}

// ReplayResult summarizes a replay of one run.
type ReplayResult struct {
	Run        Run
	Checked    int
	Mismatches []Mismatch
}

// Deterministic reports whether every logged request was reproduced.
func (r ReplayResult) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// Replay recompiles every query logged in the run and compares request
// fingerprints. A recompile error is recorded as a mismatch rather than
// aborting, so one broken query does not hide the others.
func (s *Store) Replay(ctx context.Context, runID string, recompile RecompileFunc) (ReplayResult, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	logged, err := s.ReadCompilations(ctx, runID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", runID, err)
	}

	result := ReplayResult{Run: run, Mismatches: []Mismatch{}}
	for _, c := range logged {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		req, err := recompile(ctx, c.QueryName)
		if err != nil {
			result.Mismatches = append(result.Mismatches, Mismatch{QueryName: c.QueryName, Stored: c.Fingerprint, Err: err})
			continue
		}
		fp, err := ir.RequestFingerprint(req)
		if err != nil {
			result.Mismatches = append(result.Mismatches, Mismatch{QueryName: c.QueryName, Stored: c.Fingerprint, Err: err})
			continue
		}
		if fp != c.Fingerprint {
			result.Mismatches = append(result.Mismatches, Mismatch{QueryName: c.QueryName, Stored: c.Fingerprint, Replayed: fp})
		}
	}
	return result, nil
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/searchc/internal/ir"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// beginTestRun records a run with no default size.
func beginTestRun(t *testing.T, s *Store) Run {
	t.Helper()
	run, err := s.BeginRun(context.Background(), "specs", nil)
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	return run
}

// testRequest is a small rendered request whose size varies with n.
func testRequest(n int) ir.Object {
	return ir.Object{
		"query": ir.Object{"term": ir.Object{"tag": ir.Object{"value": ir.String("go")}}},
		"size":  ir.Int(n),
		"sort":  ir.Array{ir.Object{"_doc": ir.Object{"order": ir.String("asc")}}},
	}
}

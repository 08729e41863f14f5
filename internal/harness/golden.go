package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/searchc/internal/ir"
)

// Snapshot returns the canonical JSON recorded in a scenario's golden
// file.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	if result.Request == nil {
		return nil, fmt.Errorf("scenario %s has no request to snapshot", scenario.Name)
	}
	return ir.MarshalCanonical(ir.Object{
		"scenario":    ir.String(scenario.Name),
		"fingerprint": ir.String(result.Fingerprint),
		"request":     result.Request,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	data, err := Snapshot(scenario, result)
	if err != nil {
		return result, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}

// GoldenPath returns the golden file next to a scenario file:
// <dir>/golden/<base>.golden.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// CompareGolden reports whether the snapshot matches the golden file at
// path. A missing golden file is reported through os.ErrNotExist.
func CompareGolden(path string, scenario *Scenario, result *Result) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	got, err := Snapshot(scenario, result)
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, got), nil
}

// UpdateGolden writes the snapshot to the golden file at path.
func UpdateGolden(path string, scenario *Scenario, result *Result) error {
	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

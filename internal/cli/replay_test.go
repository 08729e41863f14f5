package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replayResponse struct {
	Status string       `json:"status"`
	Data   ReplayReport `json:"data"`
}

func TestReplay_Deterministic(t *testing.T) {
	db := filepath.Join(t.TempDir(), "searchc.db")
	_, err := execute(t, "compile", testDefsDir, "--size", "10", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "replay", testDefsDir, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "3 query(s) checked")
	assert.Contains(t, out, "✓ All requests reproduced")
}

func TestReplay_DetectsDrift(t *testing.T) {
	dir := copyDefs(t)
	db := filepath.Join(t.TempDir(), "searchc.db")
	_, err := execute(t, "compile", dir, "--db", db)
	require.NoError(t, err)

	path := filepath.Join(dir, "library.cue")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	changed := strings.Replace(string(data), `value: "go"`, `value: "rust"`, 1)
	require.NotEqual(t, string(data), changed)
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o644))

	out, err := execute(t, "replay", dir, "--db", db, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp replayResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.Data.Checked)
	assert.False(t, resp.Data.Deterministic)
	require.Len(t, resp.Data.Mismatches, 1)
	assert.Equal(t, "recent", resp.Data.Mismatches[0].Query)
	assert.NotEqual(t, resp.Data.Mismatches[0].Stored, resp.Data.Mismatches[0].Replayed)
}

func TestReplay_UsesRunSize(t *testing.T) {
	db := filepath.Join(t.TempDir(), "searchc.db")
	out, err := execute(t, "compile", testDefsDir, "--query", "recent", "--size", "10", "--db", db, "--format", "json")
	require.NoError(t, err)
	var compiled compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &compiled))

	// A different default size must not leak into the replay.
	cfg := filepath.Join(t.TempDir(), "searchc.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("default_size = 1\n"), 0o644))

	out, err = execute(t, "replay", testDefsDir, "--db", db, "--run", compiled.Data.RunID, "--config", cfg, "--format", "json")
	require.NoError(t, err)
	var resp replayResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, compiled.Data.RunID, resp.Data.RunID)
	assert.True(t, resp.Data.Deterministic)
}

func TestReplay_QueryRemoved(t *testing.T) {
	dir := copyDefs(t)
	db := filepath.Join(t.TempDir(), "searchc.db")
	_, err := execute(t, "compile", dir, "--query", "tag_counts", "--db", db)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.cue"), []byte(`package library

fields: tag: {type: "keyword"}

query: other: {select: ["tag"]}
`), 0o644))

	out, err := execute(t, "replay", dir, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `✗ tag_counts: query "tag_counts" not found`)
}

func TestReplay_Errors(t *testing.T) {
	emptyDB := filepath.Join(t.TempDir(), "empty.db")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no database", []string{"replay", testDefsDir}, "Error [E008]"},
		{"no runs", []string{"replay", testDefsDir, "--db", emptyDB}, "no runs recorded"},
		{"unknown run", []string{"replay", testDefsDir, "--db", emptyDB, "--run", "missing"}, "Error [E009]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}

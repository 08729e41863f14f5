package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

type testResponse struct {
	Status string     `json:"status"`
	Data   TestResult `json:"data"`
	Error  *CLIError  `json:"error"`
}

// writeScenario writes a scenario for the test definitions into a temp dir.
func writeScenario(t *testing.T, name, body string) string {
	t.Helper()
	specs, err := filepath.Abs(testDefsDir)
	require.NoError(t, err)
	dir := t.TempDir()
	content := "name: " + name + "\ndescription: cli test\nspecs: " + specs + "\n" + body
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTest_Directory(t *testing.T) {
	out, err := execute(t, "test", harnessScenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ recent")
	assert.Contains(t, out, "✓ invalid_retrieval")
	assert.Contains(t, out, "Test Summary: 6 passed, 0 failed, 6 total")
}

func TestTest_JSONAndFilter(t *testing.T) {
	out, err := execute(t, "test", harnessScenarios, "--filter", "tag_*", "--format", "json")
	require.NoError(t, err)

	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "tag_counts", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.Len(t, resp.Data.Scenarios[0].Fingerprint, 64)
}

func TestTest_SingleFile(t *testing.T) {
	out, err := execute(t, "test", filepath.Join(harnessScenarios, "recent.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTest_FailingAssertion(t *testing.T) {
	path := writeScenario(t, "wrong_size", `query: recent
size: 10
assertions:
  - type: equals
    path: /size
    value: 10
`)
	out, err := execute(t, "test", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "Actual: 5")
}

func TestTest_UpdateAndCompareGolden(t *testing.T) {
	path := writeScenario(t, "recent", `query: recent
size: 10
assertions:
  - type: exists
    path: /query
`)
	golden := filepath.Join(filepath.Dir(path), "golden", "recent.golden")

	out, err := execute(t, "test", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ recent (golden updated)")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), recentFingerprint)

	_, err = execute(t, "test", path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{"stale":true}`), 0o644))
	out, err = execute(t, "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTest_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := execute(t, "test", "/nonexistent/scenarios")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("empty directory", func(t *testing.T) {
		out, err := execute(t, "test", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, out, "No scenarios found.")
	})

	t.Run("bad scenario", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: broken\nunknown_key: 1\n"), 0o644))
		out, err := execute(t, "test", path)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "failed to load scenario")
	})
}

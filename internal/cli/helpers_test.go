package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testDefsDir = "testdata/defs"

// recentFingerprint is the request fingerprint of query "recent" compiled
// with size 10.
const recentFingerprint = "ae79264bd81d6364152adcb087d4d7a61174b6db191442795d00703975610638"

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// copyDefs copies the test definitions into a temp dir.
func copyDefs(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testDefsDir, "library.cue"))
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.cue"), data, 0o644))
	return dir
}

// writeDefs writes a one-file definitions package into a temp dir.
func writeDefs(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.cue"), []byte("package test\n\n"+body), 0o644))
	return dir
}

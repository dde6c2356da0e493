package beancheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	beanerrors "github.com/beanwalk/beanwalk/pkgs/errors"
)

func TestParseOutput(t *testing.T) {
	out := []byte(`[{"file": "/j/main.bean", "line": 4, "message": "Unknown account"}]
[{"file": "/j/main.bean", "line": 9, "message": "Flagged Entry"}]
`)
	diags, err := parseOutput(out)
	require.NoError(t, err)

	require.Len(t, diags, 2)
	assert.Equal(t, "/j/main.bean", diags[0].Pos.Filename)
	assert.Equal(t, 4, diags[0].Pos.Line)
	assert.Equal(t, "Unknown account", diags[0].Message)
	assert.Equal(t, "Flagged Entry", diags[1].Message)
}

func TestParseOutputEmpty(t *testing.T) {
	diags, err := parseOutput([]byte("[]\n[]\n"))
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestParseOutputGarbage(t *testing.T) {
	_, err := parseOutput([]byte("not json\n"))
	assert.Error(t, err)
}

// fakeChecker writes a script that mimics a bean-check wrapper: JSON
// error list and flagged list on stdout, non-zero exit when errors
// exist (as the real checker does).
func fakeChecker(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-bean-check")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestCommandLoad(t *testing.T) {
	path := fakeChecker(t, `echo '[{"file": "main.bean", "line": 2, "message": "boom"}]'
echo '[]'
exit 1`)

	cmd := NewCommand(path, nil, nil)
	result, err := cmd.Load(context.Background(), "main.bean")

	require.NoError(t, err, "non-zero exit with parseable output is not an error")
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "boom", result.Diagnostics[0].Message)
	assert.Equal(t, 2, result.Diagnostics[0].Pos.Line)
	assert.Empty(t, result.Entries)
}

func TestCommandLoadCleanJournal(t *testing.T) {
	path := fakeChecker(t, `echo '[]'
echo '[]'`)

	cmd := NewCommand(path, nil, nil)
	result, err := cmd.Load(context.Background(), "main.bean")

	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
}

func TestCommandLoadMissingBinary(t *testing.T) {
	cmd := NewCommand("/nonexistent/bean-check", nil, nil)
	_, err := cmd.Load(context.Background(), "main.bean")

	require.Error(t, err)
	assert.True(t, beanerrors.IsErrorType(err, beanerrors.ErrCheckerExec))
}

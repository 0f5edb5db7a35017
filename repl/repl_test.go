// Copyright © 2018 The ELPS authors

package repl

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/luthersystems/reval/diagnostic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runReplWithString(t *testing.T, input string, opts ...Option) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		defer inW.Close() //nolint:errcheck // test cleanup
		_, _ = io.WriteString(inW, input)
	}()

	go func() {
		opts = append([]Option{WithStdin(inR), WithStderr(outW), WithColor(diagnostic.ColorNever)}, opts...)
		RunRepl("reval> ", opts...)
		inR.Close()  //nolint:errcheck,gosec // test cleanup
		outW.Close() //nolint:errcheck,gosec // test cleanup
	}()

	var output bytes.Buffer
	_, _ = io.Copy(&output, outR)
	outR.Close() //nolint:errcheck,gosec // test cleanup

	return output.String()
}

func TestEnsureHistoryFilePermissions_CreatesWithRestrictedMode(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".reval_history")

	// File does not exist yet.
	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err, "history file should be created")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "new history file should have mode 0600")
}

func TestEnsureHistoryFilePermissions_RestrictsExistingFile(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".reval_history")

	// Create the file with overly permissive mode.
	err := os.WriteFile(histFile, []byte("some history"), 0644) //nolint:gosec // test fixture
	require.NoError(t, err)

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "existing history file should be restricted to 0600")

	// Verify contents are preserved.
	data, err := os.ReadFile(histFile) //nolint:gosec // test fixture
	require.NoError(t, err)
	assert.Equal(t, "some history", string(data))
}

func TestEnsureHistoryFilePermissions_EmptyPathNoOp(t *testing.T) {
	// Should not panic or error with empty path.
	ensureHistoryFilePermissions("")
}

func TestRunRepl(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Simple Addition",
			input:    "1 + 1\n",
			expected: []string{"== 2\n"},
		},
		{
			name:     "Error",
			input:    "fnord\n",
			expected: []string{"error[no-value]", "use help to browse available words"},
		},
		{
			name:     "Continuation",
			input:    "reduce [1\n2 + 3]\n",
			expected: []string{"== [1 5]\n"},
		},
		{
			name:     "Invisible",
			input:    "print \"hi\"\n",
			expected: []string{"hi\n"},
		},
		{
			name:     "Pause",
			input:    "f: func [] [pause 5]\nf\nbacktrace/quiet/brief\nresume\n",
			expected: []string{"paused; enter resume to continue", "== [f pause]\n", "== 5\n"},
		},
		{
			name:     "Uncaught Throw",
			input:    "throw 1\n",
			expected: []string{"error[no-catch]"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := runReplWithString(t, tc.input)
			for _, expected := range tc.expected {
				require.Contains(t, got, expected)
			}
		})
	}
}

func TestRunReplYAMLErrors(t *testing.T) {
	got := runReplWithString(t, "fnord\n", WithErrorFormat(diagnostic.FormatYAML))
	assert.Contains(t, got, "condition: no-value")
	assert.NotContains(t, got, "use help")
}

package subproc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700))
	return path
}

func TestRunCapturesStdoutAndStderr(t *testing.T) {
	script := writeScript(t, `echo hello; echo diag >&2`)

	out, err := Run(context.Background(), Options{}, "sh", script)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out.Stdout))
	assert.Equal(t, "diag", out.Stderr)
	assert.False(t, out.TimedOut)
	assert.False(t, out.TooLarge)
	assert.NoError(t, out.ExitErr)
}

func TestRunNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo oops >&2; exit 3`)

	out, err := Run(context.Background(), Options{}, "sh", script)
	require.NoError(t, err)
	assert.Error(t, out.ExitErr)
	assert.Equal(t, "oops", out.Stderr)
}

func TestRunTimeout(t *testing.T) {
	script := writeScript(t, `sleep 5`)

	start := time.Now()
	out, err := Run(context.Background(), Options{Timeout: 100 * time.Millisecond}, "sh", script)
	require.NoError(t, err)
	assert.True(t, out.TimedOut)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunStderrWrittenAfterStdoutCloses(t *testing.T) {
	// A process may close stdout first and only then print its failure
	// diagnostics; they must still be captured.
	script := writeScript(t, `exec 1>&-
sleep 0.3
echo 'late diagnostic' >&2
exit 1`)

	out, err := Run(context.Background(), Options{}, "sh", script)
	require.NoError(t, err)
	assert.Empty(t, out.Stdout)
	assert.Equal(t, "late diagnostic", out.Stderr)
	assert.Error(t, out.ExitErr)
}

func TestRunOutputCap(t *testing.T) {
	// ~8KiB of output against a 1KiB cap
	script := writeScript(t, `i=0; while [ $i -lt 512 ]; do printf '0123456789abcdef'; i=$((i+1)); done`)

	out, err := Run(context.Background(), Options{MaxOutput: 1024}, "sh", script)
	require.NoError(t, err)
	assert.True(t, out.TooLarge)
	assert.Empty(t, out.Stdout)
}

func TestRunStartFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{}, "/nonexistent/binary-xyz")
	assert.Error(t, err)
}

package score

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch-engine/internal/artifact"
)

func scriptInvoker(t *testing.T, body string) *PythonInvoker {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recommender.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700))
	return &PythonInvoker{Python: "sh", Script: path, Timeout: 10 * time.Second}
}

func stagedHandles(t *testing.T) (analysis, jobs artifact.Handle) {
	t.Helper()
	dir := t.TempDir()
	a := filepath.Join(dir, "analysis.json")
	j := filepath.Join(dir, "jobs.json")
	require.NoError(t, os.WriteFile(a, []byte(`{"skills":["go"]}`), 0o600))
	require.NoError(t, os.WriteFile(j, []byte(`[{"id":1}]`), 0o600))
	return artifact.Handle{Name: "analysis", Path: a}, artifact.Handle{Name: "jobs", Path: j}
}

func TestInvokeSuccess(t *testing.T) {
	inv := scriptInvoker(t, `cat <<'EOF'
{"success":true,"total_jobs":3,"recommended_jobs":1,
 "recommendations":[{"id":2,"match_score":87.5,"recommendation_reasons":["skills overlap"]}]}
EOF`)
	a, j := stagedHandles(t)

	res, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, int64(2), res.Recommendations[0].ID)
	assert.Equal(t, 87.5, res.Recommendations[0].MatchScore)
	assert.Equal(t, []string{"skills overlap"}, res.Recommendations[0].Reasons)
}

func TestInvokePassesFiltersArgWhenStaged(t *testing.T) {
	// The script reports how many file arguments it received.
	inv := scriptInvoker(t, `echo "{\"success\":true,\"total_jobs\":$#}"`)
	a, j := stagedHandles(t)

	res, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalJobs)

	f := artifact.Handle{Name: "filters", Path: filepath.Join(t.TempDir(), "filters.json")}
	require.NoError(t, os.WriteFile(f.Path, []byte(`{"location":"berlin"}`), 0o600))

	res, err = inv.Invoke(context.Background(), a, j, f)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalJobs)
}

func TestInvokeStderrIgnoredWhenResultParses(t *testing.T) {
	inv := scriptInvoker(t, `echo "warning: slow model" >&2
echo '{"success":true}'`)
	a, j := stagedHandles(t)

	res, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestInvokeStderrOnlyIsProcessFailure(t *testing.T) {
	inv := scriptInvoker(t, `echo "Traceback: boom" >&2`)
	a, j := stagedHandles(t)

	_, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	require.Error(t, err)
	assert.Equal(t, KindProcessFailure, KindOf(err))
	assert.Contains(t, err.Error(), "Traceback: boom")
}

func TestInvokeStderrAfterStdoutCloseIsSurfaced(t *testing.T) {
	inv := scriptInvoker(t, `exec 1>&-
sleep 0.2
echo "Traceback: late boom" >&2
exit 1`)
	a, j := stagedHandles(t)

	_, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	require.Error(t, err)
	assert.Equal(t, KindProcessFailure, KindOf(err))
	assert.Contains(t, err.Error(), "Traceback: late boom")
}

func TestInvokeNonZeroExitNoOutput(t *testing.T) {
	inv := scriptInvoker(t, `exit 2`)
	a, j := stagedHandles(t)

	_, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	assert.Equal(t, KindProcessFailure, KindOf(err))
}

func TestInvokeTimeout(t *testing.T) {
	inv := scriptInvoker(t, `sleep 5`)
	inv.Timeout = 100 * time.Millisecond
	a, j := stagedHandles(t)

	_, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestInvokeMalformedOutput(t *testing.T) {
	inv := scriptInvoker(t, `echo 'not json at all'`)
	a, j := stagedHandles(t)

	_, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	assert.Equal(t, KindMalformedResult, KindOf(err))
}

func TestInvokeReportedFailure(t *testing.T) {
	inv := scriptInvoker(t, `echo '{"success":false,"error":"no resume sections found"}'`)
	a, j := stagedHandles(t)

	_, err := inv.Invoke(context.Background(), a, j, artifact.Handle{})
	assert.Equal(t, KindReportedFailure, KindOf(err))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "no resume sections found", se.Msg)
}

package artifact

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageWritesUniqueFiles(t *testing.T) {
	e := NewExchange(t.TempDir(), nil)

	h1, err := e.Stage("7", "jobs", []string{"a"})
	require.NoError(t, err)
	h2, err := e.Stage("7", "jobs", []string{"a"})
	require.NoError(t, err)

	// same key, same name: still two distinct files
	assert.NotEqual(t, h1.Path, h2.Path)

	b, err := os.ReadFile(h1.Path)
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(b))
}

func TestStageRejectsEmptyPayload(t *testing.T) {
	e := NewExchange(t.TempDir(), nil)

	_, err := e.Stage("7", "analysis", nil)
	assert.ErrorIs(t, err, errEmptyPayload)

	_, err = e.Stage("7", "analysis", json.RawMessage("null"))
	assert.ErrorIs(t, err, errEmptyPayload)
}

func TestReleaseRemovesAndIsIdempotent(t *testing.T) {
	e := NewExchange(t.TempDir(), nil)

	h, err := e.Stage("7", "filters", map[string]any{"location": "berlin"})
	require.NoError(t, err)

	handles := []Handle{h, {}} // a zero handle is safe to release
	e.Release(handles)

	_, err = os.Stat(h.Path)
	assert.True(t, os.IsNotExist(err))

	// releasing again is a no-op
	e.Release(handles)
}

// Package artifact stages structured payloads on disk for a single
// out-of-process invocation and guarantees their removal afterwards.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle points at one staged file. The zero Handle means "not staged"
// and is safe to release.
type Handle struct {
	Name string // logical name: analysis, jobs, filters
	Path string
}

func (h Handle) IsZero() bool { return h.Path == "" }

type Exchange struct {
	Dir string
	Log *zap.Logger
}

func NewExchange(dir string, log *zap.Logger) *Exchange {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exchange{Dir: dir, Log: log}
}

// Stage serializes payload to a uniquely named file under the exchange
// dir. The name mixes the caller key, a timestamp and a random suffix so
// concurrent requests for the same user never collide, and a staged file
// is never mutated afterwards.
func (e *Exchange) Stage(key, name string, payload any) (Handle, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Handle{}, fmt.Errorf("stage %s: marshal: %w", name, err)
	}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return Handle{}, fmt.Errorf("stage %s: %w", name, errEmptyPayload)
	}

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return Handle{}, fmt.Errorf("stage %s: %w", name, err)
	}

	fname := fmt.Sprintf("%s_%s_%d_%s.json",
		name, key, time.Now().UnixMilli(), uuid.NewString()[:8])
	path := filepath.Join(e.Dir, fname)

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return Handle{}, fmt.Errorf("stage %s: %w", name, err)
	}
	return Handle{Name: name, Path: path}, nil
}

// Release removes every staged file, best effort. Missing files and zero
// handles are fine; release is idempotent.
func (e *Exchange) Release(handles []Handle) {
	for _, h := range handles {
		if h.IsZero() {
			continue
		}
		if err := os.Remove(h.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.Log.Warn("artifact release failed",
				zap.String("name", h.Name),
				zap.String("path", h.Path),
				zap.Error(err))
		}
	}
}

var errEmptyPayload = errors.New("empty payload")

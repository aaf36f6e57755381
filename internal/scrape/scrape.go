package scrape

import (
	"context"
	"sync"
	"time"

	"resumatch-engine/internal/domain"
)

// Fetcher is one source of job postings. Implementations may run fully
// in-process or shell out; either way they emit Job-shaped records for
// ingestion.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Job, error)
}

type Status struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Running   bool   `json:"running"`
}

// Tracker serializes scrape passes across the poller and the API: at most
// one pass runs at a time, and the start decision is atomic with the
// status transition.
type Tracker struct {
	mu sync.Mutex
	st Status
}

// TryStart claims the running slot. It returns false when a pass is
// already in flight; the caller must call Finish after a true return.
func (t *Tracker) TryStart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st.Running {
		return false
	}
	t.st.Running = true
	t.st.LastRunAt = time.Now().Format(time.RFC3339)
	return true
}

func (t *Tracker) Finish(added int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Running = false
	t.st.LastAdded = added
	if err != nil {
		t.st.LastError = err.Error()
		return
	}
	t.st.LastError = ""
	t.st.LastOkAt = time.Now().Format(time.RFC3339)
}

func (t *Tracker) Load() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}

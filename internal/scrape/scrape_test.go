package scrape

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAdmitsOneRunner(t *testing.T) {
	var tr Tracker

	var mu sync.Mutex
	started := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.TryStart() {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
	assert.True(t, tr.Load().Running)

	tr.Finish(3, nil)
	st := tr.Load()
	assert.False(t, st.Running)
	assert.Equal(t, 3, st.LastAdded)
	assert.NotEmpty(t, st.LastOkAt)

	// the slot is free again
	assert.True(t, tr.TryStart())
}

func TestTrackerRecordsFailure(t *testing.T) {
	var tr Tracker
	require.True(t, tr.TryStart())
	tr.Finish(0, errors.New("imap: connection refused"))

	st := tr.Load()
	assert.Equal(t, "imap: connection refused", st.LastError)
	assert.Empty(t, st.LastOkAt)

	// a later clean pass clears the error
	require.True(t, tr.TryStart())
	tr.Finish(1, nil)
	st = tr.Load()
	assert.Empty(t, st.LastError)
	assert.NotEmpty(t, st.LastOkAt)
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch-engine/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db.Pool
}

func testJob(i int) domain.Job {
	return domain.Job{
		Title:      fmt.Sprintf("Engineer %d", i),
		Company:    "Acme",
		Location:   "Berlin",
		URL:        fmt.Sprintf("https://example.com/jobs/%d", i),
		PostedDate: time.Now().UTC(),
		Source:     "test",
	}
}

func TestIngestJobsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	batch := []domain.Job{testJob(1), testJob(2), testJob(3)}
	added, err := IngestJobs(ctx, db, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	// Re-running the same batch plus one new posting adds exactly one.
	added, err = IngestJobs(ctx, db, append(batch, testJob(4)))
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	jobs, err := QueryJobs(ctx, db, domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, jobs, 4)
}

func TestIngestJobsAtomicOnInvalidRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	bad := testJob(2)
	bad.Title = ""

	_, err := IngestJobs(ctx, db, []domain.Job{testJob(1), bad, testJob(3)})
	require.Error(t, err)

	// The whole batch rolled back, including the valid rows.
	jobs, err := QueryJobs(ctx, db, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestIngestJobsAppliesDefaults(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	j := domain.Job{Title: "Minimal", Company: "Acme", URL: "https://example.com/jobs/min"}
	_, err := IngestJobs(ctx, db, []domain.Job{j})
	require.NoError(t, err)

	jobs, err := QueryJobs(ctx, db, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	got := jobs[0]
	assert.Equal(t, "Remote", got.Location)
	assert.Equal(t, "Mid Level", got.ExperienceRequired)
	assert.Equal(t, "Full-time", got.JobType)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
	assert.False(t, got.PostedDate.IsZero())
	assert.True(t, got.IsActive)
}

func TestQueryJobsLocationFilter(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	sf := testJob(1)
	sf.Location = "San Francisco, CA"
	remote := testJob(2)
	remote.Location = "Remote"
	berlin := testJob(3)
	berlin.Location = "Berlin"

	_, err := IngestJobs(ctx, db, []domain.Job{sf, remote, berlin})
	require.NoError(t, err)

	// Substring match is case-insensitive and remote always qualifies.
	jobs, err := QueryJobs(ctx, db, domain.Filter{Location: "SAN FRAN"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	locs := []string{jobs[0].Location, jobs[1].Location}
	assert.Contains(t, locs, "San Francisco, CA")
	assert.Contains(t, locs, "Remote")
}

func TestQueryJobsDaysPosted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fresh := testJob(1)
	fresh.PostedDate = time.Now().UTC().Add(-24 * time.Hour)
	stale := testJob(2)
	stale.PostedDate = time.Now().UTC().Add(-10 * 24 * time.Hour)

	_, err := IngestJobs(ctx, db, []domain.Job{fresh, stale})
	require.NoError(t, err)

	jobs, err := QueryJobs(ctx, db, domain.Filter{DaysPosted: 7})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, fresh.Title, jobs[0].Title)
}

func TestQueryJobsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	old := testJob(1)
	old.PostedDate = time.Now().UTC().Add(-48 * time.Hour)
	newer := testJob(2)
	newer.PostedDate = time.Now().UTC()

	_, err := IngestJobs(ctx, db, []domain.Job{old, newer})
	require.NoError(t, err)

	jobs, err := QueryJobs(ctx, db, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, newer.Title, jobs[0].Title)
}

func TestSetJobActive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := IngestJobs(ctx, db, []domain.Job{testJob(1)})
	require.NoError(t, err)

	jobs, err := QueryJobs(ctx, db, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NoError(t, SetJobActive(ctx, db, jobs[0].ID, false))

	jobs, err = QueryJobs(ctx, db, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, jobs)

	// restoring brings it back
	require.NoError(t, SetJobActive(ctx, db, 1, true))
	jobs, err = QueryJobs(ctx, db, domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestSetJobActiveMissing(t *testing.T) {
	db := openTestDB(t)
	err := SetJobActive(context.Background(), db, 12345, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

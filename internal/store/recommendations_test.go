package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch-engine/internal/domain"
)

func seedJobs(t *testing.T, db *sql.DB, n int) []int64 {
	t.Helper()
	jobs := make([]domain.Job, 0, n)
	for i := 1; i <= n; i++ {
		jobs = append(jobs, testJob(i))
	}
	_, err := IngestJobs(context.Background(), db, jobs)
	require.NoError(t, err)

	stored, err := QueryJobs(context.Background(), db, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, stored, n)

	ids := make([]int64, 0, n)
	for _, j := range stored {
		ids = append(ids, j.ID)
	}
	return ids
}

func rec(jobID int64, score float64, reasons ...string) domain.Recommendation {
	return domain.Recommendation{JobID: jobID, MatchScore: score, Reasons: reasons}
}

func TestReplaceRecommendationsSwapsGenerations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ids := seedJobs(t, db, 3)

	err := ReplaceRecommendations(ctx, db, 1, 1, []domain.Recommendation{
		rec(ids[0], 70, "skills overlap"),
		rec(ids[1], 60),
	})
	require.NoError(t, err)

	err = ReplaceRecommendations(ctx, db, 1, 1, []domain.Recommendation{
		rec(ids[2], 90, "strong match"),
	})
	require.NoError(t, err)

	got, err := FetchRecommendations(ctx, db, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ids[2], got[0].JobID)
	assert.Equal(t, 90.0, got[0].MatchScore)
	assert.Equal(t, []string{"strong match"}, got[0].Reasons)
}

func TestReplaceRecommendationsEmptyWipes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ids := seedJobs(t, db, 1)

	require.NoError(t, ReplaceRecommendations(ctx, db, 1, 1, []domain.Recommendation{rec(ids[0], 50)}))
	require.NoError(t, ReplaceRecommendations(ctx, db, 1, 1, nil))

	got, err := FetchRecommendations(ctx, db, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReplaceRecommendationsScopedToResume(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ids := seedJobs(t, db, 2)

	require.NoError(t, ReplaceRecommendations(ctx, db, 1, 1, []domain.Recommendation{rec(ids[0], 50)}))
	require.NoError(t, ReplaceRecommendations(ctx, db, 1, 2, []domain.Recommendation{rec(ids[1], 60)}))

	// Replacing resume 1 leaves resume 2's rows alone.
	require.NoError(t, ReplaceRecommendations(ctx, db, 1, 1, nil))

	got, err := FetchRecommendations(ctx, db, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ResumeID)
}

func TestReplaceRecommendationsDuplicateJobLastWins(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ids := seedJobs(t, db, 1)

	err := ReplaceRecommendations(ctx, db, 1, 1, []domain.Recommendation{
		rec(ids[0], 40, "first"),
		rec(ids[0], 80, "second"),
	})
	require.NoError(t, err)

	got, err := FetchRecommendations(ctx, db, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 80.0, got[0].MatchScore)
	assert.Equal(t, []string{"second"}, got[0].Reasons)
}

func TestFetchRecommendationsExcludesInactiveJobs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ids := seedJobs(t, db, 2)

	require.NoError(t, ReplaceRecommendations(ctx, db, 1, 1, []domain.Recommendation{
		rec(ids[0], 70),
		rec(ids[1], 90),
	}))
	require.NoError(t, SetJobActive(ctx, db, ids[1], false))

	got, err := FetchRecommendations(ctx, db, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ids[0], got[0].JobID)

	// The row itself survives; restoring the job brings it back.
	require.NoError(t, SetJobActive(ctx, db, ids[1], true))
	got, err = FetchRecommendations(ctx, db, 1, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFetchRecommendationsOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ids := seedJobs(t, db, 3)

	require.NoError(t, ReplaceRecommendations(ctx, db, 1, 1, []domain.Recommendation{
		rec(ids[0], 55),
		rec(ids[1], 91),
		rec(ids[2], 72),
	}))

	got, err := FetchRecommendations(ctx, db, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 91.0, got[0].MatchScore)
	assert.Equal(t, 72.0, got[1].MatchScore)
	assert.Equal(t, ids[1], got[0].Job.ID)
}

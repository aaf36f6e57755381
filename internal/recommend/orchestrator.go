// Package recommend composes the end-to-end matching flow: filter jobs,
// stage artifacts, invoke the scorer, persist the ranked set.
package recommend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"resumatch-engine/internal/artifact"
	"resumatch-engine/internal/domain"
	"resumatch-engine/internal/events"
	"resumatch-engine/internal/score"
	"resumatch-engine/internal/store"
)

// Failure sentinels. Scoring failures carry their own kinds via
// *score.Error and pass through unwrapped.
var (
	// ErrNoJobsAvailable: the filtered candidate set was empty, so the
	// scorer was never invoked and nothing was staged.
	ErrNoJobsAvailable = errors.New("no jobs available")
	// ErrArtifactStaging wraps disk or serialization errors while staging.
	ErrArtifactStaging = errors.New("artifact staging failed")
	// ErrPersistence: the scorer succeeded but the new generation could
	// not be written; the prior generation is retained. The scorer is not
	// re-invoked for a storage failure.
	ErrPersistence = errors.New("recommendations not persisted")
)

type Request struct {
	UserID   int64
	ResumeID int64
	Analysis domain.ResumeAnalysis
	Filter   *domain.Filter
}

// Orchestrator owns no persistent state, only the in-flight request.
type Orchestrator struct {
	DB       *sql.DB
	Exchange *artifact.Exchange
	Invoker  score.Invoker
	Hub      *events.Hub // optional
	Log      *zap.Logger
}

// Generate runs one matching request end to end and returns the scorer's
// ranked result after it has been persisted. Every staged artifact is
// released on every exit path.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*score.Result, error) {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.Int64("user_id", req.UserID), zap.Int64("resume_id", req.ResumeID))

	var f domain.Filter
	if req.Filter != nil {
		f = *req.Filter
	}

	jobs, err := store.QueryJobs(ctx, o.DB, f)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	if len(jobs) == 0 {
		log.Info("no candidate jobs for filter")
		return nil, ErrNoJobsAvailable
	}

	key := fmt.Sprintf("%d", req.UserID)
	var handles []artifact.Handle
	defer func() { o.Exchange.Release(handles) }()

	stage := func(name string, payload any) (artifact.Handle, error) {
		h, err := o.Exchange.Stage(key, name, payload)
		if err != nil {
			return artifact.Handle{}, fmt.Errorf("%w: %v", ErrArtifactStaging, err)
		}
		handles = append(handles, h)
		return h, nil
	}

	hAnalysis, err := stage("analysis", req.Analysis)
	if err != nil {
		return nil, err
	}
	hJobs, err := stage("jobs", jobs)
	if err != nil {
		return nil, err
	}
	var hFilters artifact.Handle
	if req.Filter != nil && !req.Filter.IsZero() {
		if hFilters, err = stage("filters", req.Filter); err != nil {
			return nil, err
		}
	}

	res, err := o.Invoker.Invoke(ctx, hAnalysis, hJobs, hFilters)
	if err != nil {
		log.Warn("scoring failed", zap.Error(err))
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(res.Recommendations))
	for _, sj := range res.Recommendations {
		recs = append(recs, domain.Recommendation{
			UserID:     req.UserID,
			ResumeID:   req.ResumeID,
			JobID:      sj.ID,
			MatchScore: sj.MatchScore,
			Reasons:    sj.Reasons,
		})
	}

	if err := store.ReplaceRecommendations(ctx, o.DB, req.UserID, req.ResumeID, recs); err != nil {
		log.Error("persisting recommendations failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Info("recommendations replaced",
		zap.Int("candidates", len(jobs)),
		zap.Int("recommended", len(recs)))

	if o.Hub != nil {
		o.Hub.Publish(events.RecommendationsReady(req.UserID, req.ResumeID, len(recs)))
	}
	return res, nil
}

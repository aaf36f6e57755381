package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"resumatch-engine/internal/domain"
	"resumatch-engine/internal/recommend"
	"resumatch-engine/internal/score"
	"resumatch-engine/internal/store"
)

type generateRequest struct {
	UserID         int64                 `json:"user_id"`
	ResumeID       int64                 `json:"resume_id"`
	ResumeAnalysis domain.ResumeAnalysis `json:"resume_analysis"`
	Filters        *domain.Filter        `json:"filters,omitempty"`
}

func (d *Deps) handleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.UserID <= 0 || req.ResumeID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "user_id and resume_id are required")
		return
	}
	if len(req.ResumeAnalysis) == 0 || bytes.Equal(req.ResumeAnalysis, []byte("null")) {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "resume_analysis is required")
		return
	}

	res, err := d.Generate(r.Context(), recommend.Request{
		UserID:   req.UserID,
		ResumeID: req.ResumeID,
		Analysis: req.ResumeAnalysis,
		Filter:   req.Filters,
	})
	if err != nil {
		status, code := generateErrorStatus(err)
		d.Log.Warn("generate recommendations failed",
			zap.Int64("user_id", req.UserID),
			zap.String("code", code),
			zap.Error(err))
		WriteError(w, r, status, code, err.Error())
		return
	}

	writeJSON(w, map[string]any{"success": true, "result": res})
}

func generateErrorStatus(err error) (status int, code string) {
	switch {
	case errors.Is(err, recommend.ErrNoJobsAvailable):
		return http.StatusNotFound, "no_jobs_available"
	case errors.Is(err, recommend.ErrArtifactStaging):
		return http.StatusInternalServerError, "artifact_staging_failed"
	case errors.Is(err, recommend.ErrPersistence):
		return http.StatusInternalServerError, "persistence_failed"
	}
	if k := score.KindOf(err); k != "" {
		return http.StatusBadGateway, "scoring_" + string(k)
	}
	return http.StatusInternalServerError, "internal_error"
}

func (d *Deps) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "user_id is required")
		return
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
	}
	if limit == 0 {
		if cfg := d.loadCfg(); cfg != nil {
			limit = cfg.Scorer.FetchLimit
		}
	}

	recs, err := store.FetchRecommendations(r.Context(), d.DB, userID, limit)
	if err != nil {
		d.Log.Error("fetch recommendations", zap.Int64("user_id", userID), zap.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "db_error", "could not fetch recommendations")
		return
	}
	if recs == nil {
		recs = []store.UserRecommendation{}
	}
	writeJSON(w, map[string]any{"recommendations": recs, "count": len(recs)})
}

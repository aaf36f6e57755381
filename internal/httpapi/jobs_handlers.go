package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"resumatch-engine/internal/domain"
	"resumatch-engine/internal/events"
	"resumatch-engine/internal/store"
)

func (d *Deps) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f domain.Filter
	f.Location = strings.TrimSpace(q.Get("location"))
	if v := q.Get("days_posted"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "days_posted must be a non-negative integer")
			return
		}
		f.DaysPosted = n
	}

	jobs, err := store.QueryJobs(r.Context(), d.DB, f)
	if err != nil {
		d.Log.Error("list jobs", zap.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "db_error", "could not query jobs")
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	writeJSON(w, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (d *Deps) handleIngestJobs(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Jobs []domain.Job `json:"jobs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if len(body.Jobs) == 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "jobs array is empty")
		return
	}

	added, err := store.IngestJobs(r.Context(), d.DB, body.Jobs)
	if err != nil {
		d.Log.Error("ingest jobs", zap.Error(err))
		WriteError(w, r, http.StatusBadRequest, "ingest_failed", err.Error())
		return
	}

	if added > 0 && d.Hub != nil {
		d.Hub.Publish(events.JobCreated(RequestIDFrom(r.Context()), "api", added))
	}
	writeJSON(w, map[string]any{"received": len(body.Jobs), "added": added})
}

// handleJobByID covers DELETE /api/jobs/{id} (soft delete) and
// POST /api/jobs/{id}/restore.
func (d *Deps) handleJobByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	restore := false
	if s, ok := strings.CutSuffix(rest, "/restore"); ok {
		rest = s
		restore = true
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid job id")
		return
	}

	switch {
	case r.Method == http.MethodDelete && !restore:
		err = store.SetJobActive(r.Context(), d.DB, id, false)
	case r.Method == http.MethodPost && restore:
		err = store.SetJobActive(r.Context(), d.DB, id, true)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		d.Log.Error("update job active flag", zap.Int64("job_id", id), zap.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "db_error", "could not update job")
		return
	}
	writeJSON(w, map[string]any{"ok": true, "job_id": id})
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"resumatch-engine/internal/domain"
)

// UserRecommendation is a stored recommendation joined with its job row,
// as returned to callers.
type UserRecommendation struct {
	ResumeID   int64      `json:"resume_id"`
	JobID      int64      `json:"job_id"`
	MatchScore float64    `json:"match_score"`
	Reasons    []string   `json:"recommendation_reasons"`
	Job        domain.Job `json:"job"`
}

// ReplaceRecommendations swaps in a new generation for (user, resume):
// within one transaction all prior rows are deleted and the new set is
// inserted. Duplicate job ids inside one generation upsert, so the last
// write wins. On any failure the transaction rolls back and the prior
// generation stays intact.
func ReplaceRecommendations(ctx context.Context, db *sql.DB, userID, resumeID int64, recs []domain.Recommendation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM job_recommendations WHERE user_id = ? AND resume_id = ?;`,
		userID, resumeID,
	); err != nil {
		return fmt.Errorf("clear prior generation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO job_recommendations
  (user_id, resume_id, job_id, match_score, recommendation_reasons)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, resume_id, job_id) DO UPDATE SET
  match_score = excluded.match_score,
  recommendation_reasons = excluded.recommendation_reasons;`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		reasons := rec.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		reasonsJSON, err := json.Marshal(reasons)
		if err != nil {
			return fmt.Errorf("marshal reasons for job %d: %w", rec.JobID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			userID, resumeID, rec.JobID, rec.MatchScore, string(reasonsJSON),
		); err != nil {
			return fmt.Errorf("insert recommendation for job %d: %w", rec.JobID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// FetchRecommendations reads the stored set for a user, best score first,
// joined against currently active jobs only. A recommendation whose job
// was deactivated is silently excluded without being deleted.
func FetchRecommendations(ctx context.Context, db *sql.DB, userID int64, limit int) ([]UserRecommendation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.QueryContext(ctx, `
SELECT r.resume_id, r.job_id, r.match_score, r.recommendation_reasons,
       j.id, j.title, j.company, j.location, j.description, j.url,
       j.posted_date, COALESCE(j.salary, ''), j.tags, j.source,
       j.experience_required, j.job_type, j.is_active
FROM job_recommendations r
JOIN jobs j ON j.id = r.job_id
WHERE r.user_id = ? AND j.is_active = 1
ORDER BY r.match_score DESC
LIMIT ?;`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch recommendations: %w", err)
	}
	defer rows.Close()

	var out []UserRecommendation
	for rows.Next() {
		var rec UserRecommendation
		var reasonsJSON, tagsJSON, postedStr string
		var active int
		if err := rows.Scan(
			&rec.ResumeID, &rec.JobID, &rec.MatchScore, &reasonsJSON,
			&rec.Job.ID, &rec.Job.Title, &rec.Job.Company, &rec.Job.Location,
			&rec.Job.Description, &rec.Job.URL, &postedStr, &rec.Job.Salary,
			&tagsJSON, &rec.Job.Source, &rec.Job.ExperienceRequired,
			&rec.Job.JobType, &active,
		); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		_ = json.Unmarshal([]byte(reasonsJSON), &rec.Reasons)
		_ = json.Unmarshal([]byte(tagsJSON), &rec.Job.Tags)
		rec.Job.PostedDate, _ = time.Parse(TimeLayout, postedStr)
		rec.Job.IsActive = active != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

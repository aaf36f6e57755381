package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resumatch-engine/internal/domain"
)

// QueryLimit caps the candidate set so the staged jobs artifact stays
// bounded.
const QueryLimit = 100

// IngestJobs writes a batch of scraped postings in one transaction.
// Natural-key collisions (title, company, url) leave the existing row
// untouched; any other failure rolls the whole batch back. Returns the
// number of rows actually inserted.
func IngestJobs(ctx context.Context, db *sql.DB, jobs []domain.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ingest: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO jobs
  (title, company, location, description, url, posted_date, salary, tags,
   source, experience_required, job_type, is_active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1);`)
	if err != nil {
		return 0, fmt.Errorf("prepare ingest: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, j := range jobs {
		j = withIngestDefaults(j)
		if j.Title == "" || j.Company == "" || j.URL == "" {
			return 0, fmt.Errorf("ingest job: missing title/company/url (title=%q company=%q)", j.Title, j.Company)
		}

		tagsJSON, err := json.Marshal(j.Tags)
		if err != nil {
			return 0, fmt.Errorf("ingest job %q: marshal tags: %w", j.Title, err)
		}

		var salary any
		if j.Salary != "" {
			salary = j.Salary
		}

		res, err := stmt.ExecContext(ctx,
			j.Title, j.Company, j.Location, j.Description, j.URL,
			j.PostedDate.UTC().Format(TimeLayout), salary, string(tagsJSON),
			j.Source, j.ExperienceRequired, j.JobType,
		)
		if err != nil {
			return 0, fmt.Errorf("ingest job %q: %w", j.Title, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ingest: %w", err)
	}
	return inserted, nil
}

func withIngestDefaults(j domain.Job) domain.Job {
	if j.Location == "" {
		j.Location = "Remote"
	}
	if j.ExperienceRequired == "" {
		j.ExperienceRequired = "Mid Level"
	}
	if j.JobType == "" {
		j.JobType = "Full-time"
	}
	if j.PostedDate.IsZero() {
		j.PostedDate = time.Now().UTC()
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
	return j
}

// QueryJobs returns active postings matching the filter, newest first,
// capped at QueryLimit.
func QueryJobs(ctx context.Context, db *sql.DB, f domain.Filter) ([]domain.Job, error) {
	query := `
SELECT id, title, company, location, description, url, posted_date,
       COALESCE(salary, ''), tags, source, experience_required, job_type, is_active
FROM jobs
WHERE is_active = 1`
	var args []any

	if f.Location != "" {
		query += `
  AND (instr(lower(location), ?) > 0 OR lower(location) = 'remote')`
		args = append(args, strings.ToLower(f.Location))
	}
	if f.DaysPosted > 0 {
		query += `
  AND posted_date >= datetime('now', ?)`
		args = append(args, fmt.Sprintf("-%d days", f.DaysPosted))
	}

	query += `
ORDER BY posted_date DESC
LIMIT ?;`
	args = append(args, QueryLimit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func scanJob(rows *sql.Rows) (domain.Job, error) {
	var j domain.Job
	var tagsJSON, postedStr string
	var active int
	if err := rows.Scan(
		&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.URL,
		&postedStr, &j.Salary, &tagsJSON, &j.Source,
		&j.ExperienceRequired, &j.JobType, &active,
	); err != nil {
		return j, fmt.Errorf("scan job: %w", err)
	}
	_ = json.Unmarshal([]byte(tagsJSON), &j.Tags)
	j.PostedDate, _ = time.Parse(TimeLayout, postedStr)
	j.IsActive = active != 0
	return j, nil
}

// SetJobActive flips the soft-delete flag. Recommendations pointing at a
// deactivated job stay stored but drop out of reads.
func SetJobActive(ctx context.Context, db *sql.DB, id int64, active bool) error {
	v := 0
	if active {
		v = 1
	}
	res, err := db.ExecContext(ctx, `UPDATE jobs SET is_active = ? WHERE id = ?;`, v, id)
	if err != nil {
		return fmt.Errorf("set job active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package domain

import (
	"encoding/json"
	"time"
)

// Job is a single posting. ID is the store-assigned surrogate key; the
// natural key for dedup is (title, company, url).
type Job struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Company            string    `json:"company"`
	Location           string    `json:"location"`
	Description        string    `json:"description"`
	URL                string    `json:"url"`
	PostedDate         time.Time `json:"posted_date"`
	Salary             string    `json:"salary,omitempty"`
	Tags               []string  `json:"tags"`
	Source             string    `json:"source"`
	ExperienceRequired string    `json:"experience_required"`
	JobType            string    `json:"job_type"`
	IsActive           bool      `json:"is_active"`
}

// Filter narrows the candidate job set before scoring. Fields compose
// conjunctively; zero values mean "no constraint".
type Filter struct {
	// Location matches as a case-insensitive substring. Jobs located
	// exactly at "remote" always match regardless of the value.
	Location string `json:"location,omitempty"`
	// DaysPosted keeps only jobs posted within the last N days.
	DaysPosted int `json:"days_posted,omitempty"`
	// MinMatchScore is applied by the scorer after scoring, never by the
	// store.
	MinMatchScore float64 `json:"min_match_score,omitempty"`
}

func (f Filter) IsZero() bool {
	return f.Location == "" && f.DaysPosted == 0 && f.MinMatchScore == 0
}

// ResumeAnalysis is the structured artifact produced by the resume
// analysis step. The engine treats it as opaque: it is staged for the
// scorer as-is and never inspected beyond a presence check.
type ResumeAnalysis = json.RawMessage

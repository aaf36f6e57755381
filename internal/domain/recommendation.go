package domain

// Recommendation is a scored edge between (user, resume, job). The set of
// rows stored for a (user, resume) pair always belongs to a single scoring
// generation; it is replaced wholesale, never patched.
type Recommendation struct {
	UserID     int64    `json:"user_id"`
	ResumeID   int64    `json:"resume_id"`
	JobID      int64    `json:"job_id"`
	MatchScore float64  `json:"match_score"`
	Reasons    []string `json:"recommendation_reasons"`
}

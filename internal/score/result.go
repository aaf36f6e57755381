package score

// ScoredJob is one entry of the scorer's ranked output. ID refers to the
// job's surrogate key as staged in the candidate set.
type ScoredJob struct {
	ID         int64    `json:"id"`
	MatchScore float64  `json:"match_score"`
	Reasons    []string `json:"recommendation_reasons"`
}

// Result is the single structured value the external scoring procedure
// emits. Changing this shape is a breaking change to the scorer boundary.
type Result struct {
	Success           bool        `json:"success"`
	ATSScore          float64     `json:"ats_score,omitempty"`
	CandidatePriority string      `json:"candidate_priority,omitempty"`
	TotalJobs         int         `json:"total_jobs,omitempty"`
	RecommendedJobs   int         `json:"recommended_jobs,omitempty"`
	Recommendations   []ScoredJob `json:"recommendations,omitempty"`
	Error             string      `json:"error,omitempty"`
}

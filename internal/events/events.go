// Package events carries engine notifications to SSE subscribers.
package events

import "time"

// The engine emits exactly two event kinds: postings landed in the job
// store, and a recommendation generation was replaced.
const (
	TypeJobCreated           = "job_created"
	TypeRecommendationsReady = "recommendations_ready"
)

// Event is the envelope streamed to subscribers. Data holds one of the
// typed payloads below, keyed by Type.
type Event struct {
	Type      string    `json:"type"`
	At        time.Time `json:"at"`
	RequestID string    `json:"request_id,omitempty"`
	Data      any       `json:"data,omitempty"`
}

type JobCreatedData struct {
	Source string `json:"source"`
	Added  int    `json:"added"`
}

type RecommendationsReadyData struct {
	UserID   int64 `json:"user_id"`
	ResumeID int64 `json:"resume_id"`
	Count    int   `json:"count"`
}

// JobCreated announces that an ingestion pass added new postings from one
// source. requestID is empty for scraper-originated ingests.
func JobCreated(requestID, source string, added int) Event {
	return Event{
		Type:      TypeJobCreated,
		At:        time.Now().UTC(),
		RequestID: requestID,
		Data:      JobCreatedData{Source: source, Added: added},
	}
}

// RecommendationsReady announces that a scoring run replaced the stored
// generation for (user, resume).
func RecommendationsReady(userID, resumeID int64, count int) Event {
	return Event{
		Type: TypeRecommendationsReady,
		At:   time.Now().UTC(),
		Data: RecommendationsReadyData{UserID: userID, ResumeID: resumeID, Count: count},
	}
}

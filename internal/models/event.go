package models

import (
	"encoding/json"
	"time"
)

// Event is one stored activity record for a monitored repository.
// EventID is the platform-assigned identifier and the dedup key; a second
// upsert of the same id is a no-op.
type Event struct {
	EventID    string          `json:"event_id"`
	Repo       string          `json:"repo"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// RepoUpdate is the per-repository outcome of one ingestion run.
// Error is empty on success; a failed source leaves the counters at
// whatever was ingested before the failure.
type RepoUpdate struct {
	Repo       string `json:"repo"`
	Fetched    int    `json:"fetched"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error,omitempty"`
}

// Failed reports whether the repository's source fetch failed.
func (u RepoUpdate) Failed() bool { return u.Error != "" }

// UpdateSummary is returned by GET /update. RunID correlates the response
// with log lines from the same ingestion run.
type UpdateSummary struct {
	RunID        string       `json:"run_id"`
	Repositories []RepoUpdate `json:"repositories"`
}

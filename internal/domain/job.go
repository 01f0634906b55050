package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrJobNotFound          = errors.New("job not found")
	ErrDuplicateFingerprint = errors.New("job with this fingerprint already exists")
)

type Status string

const (
	StatusPending Status = "Pending"
	StatusRunning Status = "Running"
	StatusSuccess Status = "Success"
	StatusFailure Status = "Failure"
)

// Job is a persisted request to perform one HTTP call at or after a
// scheduled time. UniqueID is the content fingerprint used for
// admission-level deduplication; the database forbids changing it
// after insert.
type Job struct {
	ID       string
	UniqueID string

	URL     string
	Method  string
	Headers map[string]any
	Body    json.RawMessage

	// Attempts counts worker pickups; Retries is max(0, attempts-1),
	// recomputed at every settle.
	Retries  int
	Attempts int

	Status    Status
	NextRunAt time.Time
	Cron      *string

	// CheckIn is the worker lease: written at claim, refreshed by the
	// monitor when it rescues a stalled row.
	CheckIn *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recurring reports whether the job rearms itself after a successful run.
func (j *Job) Recurring() bool {
	return j.Cron != nil && *j.Cron != ""
}

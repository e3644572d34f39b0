package domain

import "time"

type OffloadStatus string

const (
	OffloadStarted   OffloadStatus = "started"
	OffloadCompleted OffloadStatus = "completed"
	OffloadFailed    OffloadStatus = "failed"
	OffloadTimedOut  OffloadStatus = "timed_out"
	// OffloadAbandoned marks a continuation never started because its acknowledgment could not be delivered.
	OffloadAbandoned OffloadStatus = "abandoned"
)

// OffloadRecord traces one continuation from start to its terminal outcome.
type OffloadRecord struct {
	ID            string
	InteractionID string
	Prefix        string
	Status        OffloadStatus
	Error         string
	StartedAt     time.Time
	EndedAt       time.Time
}

func (r OffloadRecord) Terminal() bool {
	return r.Status != OffloadStarted
}

package invoice

import (
	"time"

	"github.com/nmorell/facturai/internal/extraction"
)

// JobStatus represents the lifecycle state of an extraction job
type JobStatus string

const (
	// StatusPending means the job has been accepted but not picked up yet
	StatusPending JobStatus = "pending"
	// StatusProcessing means the extractor is currently working on the job
	StatusProcessing JobStatus = "processing"
	// StatusCompleted means the extraction finished successfully
	StatusCompleted JobStatus = "completed"
	// StatusFailed means the extraction failed and will not be retried
	StatusFailed JobStatus = "failed"
)

// statusRank orders statuses so transitions can only move forward
var statusRank = map[JobStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusCompleted:  2,
	StatusFailed:     2,
}

// Terminal reports whether the status is a rest state the job never leaves
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// canTransitionTo reports whether moving from s to next is a valid forward step
func (s JobStatus) canTransitionTo(next JobStatus) bool {
	if s.Terminal() {
		return false
	}
	return statusRank[next] > statusRank[s]
}

// Job is one unit of asynchronous extraction work tracked by id and status
type Job struct {
	ID        string                  `json:"id"`
	Status    JobStatus               `json:"status"`
	Result    *extraction.InvoiceData `json:"result,omitempty"`
	Error     string                  `json:"error,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

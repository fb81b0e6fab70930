package invoice

import (
	"log/slog"

	"github.com/nmorell/facturai/internal/extraction"
)

// Runner drives the background execution of exactly one extraction per job.
// It applies the only terminal transition a job ever gets and never retries;
// extractor errors are recorded on the job instead of propagating.
type Runner struct {
	jobs      *JobStore
	extractor extraction.Extractor
	notifier  *Dispatcher
}

// NewRunner creates a new Runner
func NewRunner(jobs *JobStore, extractor extraction.Extractor, notifier *Dispatcher) *Runner {
	return &Runner{
		jobs:      jobs,
		extractor: extractor,
		notifier:  notifier,
	}
}

// Start launches Process in a background goroutine and returns immediately.
// This is what keeps the enqueue request from ever blocking on extraction.
func (r *Runner) Start(jobID string, imageData []byte, contentType string) {
	go r.Process(jobID, imageData, contentType)
}

// Process runs one extraction to its terminal state. It is exported on its
// own so tests can drive a job synchronously.
func (r *Runner) Process(jobID string, imageData []byte, contentType string) {
	if err := r.jobs.Transition(jobID, StatusProcessing, nil, ""); err != nil {
		// The job may have gone away; nothing to do but note it
		slog.Warn("Could not mark job as processing", "job_id", jobID, "error", err)
		return
	}

	data, err := r.extractor.ExtractInvoice(imageData, contentType)
	if err != nil {
		slog.Error("Invoice extraction failed", "job_id", jobID, "error", err)
		if terr := r.jobs.Transition(jobID, StatusFailed, nil, err.Error()); terr != nil {
			slog.Warn("Could not mark job as failed", "job_id", jobID, "error", terr)
		}
		r.notifier.Emit(EventJobCompleted, map[string]any{
			"jobId":  jobID,
			"status": "failed",
			"error":  err.Error(),
		})
		return
	}

	if terr := r.jobs.Transition(jobID, StatusCompleted, data, ""); terr != nil {
		slog.Warn("Could not mark job as completed", "job_id", jobID, "error", terr)
	}
	slog.Info("Invoice extraction completed", "job_id", jobID, "vendor", data.VendorName)
	r.notifier.Emit(EventJobCompleted, map[string]any{
		"jobId":  jobID,
		"status": "success",
		"vendor": data.VendorName,
		"total":  data.TotalAmount,
	})
}

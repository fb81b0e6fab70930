package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nmorell/facturai/internal/extraction"
)

// IDGenerator generates unique IDs for jobs
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUID ids
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service exposes the two extraction paths the API offers: a synchronous
// call that blocks on the extractor, and an asynchronous enqueue that
// returns a pollable job immediately.
type Service struct {
	jobs      *JobStore
	runner    *Runner
	extractor extraction.Extractor
	notifier  *Dispatcher
}

// NewService creates a new Service
func NewService(jobs *JobStore, runner *Runner, extractor extraction.Extractor, notifier *Dispatcher) *Service {
	return &Service{
		jobs:      jobs,
		runner:    runner,
		extractor: extractor,
		notifier:  notifier,
	}
}

// Extract runs a synchronous extraction and emits a summary event on success
func (s *Service) Extract(imageData []byte, contentType string) (*extraction.InvoiceData, error) {
	data, err := s.extractor.ExtractInvoice(imageData, contentType)
	if err != nil {
		return nil, fmt.Errorf("extracting invoice: %w", err)
	}

	s.notifier.Emit(EventInvoiceExtracted, map[string]any{
		"vendor": data.VendorName,
		"total":  data.TotalAmount,
	})
	return data, nil
}

// Enqueue creates a pending job, hands it to the runner, and returns without
// waiting for the extraction
func (s *Service) Enqueue(imageData []byte, contentType string) (*Job, error) {
	job, err := s.jobs.Create()
	if err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	s.runner.Start(job.ID, imageData, contentType)
	return job, nil
}

// JobStatus returns a snapshot of the job with the given id
func (s *Service) JobStatus(id string) (*Job, bool) {
	return s.jobs.Get(id)
}

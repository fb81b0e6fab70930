package invoice

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nmorell/facturai/internal/extraction"
)

// ErrJobNotFound is returned when a job id is not present in the store
var ErrJobNotFound = errors.New("job not found")

// JobStore is an in-memory registry of extraction jobs keyed by id.
// Safe for concurrent access; all state is lost when the process exits.
type JobStore struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewJobStore creates a new empty JobStore
func NewJobStore() *JobStore {
	return NewJobStoreWithDeps(&defaultIDGenerator{}, &defaultTimeSource{})
}

// NewJobStoreWithDeps creates a new JobStore with custom dependencies for testing
func NewJobStoreWithDeps(idGen IDGenerator, timeSrc TimeSource) *JobStore {
	return &JobStore{
		jobs:        make(map[string]*Job),
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Create allocates a new job in pending status and returns a snapshot of it
func (s *JobStore) Create() (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.idGenerator.Generate()
	for attempts := 0; ; attempts++ {
		if _, exists := s.jobs[id]; !exists {
			break
		}
		// Colliding with an existing entry must never corrupt it
		slog.Warn("Job id collision, regenerating", "id", id)
		if attempts >= 10 {
			return nil, fmt.Errorf("could not allocate a unique job id")
		}
		id = s.idGenerator.Generate()
	}

	job := &Job{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: s.timeSource.Now(),
	}
	s.jobs[id] = job

	cp := *job
	return &cp, nil
}

// Get returns a snapshot of the job with the given id
func (s *JobStore) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	cp := *job
	return &cp, true
}

// Transition advances a job to a new status. Transitions are forward-only:
// pending -> processing -> completed|failed. The result is stored only on
// completion, the error message only on failure. Returns ErrJobNotFound for
// unknown ids; callers are expected to log and tolerate that.
func (s *JobStore) Transition(id string, status JobStatus, result *extraction.InvoiceData, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if !job.Status.canTransitionTo(status) {
		return fmt.Errorf("invalid job transition %s -> %s", job.Status, status)
	}

	job.Status = status
	switch status {
	case StatusCompleted:
		job.Result = result
		job.Error = ""
	case StatusFailed:
		job.Result = nil
		job.Error = errMsg
	}
	return nil
}

// Len returns the number of stored jobs
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the in-memory source of truth for job lifecycle. Jobs live
// here from submission until process exit; there is no eviction and no
// persistence across restarts.
//
// Writes to the same id come from a single runner; reads come from any
// number of pollers. A single RWMutex serializes writers while letting
// readers proceed concurrently, and every read hands out a snapshot copy
// so a concurrent mutation can never be observed as a torn record.
type Store struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string // Job IDs in order of creation

	// Subscribers for job events
	subsMu      sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{
		jobs:        make(map[string]*Job),
		order:       make([]string, 0),
		subscribers: make(map[chan Event]struct{}),
	}
}

// Create inserts a fresh pending job for the given source file and
// language hint and returns it. The id is a UUID: unique for the process
// lifetime, and safe to use in URL paths and filenames.
func (s *Store) Create(language, sourcePath string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &Job{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		Language:   language,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	s.broadcast(Event{Type: "created", Job: job.Copy()})

	return job.Copy()
}

// Get returns a snapshot of the job's current state.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, jobNotFoundError(id)
	}
	return job.Copy(), nil
}

// All returns snapshots of every job in creation order.
func (s *Store) All() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Job, 0, len(s.order))
	for _, id := range s.order {
		if job, ok := s.jobs[id]; ok {
			all = append(all, job.Copy())
		}
	}
	return all
}

// SetProcessing marks a pending job as picked up by a runner. Callers
// treat pending and processing identically ("not yet done"); the
// transition exists for observability.
func (s *Store) SetProcessing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return jobNotFoundError(id)
	}
	if job.IsTerminal() {
		return jobTerminalError(id, job.Status)
	}

	job.Status = StatusProcessing

	s.broadcast(Event{Type: "processing", Job: job.Copy()})

	return nil
}

// SetCompleted stores the encoded subtitle text and marks the job
// completed. Completed is terminal: a second terminal transition on the
// same id is rejected.
func (s *Store) SetCompleted(id, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return jobNotFoundError(id)
	}
	if job.IsTerminal() {
		return jobTerminalError(id, job.Status)
	}

	job.Status = StatusCompleted
	job.Result = result
	job.CompletedAt = time.Now()

	s.broadcast(Event{Type: "completed", Job: job.Copy()})

	return nil
}

// SetFailed marks the job failed with a human-readable message. Failed
// is terminal and never carries a result.
func (s *Store) SetFailed(id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return jobNotFoundError(id)
	}
	if job.IsTerminal() {
		return jobTerminalError(id, job.Status)
	}

	job.Status = StatusFailed
	job.Error = message
	job.CompletedAt = time.Now()

	s.broadcast(Event{Type: "failed", Job: job.Copy()})

	return nil
}

// Subscribe returns a channel that receives job events.
func (s *Store) Subscribe() chan Event {
	ch := make(chan Event, 100)

	s.subsMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subsMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch chan Event) {
	s.subsMu.Lock()
	delete(s.subscribers, ch)
	s.subsMu.Unlock()

	close(ch)
}

// broadcast sends an event to all subscribers.
func (s *Store) broadcast(event Event) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// Stats returns per-status job counts.
type Stats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	for _, job := range s.jobs {
		stats.Total++
		switch job.Status {
		case StatusPending:
			stats.Pending++
		case StatusProcessing:
			stats.Processing++
		case StatusCompleted:
			stats.Completed++
		case StatusFailed:
			stats.Failed++
		}
	}
	return stats
}

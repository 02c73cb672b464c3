package fraud

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"idreclaim/pkg/sentinel"
)

// InMemoryStore keeps fraud reports in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]Report
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reports: make(map[uuid.UUID]Report)}
}

func (s *InMemoryStore) Save(_ context.Context, report Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return sentinel.ErrConflict
	}
	s.reports[report.ID] = report
	return nil
}

func (s *InMemoryStore) ListOpen(_ context.Context) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Report
	for _, r := range s.reports {
		if r.Status == StatusOpen {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) MarkReviewed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, exists := s.reports[id]
	if !exists {
		return sentinel.ErrNotFound
	}
	report.Status = StatusReviewed
	s.reports[id] = report
	return nil
}

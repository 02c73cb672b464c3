package support

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"idreclaim/pkg/sentinel"
)

// InMemoryStore keeps support tickets in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]Ticket
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tickets: make(map[uuid.UUID]Ticket)}
}

func (s *InMemoryStore) Save(_ context.Context, ticket Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tickets[ticket.ID]; exists {
		return sentinel.ErrConflict
	}
	s.tickets[ticket.ID] = ticket
	return nil
}

func (s *InMemoryStore) ListOpen(_ context.Context) ([]Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Ticket
	for _, t := range s.tickets {
		if t.Status == StatusOpen {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Close(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, exists := s.tickets[id]
	if !exists {
		return sentinel.ErrNotFound
	}
	ticket.Status = StatusClosed
	s.tickets[id] = ticket
	return nil
}

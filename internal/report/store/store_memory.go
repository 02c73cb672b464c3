package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"idreclaim/internal/match"
	"idreclaim/internal/report/models"
	"idreclaim/pkg/sentinel"
)

// InMemoryLostStore keeps lost reports in process memory. Used in tests and
// when no database is configured.
type InMemoryLostStore struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]models.LostReport
}

func NewInMemoryLostStore() *InMemoryLostStore {
	return &InMemoryLostStore{reports: make(map[uuid.UUID]models.LostReport)}
}

func (s *InMemoryLostStore) Save(_ context.Context, report models.LostReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return sentinel.ErrConflict
	}
	s.reports[report.ID] = report
	return nil
}

func (s *InMemoryLostStore) FindByID(_ context.Context, id uuid.UUID) (models.LostReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, exists := s.reports[id]
	if !exists {
		return models.LostReport{}, sentinel.ErrNotFound
	}
	return report, nil
}

func (s *InMemoryLostStore) ListByOwner(_ context.Context, ownerID string) ([]models.LostReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LostReport
	for _, r := range s.reports {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	sortLostNewestFirst(out)
	return out, nil
}

func (s *InMemoryLostStore) ListRecent(_ context.Context, limit int) ([]models.LostReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LostReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sortLostNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryLostStore) Search(_ context.Context, query string) ([]models.LostReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.LostReport
	for _, r := range s.reports {
		if q == "" || containsFold(q, r.DocumentType, r.FullName, r.LastLocation, r.Description) {
			out = append(out, r)
		}
	}
	sortLostNewestFirst(out)
	return out, nil
}

// ListEligibleByType returns open (LOST) reports whose document type shares
// the given prefix. This is the coarse retrieval step of matching; scoring
// narrows it afterwards.
func (s *InMemoryLostStore) ListEligibleByType(_ context.Context, docPrefix string) ([]models.LostReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LostReport
	for _, r := range s.reports {
		if r.Status == models.StatusLost && match.DocTypePrefix(r.DocumentType) == docPrefix {
			out = append(out, r)
		}
	}
	sortLostOldestFirst(out)
	return out, nil
}

// UpdateStatus applies a lifecycle transition. Setting the current status
// again is a no-op success, so concurrent matchers can race safely.
func (s *InMemoryLostStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.LostStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, exists := s.reports[id]
	if !exists {
		return sentinel.ErrNotFound
	}
	if report.Status == status {
		return nil
	}
	if !report.Status.CanTransitionTo(status) {
		return sentinel.ErrInvalidState
	}
	report.Status = status
	s.reports[id] = report
	return nil
}

func (s *InMemoryLostStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[id]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

// InMemoryFoundStore keeps found reports in process memory.
type InMemoryFoundStore struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]models.FoundReport
}

func NewInMemoryFoundStore() *InMemoryFoundStore {
	return &InMemoryFoundStore{reports: make(map[uuid.UUID]models.FoundReport)}
}

func (s *InMemoryFoundStore) Save(_ context.Context, report models.FoundReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return sentinel.ErrConflict
	}
	s.reports[report.ID] = report
	return nil
}

func (s *InMemoryFoundStore) FindByID(_ context.Context, id uuid.UUID) (models.FoundReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, exists := s.reports[id]
	if !exists {
		return models.FoundReport{}, sentinel.ErrNotFound
	}
	return report, nil
}

func (s *InMemoryFoundStore) ListByFinder(_ context.Context, finderID string) ([]models.FoundReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.FoundReport
	for _, r := range s.reports {
		if r.FinderID == finderID {
			out = append(out, r)
		}
	}
	sortFoundNewestFirst(out)
	return out, nil
}

func (s *InMemoryFoundStore) ListRecent(_ context.Context, limit int) ([]models.FoundReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FoundReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sortFoundNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryFoundStore) Search(_ context.Context, query string) ([]models.FoundReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.FoundReport
	for _, r := range s.reports {
		if q == "" || containsFold(q, r.DocumentType, r.FullName, r.Region, r.LocationDetail) {
			out = append(out, r)
		}
	}
	sortFoundNewestFirst(out)
	return out, nil
}

func (s *InMemoryFoundStore) ListEligibleByType(_ context.Context, docPrefix string) ([]models.FoundReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.FoundReport
	for _, r := range s.reports {
		if r.Status == models.FoundAvailable && match.DocTypePrefix(r.DocumentType) == docPrefix {
			out = append(out, r)
		}
	}
	sortFoundOldestFirst(out)
	return out, nil
}

func (s *InMemoryFoundStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.FoundStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, exists := s.reports[id]
	if !exists {
		return sentinel.ErrNotFound
	}
	if report.Status == status {
		return nil
	}
	if !report.Status.CanTransitionTo(status) {
		return sentinel.ErrInvalidState
	}
	report.Status = status
	s.reports[id] = report
	return nil
}

func (s *InMemoryFoundStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[id]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

func containsFold(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func sortLostNewestFirst(reports []models.LostReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}

func sortLostOldestFirst(reports []models.LostReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
}

func sortFoundNewestFirst(reports []models.FoundReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}

func sortFoundOldestFirst(reports []models.FoundReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
}

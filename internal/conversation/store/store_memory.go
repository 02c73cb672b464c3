package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"idreclaim/internal/conversation/models"
	"idreclaim/pkg/sentinel"
)

// InMemoryStore keeps conversations and messages in process memory.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]models.Conversation
	byPair        map[string]uuid.UUID
	messages      map[uuid.UUID][]models.Message
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		conversations: make(map[uuid.UUID]models.Conversation),
		byPair:        make(map[string]uuid.UUID),
		messages:      make(map[uuid.UUID][]models.Message),
	}
}

// pairKey is order-independent so either party opening the thread lands on
// the same conversation. The originating report is recorded on the
// conversation but is not part of the key: a pair of users shares one thread.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s", a, b)
}

// GetOrCreate returns the existing conversation for the party pair, or stores
// the given one. The second return reports whether a new conversation was
// created.
func (s *InMemoryStore) GetOrCreate(_ context.Context, conv models.Conversation) (models.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(conv.OwnerID, conv.FinderID)
	if id, exists := s.byPair[key]; exists {
		return s.conversations[id], false, nil
	}
	s.conversations[conv.ID] = conv
	s.byPair[key] = conv.ID
	return conv, true, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[id]
	if !exists {
		return models.Conversation{}, sentinel.ErrNotFound
	}
	return conv, nil
}

// ListForUser returns the user's conversations, most recently active first.
func (s *InMemoryStore) ListForUser(_ context.Context, userID string) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Conversation
	for _, c := range s.conversations {
		if c.HasMember(userID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// SaveMessage appends a message and bumps the conversation's activity time.
func (s *InMemoryStore) SaveMessage(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[msg.ConversationID]
	if !exists {
		return sentinel.ErrNotFound
	}
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	if msg.CreatedAt.After(conv.UpdatedAt) {
		conv.UpdatedAt = msg.CreatedAt
		s.conversations[conv.ID] = conv
	}
	return nil
}

// ListMessages returns the conversation's messages in send order.
func (s *InMemoryStore) ListMessages(_ context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.conversations[conversationID]; !exists {
		return nil, sentinel.ErrNotFound
	}
	msgs := s.messages[conversationID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Package service implements the messaging flows between report parties.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"idreclaim/internal/conversation/models"
	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/realtime"
	reportmodels "idreclaim/internal/report/models"
	"idreclaim/pkg/domainerrors"
	"idreclaim/pkg/sentinel"
)

const maxMessageLength = 2000

// Store is the persistence surface for conversations and messages.
type Store interface {
	GetOrCreate(ctx context.Context, conv models.Conversation) (models.Conversation, bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]models.Conversation, error)
	SaveMessage(ctx context.Context, msg models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
}

type Service struct {
	store     Store
	publisher realtime.Publisher
	logger    *slog.Logger
}

func New(store Store, publisher realtime.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

type StartResult struct {
	Conversation models.Conversation `json:"conversation"`
	Created      bool                `json:"created"`
}

// Start opens (or returns) the conversation between the caller and the
// counterpart about a report. Self-conversations and sentinel counterparts
// are rejected; concurrent opens by both parties converge on one thread.
func (s *Service) Start(ctx context.Context, reportID uuid.UUID, counterpartID string) (StartResult, error) {
	callerID := middleware.GetUserID(ctx)
	if !reportmodels.IsAddressable(callerID) {
		return StartResult{}, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}
	if counterpartID == callerID {
		return StartResult{}, domainerrors.New(domainerrors.CodeConflict, "cannot start a conversation with yourself")
	}
	if !reportmodels.IsAddressable(counterpartID) {
		return StartResult{}, domainerrors.New(domainerrors.CodeConflict, "counterpart cannot be messaged")
	}

	now := time.Now().UTC()
	conv, created, err := s.store.GetOrCreate(ctx, models.Conversation{
		ID:        uuid.New(),
		ReportID:  reportID,
		OwnerID:   callerID,
		FinderID:  counterpartID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return StartResult{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not start conversation")
	}
	return StartResult{Conversation: conv, Created: created}, nil
}

// Send appends a message to a conversation the caller is a member of, then
// fans the event out to the thread channel and both parties' list channels.
// Fan-out is best effort: the message is already durable.
func (s *Service) Send(ctx context.Context, conversationID uuid.UUID, body string) (models.Message, error) {
	callerID := middleware.GetUserID(ctx)
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Message{}, domainerrors.New(domainerrors.CodeValidation, "message body is required")
	}
	if len(body) > maxMessageLength {
		return models.Message{}, domainerrors.New(domainerrors.CodeValidation, "message body too long")
	}

	conv, err := s.memberConversation(ctx, conversationID, callerID)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       callerID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return models.Message{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not save message")
	}

	s.fanOut(ctx, conv, msg)
	return msg, nil
}

func (s *Service) fanOut(ctx context.Context, conv models.Conversation, msg models.Message) {
	channels := []string{
		realtime.ConversationChannel(conv.ID.String()),
		realtime.ConversationListChannel(conv.OwnerID),
		realtime.ConversationListChannel(conv.FinderID),
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, channel := range channels {
		g.Go(func() error {
			if err := s.publisher.Publish(gctx, channel, realtime.EventMessageNew, msg); err != nil {
				s.logger.WarnContext(gctx, "message publish failed",
					"conversation_id", conv.ID, "channel", channel, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ListForUser returns the caller's conversations, most recently active first.
func (s *Service) ListForUser(ctx context.Context) ([]models.Conversation, error) {
	callerID := middleware.GetUserID(ctx)
	if !reportmodels.IsAddressable(callerID) {
		return nil, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}
	conversations, err := s.store.ListForUser(ctx, callerID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list conversations")
	}
	return conversations, nil
}

// Messages returns a conversation's history. Members only.
func (s *Service) Messages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	callerID := middleware.GetUserID(ctx)
	if _, err := s.memberConversation(ctx, conversationID, callerID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list messages")
	}
	return messages, nil
}

func (s *Service) memberConversation(ctx context.Context, conversationID uuid.UUID, callerID string) (models.Conversation, error) {
	conv, err := s.store.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Conversation{}, domainerrors.New(domainerrors.CodeNotFound, "conversation not found")
		}
		return models.Conversation{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "storage failure")
	}
	if !conv.HasMember(callerID) {
		return models.Conversation{}, domainerrors.New(domainerrors.CodeUnauthorized, "not a member of this conversation")
	}
	return conv, nil
}

package support

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"idreclaim/pkg/domainerrors"
	"idreclaim/pkg/sentinel"
)

// Store is the persistence surface for support tickets.
type Store interface {
	Save(ctx context.Context, ticket Ticket) error
	ListOpen(ctx context.Context) ([]Ticket, error)
	Close(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type SubmitInput struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Submit files a support ticket. Public endpoint, so the contact email is the
// only identity we have and must be well-formed.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (Ticket, error) {
	email := strings.TrimSpace(input.Email)
	if !govalidator.IsEmail(email) {
		return Ticket{}, domainerrors.New(domainerrors.CodeValidation, "a valid email is required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return Ticket{}, domainerrors.New(domainerrors.CodeValidation, "subject is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return Ticket{}, domainerrors.New(domainerrors.CodeValidation, "body is required")
	}

	ticket := Ticket{
		ID:        uuid.New(),
		Email:     email,
		Subject:   strings.TrimSpace(input.Subject),
		Body:      strings.TrimSpace(input.Body),
		Status:    StatusOpen,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, ticket); err != nil {
		return Ticket{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not save support ticket")
	}
	s.logger.InfoContext(ctx, "support ticket filed", "ticket_id", ticket.ID)
	return ticket, nil
}

// ListOpen returns open tickets, oldest first. Admin surface.
func (s *Service) ListOpen(ctx context.Context) ([]Ticket, error) {
	tickets, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list support tickets")
	}
	return tickets, nil
}

// Close resolves a ticket. Admin surface.
func (s *Service) Close(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Close(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domainerrors.New(domainerrors.CodeNotFound, "support ticket not found")
		}
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "could not close support ticket")
	}
	return nil
}

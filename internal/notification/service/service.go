// Package service persists notifications and pushes them over the realtime
// publisher. It also implements the alert side of the matching pipeline.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"idreclaim/internal/match"
	notifmodels "idreclaim/internal/notification/models"
	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/realtime"
	reportmodels "idreclaim/internal/report/models"
	"idreclaim/pkg/domainerrors"
)

// Store is the persistence surface for notifications.
type Store interface {
	Save(ctx context.Context, n notifmodels.Notification) error
	ListByUser(ctx context.Context, userID string) ([]notifmodels.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	ClearAll(ctx context.Context, userID string) error
}

type Service struct {
	store     Store
	publisher realtime.Publisher
	logger    *slog.Logger
}

func New(store Store, publisher realtime.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// MatchAlert stores a match notification and pushes it. Persistence is the
// at-least-once guarantee; a failed push only degrades to pull delivery, so
// publish errors are logged and swallowed.
func (s *Service) MatchAlert(ctx context.Context, alert match.Alert) error {
	n := notifmodels.Notification{
		ID:       uuid.New(),
		UserID:   alert.RecipientID,
		Title:    "Possible match found",
		Message:  fmt.Sprintf("A %s matching your report was found in %s", alert.DocumentType, alert.Region),
		Category: notifmodels.CategoryMatch,
		Metadata: map[string]string{
			"report_id":     alert.ReportID.String(),
			"counterpart":   alert.CounterpartID,
			"document_type": alert.DocumentType,
			"region":        alert.Region,
		},
		CreatedAt: time.Now().UTC(),
	}
	return s.deliver(ctx, n)
}

// ScanAlert tells an owner their document's QR code was scanned.
func (s *Service) ScanAlert(ctx context.Context, ownerID, documentType, location string) error {
	if !reportmodels.IsAddressable(ownerID) {
		return nil
	}
	message := fmt.Sprintf("Someone scanned the QR code on your %s", documentType)
	if location != "" {
		message = fmt.Sprintf("%s near %s", message, location)
	}
	n := notifmodels.Notification{
		ID:        uuid.New(),
		UserID:    ownerID,
		Title:     "Your document was scanned",
		Message:   message,
		Category:  notifmodels.CategoryScan,
		CreatedAt: time.Now().UTC(),
	}
	return s.deliver(ctx, n)
}

func (s *Service) deliver(ctx context.Context, n notifmodels.Notification) error {
	if err := s.store.Save(ctx, n); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "could not save notification")
	}
	if err := s.publisher.Publish(ctx, realtime.AlertChannel(n.UserID), realtime.EventNotificationNew, n); err != nil {
		s.logger.WarnContext(ctx, "notification publish failed",
			"notification_id", n.ID, "user_id", n.UserID, "error", err)
	}
	return nil
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context) ([]notifmodels.Notification, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	notifications, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list notifications")
	}
	return notifications, nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}
	if err := s.store.MarkAllRead(ctx, userID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "could not update notifications")
	}
	return nil
}

// ClearAll deletes every notification of the caller.
func (s *Service) ClearAll(ctx context.Context) error {
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ClearAll(ctx, userID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "could not clear notifications")
	}
	return nil
}

func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if !reportmodels.IsAddressable(userID) {
		return "", domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}

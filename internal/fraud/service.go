package fraud

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"idreclaim/internal/platform/middleware"
	reportmodels "idreclaim/internal/report/models"
	"idreclaim/pkg/domainerrors"
	"idreclaim/pkg/sentinel"
)

// Store is the persistence surface for fraud reports.
type Store interface {
	Save(ctx context.Context, report Report) error
	ListOpen(ctx context.Context) ([]Report, error)
	MarkReviewed(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type SubmitInput struct {
	SubjectReportID uuid.UUID `json:"subject_report_id"`
	Reason          string    `json:"reason"`
	Details         string    `json:"details"`
}

// Submit files a fraud complaint. Authenticated callers only, so repeated
// abuse of the complaint channel itself stays attributable.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (Report, error) {
	reporterID := middleware.GetUserID(ctx)
	if !reportmodels.IsAddressable(reporterID) {
		return Report{}, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}
	if input.SubjectReportID == uuid.Nil {
		return Report{}, domainerrors.New(domainerrors.CodeValidation, "subject_report_id is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return Report{}, domainerrors.New(domainerrors.CodeValidation, "reason is required")
	}

	report := Report{
		ID:              uuid.New(),
		ReporterID:      reporterID,
		SubjectReportID: input.SubjectReportID,
		Reason:          strings.TrimSpace(input.Reason),
		Details:         strings.TrimSpace(input.Details),
		Status:          StatusOpen,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.Save(ctx, report); err != nil {
		return Report{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not save fraud report")
	}
	s.logger.InfoContext(ctx, "fraud report filed",
		"fraud_report_id", report.ID, "subject_report_id", report.SubjectReportID)
	return report, nil
}

// ListOpen returns unreviewed complaints, oldest first. Admin surface.
func (s *Service) ListOpen(ctx context.Context) ([]Report, error) {
	reports, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list fraud reports")
	}
	return reports, nil
}

// MarkReviewed closes a complaint. Admin surface.
func (s *Service) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	if err := s.store.MarkReviewed(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domainerrors.New(domainerrors.CodeNotFound, "fraud report not found")
		}
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "could not update fraud report")
	}
	return nil
}

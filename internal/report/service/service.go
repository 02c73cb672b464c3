// Package service implements the lost/found report flows: submission with
// synchronous matching, feeds, recovery and deletion.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/report/models"
	"idreclaim/pkg/domainerrors"
	"idreclaim/pkg/sentinel"
)

// LostStore is the persistence surface the service needs for lost reports.
type LostStore interface {
	Save(ctx context.Context, report models.LostReport) error
	FindByID(ctx context.Context, id uuid.UUID) (models.LostReport, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.LostReport, error)
	ListRecent(ctx context.Context, limit int) ([]models.LostReport, error)
	Search(ctx context.Context, query string) ([]models.LostReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.LostStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FoundStore is the persistence surface the service needs for found reports.
type FoundStore interface {
	Save(ctx context.Context, report models.FoundReport) error
	FindByID(ctx context.Context, id uuid.UUID) (models.FoundReport, error)
	ListByFinder(ctx context.Context, finderID string) ([]models.FoundReport, error)
	ListRecent(ctx context.Context, limit int) ([]models.FoundReport, error)
	Search(ctx context.Context, query string) ([]models.FoundReport, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Matcher runs the matching pipeline after a submission lands.
type Matcher interface {
	MatchLost(ctx context.Context, lost models.LostReport) (int, error)
	MatchFound(ctx context.Context, found models.FoundReport) (int, error)
	MatchVaultTarget(ctx context.Context, found models.FoundReport, ownerID string) (int, error)
}

// VaultResolver maps a public vault slug to its owner.
type VaultResolver interface {
	Resolve(ctx context.Context, slug string) (string, error)
}

const (
	defaultRecentLimit = 20
	minSearchQueryLen  = 2
	searchResultCap    = 50
)

type Service struct {
	lost    LostStore
	found   FoundStore
	matcher Matcher
	vaults  VaultResolver
	logger  *slog.Logger
}

func New(lost LostStore, found FoundStore, matcher Matcher, vaults VaultResolver, logger *slog.Logger) *Service {
	return &Service{lost: lost, found: found, matcher: matcher, vaults: vaults, logger: logger}
}

type SubmitLostInput struct {
	DocumentType string  `json:"document_type"`
	FullName     string  `json:"full_name"`
	IDNumber     *string `json:"id_number"`
	DateOfBirth  *string `json:"date_of_birth"`
	PlaceOfBirth *string `json:"place_of_birth"`
	DateOfIssue  *string `json:"date_of_issue"`
	LastLocation string  `json:"last_location"`
	Description  string  `json:"description"`
	ImageURL     *string `json:"image_url"`
}

type SubmitLostResult struct {
	Report     models.LostReport `json:"report"`
	Matched    bool              `json:"matched"`
	MatchCount int               `json:"match_count"`
	Message    string            `json:"message,omitempty"`
}

// SubmitLost records a lost report and immediately runs matching. The save is
// mandatory; matching is best effort and a matching failure degrades the
// response to matched=false rather than failing the submission.
func (s *Service) SubmitLost(ctx context.Context, input SubmitLostInput) (SubmitLostResult, error) {
	ownerID := middleware.GetUserID(ctx)
	if !models.IsAddressable(ownerID) {
		return SubmitLostResult{}, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required to report a lost document")
	}
	if err := requireFields(map[string]string{
		"document_type": input.DocumentType,
		"full_name":     input.FullName,
		"last_location": input.LastLocation,
	}); err != nil {
		return SubmitLostResult{}, err
	}

	report := models.LostReport{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		DocumentType: strings.TrimSpace(input.DocumentType),
		FullName:     strings.TrimSpace(input.FullName),
		IDNumber:     trimPtr(input.IDNumber),
		DateOfBirth:  trimPtr(input.DateOfBirth),
		PlaceOfBirth: trimPtr(input.PlaceOfBirth),
		DateOfIssue:  trimPtr(input.DateOfIssue),
		LastLocation: strings.TrimSpace(input.LastLocation),
		Description:  strings.TrimSpace(input.Description),
		ImageURL:     trimPtr(input.ImageURL),
		Status:       models.StatusLost,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.lost.Save(ctx, report); err != nil {
		return SubmitLostResult{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not save lost report")
	}
	submissionsTotal.WithLabelValues("lost").Inc()

	result := SubmitLostResult{Report: report}
	count, err := s.matcher.MatchLost(ctx, report)
	if err != nil {
		s.logger.ErrorContext(ctx, "matching degraded for lost submission",
			"report_id", report.ID, "error", err)
		return result, nil
	}
	if count > 0 {
		result.Matched = true
		result.MatchCount = count
		result.Message = matchMessage(count)
		result.Report.Status = models.StatusMatched
		matchedSubmissionsTotal.WithLabelValues("lost").Inc()
	}
	return result, nil
}

func matchMessage(count int) string {
	if count == 1 {
		return "Good news! We found a possible match for this document."
	}
	return fmt.Sprintf("Good news! We found %d possible matches for this document.", count)
}

type SubmitFoundInput struct {
	FinderName     string  `json:"finder_name"`
	DocumentType   string  `json:"document_type"`
	FullName       string  `json:"full_name"`
	IDNumber       *string `json:"id_number"`
	DateOfBirth    *string `json:"date_of_birth"`
	PlaceOfBirth   *string `json:"place_of_birth"`
	DateOfIssue    *string `json:"date_of_issue"`
	Region         string  `json:"region"`
	LocationDetail string  `json:"location_detail"`
	ImageURL       string  `json:"image_url"`
	VaultSlug      string  `json:"vault_slug"`
}

type SubmitFoundResult struct {
	Report     models.FoundReport `json:"report"`
	Matched    bool               `json:"matched"`
	MatchCount int                `json:"match_count"`
	Message    string             `json:"message,omitempty"`
}

// SubmitFound records a found report. Finders may be anonymous; an
// authenticated caller is recorded as the finder. A vault slug, when present,
// targets the report at a specific owner and bypasses scored matching.
func (s *Service) SubmitFound(ctx context.Context, input SubmitFoundInput) (SubmitFoundResult, error) {
	finderID := middleware.GetUserID(ctx)
	if finderID == "" {
		finderID = models.AnonymousUser
	}
	if err := requireFields(map[string]string{
		"document_type":   input.DocumentType,
		"full_name":       input.FullName,
		"region":          input.Region,
		"location_detail": input.LocationDetail,
		"image_url":       input.ImageURL,
	}); err != nil {
		return SubmitFoundResult{}, err
	}

	report := models.FoundReport{
		ID:             uuid.New(),
		FinderID:       finderID,
		FinderName:     strings.TrimSpace(input.FinderName),
		DocumentType:   strings.TrimSpace(input.DocumentType),
		FullName:       strings.TrimSpace(input.FullName),
		IDNumber:       trimPtr(input.IDNumber),
		DateOfBirth:    trimPtr(input.DateOfBirth),
		PlaceOfBirth:   trimPtr(input.PlaceOfBirth),
		DateOfIssue:    trimPtr(input.DateOfIssue),
		Region:         strings.TrimSpace(input.Region),
		LocationDetail: strings.TrimSpace(input.LocationDetail),
		ImageURL:       strings.TrimSpace(input.ImageURL),
		Status:         models.FoundAvailable,
		CreatedAt:      time.Now().UTC(),
	}

	if slug := strings.TrimSpace(input.VaultSlug); slug != "" {
		ownerID, err := s.vaults.Resolve(ctx, slug)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return SubmitFoundResult{}, domainerrors.New(domainerrors.CodeNotFound, "unknown vault code")
			}
			return SubmitFoundResult{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not resolve vault code")
		}
		report.TargetOwnerID = &ownerID
	}

	if err := s.found.Save(ctx, report); err != nil {
		return SubmitFoundResult{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not save found report")
	}
	submissionsTotal.WithLabelValues("found").Inc()

	result := SubmitFoundResult{Report: report}
	var count int
	var err error
	if report.TargetOwnerID != nil {
		count, err = s.matcher.MatchVaultTarget(ctx, report, *report.TargetOwnerID)
	} else {
		count, err = s.matcher.MatchFound(ctx, report)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "matching degraded for found submission",
			"report_id", report.ID, "error", err)
		return result, nil
	}
	if count > 0 {
		result.Matched = true
		result.MatchCount = count
		result.Message = matchMessage(count)
		result.Report.Status = models.FoundMatched
		matchedSubmissionsTotal.WithLabelValues("found").Inc()
	}
	return result, nil
}

func (s *Service) GetLost(ctx context.Context, id uuid.UUID) (models.LostReport, error) {
	report, err := s.lost.FindByID(ctx, id)
	if err != nil {
		return models.LostReport{}, notFoundOr(err, "lost report not found")
	}
	return report, nil
}

func (s *Service) GetFound(ctx context.Context, id uuid.UUID) (models.FoundReport, error) {
	report, err := s.found.FindByID(ctx, id)
	if err != nil {
		return models.FoundReport{}, notFoundOr(err, "found report not found")
	}
	return report, nil
}

// Feed is the combined public view over both report kinds.
type Feed struct {
	Lost  []models.LostReport  `json:"lost"`
	Found []models.FoundReport `json:"found"`
}

func (s *Service) Recent(ctx context.Context, limit int) (Feed, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	lost, err := s.lost.ListRecent(ctx, limit)
	if err != nil {
		return Feed{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list recent reports")
	}
	found, err := s.found.ListRecent(ctx, limit)
	if err != nil {
		return Feed{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list recent reports")
	}
	return Feed{Lost: lost, Found: found}, nil
}

func (s *Service) Search(ctx context.Context, query string) (Feed, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchQueryLen {
		return Feed{}, domainerrors.New(domainerrors.CodeValidation, "search query must be at least 2 characters")
	}
	lost, err := s.lost.Search(ctx, query)
	if err != nil {
		return Feed{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "search failed")
	}
	found, err := s.found.Search(ctx, query)
	if err != nil {
		return Feed{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "search failed")
	}
	if len(lost) > searchResultCap {
		lost = lost[:searchResultCap]
	}
	if len(found) > searchResultCap {
		found = found[:searchResultCap]
	}
	return Feed{Lost: lost, Found: found}, nil
}

// Mine lists the caller's own reports on both sides.
func (s *Service) Mine(ctx context.Context) (Feed, error) {
	userID := middleware.GetUserID(ctx)
	if !models.IsAddressable(userID) {
		return Feed{}, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}
	lost, err := s.lost.ListByOwner(ctx, userID)
	if err != nil {
		return Feed{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list reports")
	}
	found, err := s.found.ListByFinder(ctx, userID)
	if err != nil {
		return Feed{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not list reports")
	}
	return Feed{Lost: lost, Found: found}, nil
}

// MarkRecovered closes a lost report. Owner only; RETURNED is terminal, so a
// second call conflicts.
func (s *Service) MarkRecovered(ctx context.Context, id uuid.UUID) (models.LostReport, error) {
	userID := middleware.GetUserID(ctx)
	report, err := s.lost.FindByID(ctx, id)
	if err != nil {
		return models.LostReport{}, notFoundOr(err, "lost report not found")
	}
	if report.OwnerID != userID {
		return models.LostReport{}, domainerrors.New(domainerrors.CodeUnauthorized, "only the owner can mark a report recovered")
	}
	if report.Status == models.StatusReturned {
		return models.LostReport{}, domainerrors.New(domainerrors.CodeConflict, "report already closed")
	}
	if err := s.lost.UpdateStatus(ctx, id, models.StatusReturned); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return models.LostReport{}, domainerrors.New(domainerrors.CodeConflict, "report already closed")
		}
		return models.LostReport{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not update report")
	}
	report.Status = models.StatusReturned
	return report, nil
}

// DeleteLost removes a lost report. Owner only.
func (s *Service) DeleteLost(ctx context.Context, id uuid.UUID) error {
	userID := middleware.GetUserID(ctx)
	report, err := s.lost.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "lost report not found")
	}
	if report.OwnerID != userID {
		return domainerrors.New(domainerrors.CodeUnauthorized, "only the owner can delete a report")
	}
	if err := s.lost.Delete(ctx, id); err != nil {
		return notFoundOr(err, "lost report not found")
	}
	return nil
}

// DeleteFound removes a found report. Only an identified finder can delete
// their own report; anonymous submissions have no deletable owner.
func (s *Service) DeleteFound(ctx context.Context, id uuid.UUID) error {
	userID := middleware.GetUserID(ctx)
	report, err := s.found.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "found report not found")
	}
	if !models.IsAddressable(report.FinderID) || report.FinderID != userID {
		return domainerrors.New(domainerrors.CodeUnauthorized, "only the finder can delete a report")
	}
	if err := s.found.Delete(ctx, id); err != nil {
		return notFoundOr(err, "found report not found")
	}
	return nil
}

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return domainerrors.New(domainerrors.CodeValidation, name+" is required")
		}
	}
	return nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return domainerrors.New(domainerrors.CodeNotFound, message)
	}
	return domainerrors.Wrap(err, domainerrors.CodePersistence, "storage failure")
}

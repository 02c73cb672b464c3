// Package service implements the vault flows: issuing QR slugs, resolving
// scans, and alerting owners.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"idreclaim/internal/platform/middleware"
	reportmodels "idreclaim/internal/report/models"
	"idreclaim/internal/vault/models"
	"idreclaim/pkg/domainerrors"
	"idreclaim/pkg/sentinel"
)

// Store is the persistence surface for vaults.
type Store interface {
	GetOrCreate(ctx context.Context, vault models.Vault) (models.Vault, bool, error)
	FindBySlug(ctx context.Context, slug string) (models.Vault, error)
}

// Alerts is the notification side of a scan event.
type Alerts interface {
	ScanAlert(ctx context.Context, ownerID, documentType, location string) error
}

type Service struct {
	store  Store
	alerts Alerts
	logger *slog.Logger
}

func New(store Store, alerts Alerts, logger *slog.Logger) *Service {
	return &Service{store: store, alerts: alerts, logger: logger}
}

type GetOrCreateResult struct {
	Vault   models.Vault `json:"vault"`
	Created bool         `json:"created"`
}

// GetOrCreate issues the caller's vault, creating it on first call. One vault
// per owner; repeated calls return the same slug.
func (s *Service) GetOrCreate(ctx context.Context) (GetOrCreateResult, error) {
	ownerID := middleware.GetUserID(ctx)
	if !reportmodels.IsAddressable(ownerID) {
		return GetOrCreateResult{}, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}

	slug, err := newSlug()
	if err != nil {
		return GetOrCreateResult{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not generate vault code")
	}
	vault, created, err := s.store.GetOrCreate(ctx, models.Vault{
		Slug:      slug,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return GetOrCreateResult{}, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not create vault")
	}
	return GetOrCreateResult{Vault: vault, Created: created}, nil
}

// Resolve maps a public slug to its owner. Callers get the raw sentinel so
// they can decide how a missing slug surfaces in their own flow.
func (s *Service) Resolve(ctx context.Context, slug string) (string, error) {
	vault, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	return vault.OwnerID, nil
}

// Exists reports whether a slug is registered. Used by the public scan page.
func (s *Service) Exists(ctx context.Context, slug string) (bool, error) {
	_, err := s.store.FindBySlug(ctx, slug)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodePersistence, "could not look up vault")
	}
	return true, nil
}

// NotifyScan tells the owner their QR code was scanned. The scanner stays
// anonymous; only the scan fact, document type and rough location travel.
func (s *Service) NotifyScan(ctx context.Context, slug, documentType, location string) error {
	vault, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domainerrors.New(domainerrors.CodeNotFound, "unknown vault code")
		}
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "could not look up vault")
	}
	if err := s.alerts.ScanAlert(ctx, vault.OwnerID, documentType, location); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "could not notify owner")
	}
	return nil
}

// newSlug returns an opaque 16-character identifier for QR stickers.
func newSlug() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate slug: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

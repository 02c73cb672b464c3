// Package handler exposes the vault endpoints. Scan-facing routes are public
// because they are reached from printed QR codes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/transport/shared"
	"idreclaim/internal/vault/service"
	"idreclaim/pkg/domainerrors"
)

// Service defines the vault operations the handler depends on.
type Service interface {
	GetOrCreate(ctx context.Context) (service.GetOrCreateResult, error)
	Exists(ctx context.Context, slug string) (bool, error)
	NotifyScan(ctx context.Context, slug, documentType, location string) error
}

type Handler struct {
	vaults       Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(vaults Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{vaults: vaults, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/vault", h.handleGetOrCreate)
	})

	r.Get("/v/{slug}", h.handleScanPage)
	r.Post("/v/{slug}/notify", h.handleNotifyScan)
}

func (h *Handler) handleGetOrCreate(w http.ResponseWriter, r *http.Request) {
	result, err := h.vaults.GetOrCreate(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	shared.WriteJSON(w, status, result)
}

func (h *Handler) handleScanPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	exists, err := h.vaults.Exists(r.Context(), slug)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if !exists {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeNotFound, "unknown vault code"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"slug": slug})
}

type notifyRequest struct {
	DocumentType string `json:"document_type"`
	Location     string `json:"location"`
}

func (h *Handler) handleNotifyScan(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var req notifyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.vaults.NotifyScan(r.Context(), slug, req.DocumentType, req.Location); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

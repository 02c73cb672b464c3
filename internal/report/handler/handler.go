// Package handler exposes the report endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/report/models"
	"idreclaim/internal/report/service"
	"idreclaim/internal/transport/shared"
	"idreclaim/pkg/domainerrors"
)

// Service defines the report operations the handler depends on.
type Service interface {
	SubmitLost(ctx context.Context, input service.SubmitLostInput) (service.SubmitLostResult, error)
	SubmitFound(ctx context.Context, input service.SubmitFoundInput) (service.SubmitFoundResult, error)
	GetLost(ctx context.Context, id uuid.UUID) (models.LostReport, error)
	GetFound(ctx context.Context, id uuid.UUID) (models.FoundReport, error)
	Recent(ctx context.Context, limit int) (service.Feed, error)
	Search(ctx context.Context, query string) (service.Feed, error)
	Mine(ctx context.Context) (service.Feed, error)
	MarkRecovered(ctx context.Context, id uuid.UUID) (models.LostReport, error)
	DeleteLost(ctx context.Context, id uuid.UUID) error
	DeleteFound(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	reports      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(reports Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{reports: reports, logger: logger, jwtValidator: jwtValidator}
}

// Register mounts the report routes. Lost-report writes require an identified
// caller; found-report submission accepts anonymous finders; reads are public.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/reports/lost", h.handleSubmitLost)
		r.Post("/reports/lost/{id}/recovered", h.handleMarkRecovered)
		r.Delete("/reports/lost/{id}", h.handleDeleteLost)
		r.Delete("/reports/found/{id}", h.handleDeleteFound)
		r.Get("/me/reports", h.handleMine)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(h.jwtValidator, h.logger))
		r.Post("/reports/found", h.handleSubmitFound)
	})

	r.Get("/reports/recent", h.handleRecent)
	r.Get("/reports/search", h.handleSearch)
	r.Get("/reports/lost/{id}", h.handleGetLost)
	r.Get("/reports/found/{id}", h.handleGetFound)
}

func (h *Handler) handleSubmitLost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input service.SubmitLostInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.reports.SubmitLost(ctx, input)
	if err != nil {
		h.logError(ctx, "submit lost report failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleSubmitFound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input service.SubmitFoundInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.reports.SubmitFound(ctx, input)
	if err != nil {
		h.logError(ctx, "submit found report failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGetLost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	report, err := h.reports.GetLost(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleGetFound(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	report, err := h.reports.GetFound(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	feed, err := h.reports.Recent(r.Context(), limit)
	if err != nil {
		h.logError(r.Context(), "recent feed failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, feed)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	feed, err := h.reports.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, feed)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	feed, err := h.reports.Mine(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, feed)
}

func (h *Handler) handleMarkRecovered(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	report, err := h.reports.MarkRecovered(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleDeleteLost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := h.reports.DeleteLost(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteFound(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := h.reports.DeleteFound(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid report id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if domainerrors.HasCode(err, domainerrors.CodeValidation) || domainerrors.HasCode(err, domainerrors.CodeNotFound) {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
}

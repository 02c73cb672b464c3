// Package handler exposes the notification endpoints. All routes require an
// authenticated caller.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idreclaim/internal/notification/models"
	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/transport/shared"
)

// Service defines the notification operations the handler depends on.
type Service interface {
	List(ctx context.Context) ([]models.Notification, error)
	MarkAllRead(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

type Handler struct {
	notifications Service
	logger        *slog.Logger
	jwtValidator  middleware.JWTValidator
}

func New(notifications Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{notifications: notifications, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/notifications", h.handleList)
		r.Post("/notifications/read-all", h.handleMarkAllRead)
		r.Delete("/notifications", h.handleClearAll)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	shared.WriteJSON(w, http.StatusOK, notifications)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context()); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.ClearAll(r.Context()); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

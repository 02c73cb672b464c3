// Package handler exposes the messaging endpoints. All routes require an
// authenticated caller.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"idreclaim/internal/conversation/models"
	"idreclaim/internal/conversation/service"
	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/transport/shared"
	"idreclaim/pkg/domainerrors"
)

// Service defines the messaging operations the handler depends on.
type Service interface {
	Start(ctx context.Context, reportID uuid.UUID, counterpartID string) (service.StartResult, error)
	Send(ctx context.Context, conversationID uuid.UUID, body string) (models.Message, error)
	ListForUser(ctx context.Context) ([]models.Conversation, error)
	Messages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
}

type Handler struct {
	conversations Service
	logger        *slog.Logger
	jwtValidator  middleware.JWTValidator
}

func New(conversations Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{conversations: conversations, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/conversations", h.handleStart)
		r.Get("/conversations", h.handleList)
		r.Get("/conversations/{id}/messages", h.handleMessages)
		r.Post("/conversations/{id}/messages", h.handleSend)
	})
}

type startRequest struct {
	ReportID      uuid.UUID `json:"report_id"`
	CounterpartID string    `json:"counterpart_id"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.ReportID == uuid.Nil || req.CounterpartID == "" {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "report_id and counterpart_id are required"))
		return
	}

	result, err := h.conversations.Start(r.Context(), req.ReportID, req.CounterpartID)
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

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.conversations.ListForUser(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	shared.WriteJSON(w, http.StatusOK, conversations)
}

type sendRequest struct {
	Body string `json:"body"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var req sendRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	msg, err := h.conversations.Send(r.Context(), id, req.Body)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	messages, err := h.conversations.Messages(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	shared.WriteJSON(w, http.StatusOK, messages)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid conversation id"))
		return uuid.Nil, false
	}
	return id, true
}

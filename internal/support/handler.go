package support

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/transport/shared"
	"idreclaim/pkg/domainerrors"
)

type Handler struct {
	service    *Service
	logger     *slog.Logger
	adminToken string
}

func NewHandler(service *Service, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, adminToken: adminToken}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/support-tickets", h.handleSubmit)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/admin/support-tickets", h.handleListOpen)
		r.Post("/admin/support-tickets/{id}/close", h.handleClose)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var input SubmitInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		shared.WriteError(w, err)
		return
	}
	ticket, err := h.service.Submit(r.Context(), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) handleListOpen(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.ListOpen(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if tickets == nil {
		tickets = []Ticket{}
	}
	shared.WriteJSON(w, http.StatusOK, tickets)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid ticket id"))
		return
	}
	if err := h.service.Close(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package fraud

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
	service      *Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
	adminToken   string
}

func NewHandler(service *Service, jwtValidator middleware.JWTValidator, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator, adminToken: adminToken}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/fraud-reports", h.handleSubmit)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/admin/fraud-reports", h.handleListOpen)
		r.Post("/admin/fraud-reports/{id}/reviewed", h.handleMarkReviewed)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var input SubmitInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		shared.WriteError(w, err)
		return
	}
	report, err := h.service.Submit(r.Context(), input)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) handleListOpen(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListOpen(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if reports == nil {
		reports = []Report{}
	}
	shared.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) handleMarkReviewed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid fraud report id"))
		return
	}
	if err := h.service.MarkReviewed(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

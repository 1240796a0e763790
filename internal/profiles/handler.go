package profiles

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/contaflow/contaflow/internal/permissions"
	"github.com/contaflow/contaflow/internal/platform/httpx"
	"github.com/contaflow/contaflow/internal/shared"
)

// Handler manages profile endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	perms     permissions.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, perms permissions.Middleware) *Handler {
	return &Handler{logger: logger, service: service, perms: perms, validator: validator.New()}
}

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabProfile, permissions.CapRead))
		r.Get("/", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabProfile, permissions.CapEdit))
		r.Put("/", h.upsert)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	p, err := h.service.Get(r.Context(), sess.User(), shared.ScopeFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type upsertRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Document   string `json:"document" validate:"required,max=20"`
	Address    string `json:"address" validate:"max=200"`
	City       string `json:"city" validate:"max=80"`
	PostalCode string `json:"postal_code" validate:"max=10"`
	Phone      string `json:"phone" validate:"max=20"`
	Email      string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := h.service.Upsert(r.Context(), Profile{
		UserID:     sess.User(),
		Scope:      shared.ScopeFromContext(r.Context()),
		Name:       req.Name,
		Document:   req.Document,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
		Email:      req.Email,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "profile not found")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("profiles request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

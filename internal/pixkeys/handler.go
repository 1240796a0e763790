package pixkeys

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/permissions"
	"github.com/contaflow/contaflow/internal/platform/httpx"
	"github.com/contaflow/contaflow/internal/shared"
)

// Handler manages PIX key endpoints.
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

// MountRoutes registers PIX key routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabPixKeys, permissions.CapRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabPixKeys, permissions.CapWrite))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabPixKeys, permissions.CapEdit))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabPixKeys, permissions.CapDelete))
		r.Delete("/{id}", h.delete)
	})
}

type keyRequest struct {
	Label         string  `json:"label" validate:"required,max=120"`
	KeyType       string  `json:"key_type" validate:"required,oneof=cpf cnpj email phone random br_code"`
	KeyValue      string  `json:"key_value" validate:"required,max=512"`
	BankAccountID *string `json:"bank_account_id,omitempty" validate:"omitempty,uuid"`
}

func (req keyRequest) toInput() (Input, error) {
	input := Input{
		Label:    req.Label,
		KeyType:  KeyType(req.KeyType),
		KeyValue: req.KeyValue,
	}
	if req.BankAccountID != nil {
		id, err := uuid.Parse(*req.BankAccountID)
		if err != nil {
			return Input{}, shared.Validation("bank_account_id must be a UUID")
		}
		input.BankAccountID = &id
	}
	return input, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req keyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.respondError(w, err)
		return
	}

	key, err := h.service.Create(r.Context(), sess.User(), shared.ScopeFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, key)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context(), shared.ScopeFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if out == nil {
		out = []PixKey{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	key, err := h.service.Get(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, key)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	var req keyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.respondError(w, err)
		return
	}

	key, err := h.service.Update(r.Context(), shared.ScopeFromContext(r.Context()), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, key)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	if err := h.service.Delete(r.Context(), shared.ScopeFromContext(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "pix key not found")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("pixkeys request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

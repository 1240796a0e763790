package bankaccounts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/permissions"
	"github.com/contaflow/contaflow/internal/platform/httpx"
	"github.com/contaflow/contaflow/internal/shared"
)

// Handler manages bank account endpoints.
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

// MountRoutes registers bank account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabBankAccounts, permissions.CapRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabBankAccounts, permissions.CapWrite))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabBankAccounts, permissions.CapEdit))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabBankAccounts, permissions.CapDelete))
		r.Delete("/{id}", h.delete)
	})
}

type checkingPayload struct {
	BankCode string `json:"bank_code" validate:"required,max=10"`
	Agency   string `json:"agency" validate:"max=10"`
	Number   string `json:"number" validate:"required,max=20"`
}

type cardPayload struct {
	Brand      string       `json:"brand" validate:"required,max=30"`
	LastDigits string       `json:"last_digits" validate:"omitempty,len=4,numeric"`
	Limit      money.Amount `json:"limit"`
	ClosingDay int          `json:"closing_day" validate:"min=1,max=31"`
	DueDay     int          `json:"due_day" validate:"min=1,max=31"`
}

type accountRequest struct {
	Name     string           `json:"name" validate:"required,max=120"`
	Kind     string           `json:"kind" validate:"required,oneof=checking card"`
	Checking *checkingPayload `json:"checking,omitempty"`
	Card     *cardPayload     `json:"card,omitempty"`
}

func (req accountRequest) toInput() Input {
	input := Input{Name: req.Name, Kind: Kind(req.Kind)}
	if req.Checking != nil {
		input.Checking = &CheckingInfo{
			BankCode: req.Checking.BankCode,
			Agency:   req.Checking.Agency,
			Number:   req.Checking.Number,
		}
	}
	if req.Card != nil {
		input.Card = &CardInfo{
			Brand:      req.Card.Brand,
			LastDigits: req.Card.LastDigits,
			Limit:      req.Card.Limit,
			ClosingDay: req.Card.ClosingDay,
			DueDay:     req.Card.DueDay,
		}
	}
	return input
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	acc, err := h.service.Create(r.Context(), sess.User(), shared.ScopeFromContext(r.Context()), req.toInput())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, acc)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context(), shared.ScopeFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if out == nil {
		out = []BankAccount{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	acc, err := h.service.Get(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	acc, err := h.service.Update(r.Context(), shared.ScopeFromContext(r.Context()), id, req.toInput())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "bank account not found")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("bankaccounts request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

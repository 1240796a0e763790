package permissions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contaflow/contaflow/internal/platform/httpx"
	"github.com/contaflow/contaflow/internal/shared"
)

// Handler manages permission grant endpoints. All routes are
// admin-only.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAdmin)
		r.Get("/users/{userID}", h.listForUser)
		r.Put("/", h.grant)
		r.Delete("/", h.revoke)
	})
}

func (h *Handler) listForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	grants, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list permission grants", slog.Any("error", err), slog.String("user_id", userID))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if grants == nil {
		grants = []Grant{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": grants})
}

type grantRequest struct {
	UserID       string       `json:"user_id"`
	Scope        string       `json:"scope"`
	Tab          string       `json:"tab"`
	Capabilities Capabilities `json:"capabilities"`
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if req.UserID == "" {
		httpx.FieldProblem(w, "user_id is required", map[string]string{"user_id": "required"})
		return
	}
	err := h.service.Grant(r.Context(), Grant{
		UserID:       req.UserID,
		Scope:        shared.Scope(req.Scope),
		Tab:          Tab(req.Tab),
		Capabilities: req.Capabilities,
	})
	if err != nil {
		h.logger.Error("grant permission", slog.Any("error", err), slog.String("user_id", req.UserID))
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type revokeRequest struct {
	UserID string `json:"user_id"`
	Scope  string `json:"scope"`
	Tab    string `json:"tab"`
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	err := h.service.Revoke(r.Context(), req.UserID, shared.Scope(req.Scope), Tab(req.Tab))
	if err != nil {
		if err == ErrNotFound {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "permission grant not found")
			return
		}
		h.logger.Error("revoke permission", slog.Any("error", err), slog.String("user_id", req.UserID))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

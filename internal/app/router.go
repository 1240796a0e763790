package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/contaflow/contaflow/internal/accounts"
	"github.com/contaflow/contaflow/internal/auth"
	"github.com/contaflow/contaflow/internal/bankaccounts"
	"github.com/contaflow/contaflow/internal/permissions"
	"github.com/contaflow/contaflow/internal/pixkeys"
	"github.com/contaflow/contaflow/internal/profiles"
	"github.com/contaflow/contaflow/internal/shared"
	"github.com/contaflow/contaflow/internal/users"
	"github.com/contaflow/contaflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler         *auth.Handler
	AccountsHandler     *accounts.Handler
	BankAccountsHandler *bankaccounts.Handler
	PixKeysHandler      *pixkeys.Handler
	ProfilesHandler     *profiles.Handler
	UsersHandler        *users.Handler
	PermissionsHandler  *permissions.Handler
	JobHandler          *jobs.Handler

	Permissions permissions.Middleware
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Scoped resources: every route below reads the X-Scope header.
	r.Group(func(r chi.Router) {
		r.Use(params.Permissions.WithScope)

		r.Route("/accounts", params.AccountsHandler.MountRoutes)
		r.Route("/bank-accounts", params.BankAccountsHandler.MountRoutes)
		r.Route("/pix-keys", params.PixKeysHandler.MountRoutes)
		r.Route("/profile", params.ProfilesHandler.MountRoutes)
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	})

	r.Route("/users", params.UsersHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}

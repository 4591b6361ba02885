package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	authHandler "github.com/jagmag/crm-backend/internal/handler/auth"
	conversationHandler "github.com/jagmag/crm-backend/internal/handler/conversation"
	customerHandler "github.com/jagmag/crm-backend/internal/handler/customer"
	dashboardHandler "github.com/jagmag/crm-backend/internal/handler/dashboard"
	refreshHandler "github.com/jagmag/crm-backend/internal/handler/refresh"
	middlewarePkg "github.com/jagmag/crm-backend/internal/middleware"
	authService "github.com/jagmag/crm-backend/internal/service/auth"
	"github.com/jagmag/crm-backend/internal/service/connector"
	conversationService "github.com/jagmag/crm-backend/internal/service/conversation"
	customerService "github.com/jagmag/crm-backend/internal/service/customer"
	dashboardService "github.com/jagmag/crm-backend/internal/service/dashboard"
	"github.com/jagmag/crm-backend/internal/store"
	"github.com/jagmag/crm-backend/pkg/utils"
)

// Deps bundles the services the router exposes.
type Deps struct {
	Tokens        *authService.Service
	LoginPassword string
	Reader        *conversationService.Reader
	Customers     *customerService.Service
	Dashboards    *dashboardService.Service
	Connector     *connector.Client
	Store         store.Store
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.Ping(r.Context()); err != nil {
			utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]bool{"ready": true})
	})

	// The login password is guessable; everything else needs a token.
	loginLimiter := middlewarePkg.NewIPRateLimiter(rate.Limit(1), 10)

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(loginLimiter.Limit)
			authHandler.New(deps.Tokens, deps.LoginPassword).RegisterRoutes(public)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(middlewarePkg.RequireAuth(deps.Tokens))
			conversationHandler.New(deps.Reader).RegisterRoutes(protected)
			customerHandler.New(deps.Customers).RegisterRoutes(protected)
			dashboardHandler.New(deps.Dashboards).RegisterRoutes(protected)
			refreshHandler.New(deps.Connector).RegisterRoutes(protected)
		})
	})

	return r
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/munitransit/permits-backend/api/controllers"
	"github.com/munitransit/permits-backend/api/middleware"
	"github.com/munitransit/permits-backend/internal/authorizations"
	"github.com/munitransit/permits-backend/internal/cascade"
	"github.com/munitransit/permits-backend/internal/dashboard"
	"github.com/munitransit/permits-backend/internal/history"
	"github.com/munitransit/permits-backend/internal/holders"
	"github.com/munitransit/permits-backend/internal/registrations"
	"github.com/munitransit/permits-backend/internal/staff"
	"github.com/munitransit/permits-backend/internal/types"
	"github.com/munitransit/permits-backend/internal/verification"
	"github.com/munitransit/permits-backend/pkg/auth/session"
	"github.com/munitransit/permits-backend/pkg/config"
	"github.com/munitransit/permits-backend/pkg/db"
	"github.com/munitransit/permits-backend/pkg/logger"
	"github.com/munitransit/permits-backend/pkg/metrics"
	"github.com/munitransit/permits-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	Staff          staff.Service
	Registrations  registrations.Service
	Holders        holders.Service
	Authorizations authorizations.Service
	Types          types.Service
	History        history.Service
	Dashboard      dashboard.Service
	Verification   *verification.Resolver
	Cascade        *cascade.Coordinator
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/verify", controllers.PublicVerify(deps.Verification, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Staff, logg))
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AuthRegister(deps.Staff, logg))
		}
		r.Post("/refresh", controllers.AuthRefresh(deps.Staff, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Staff, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Post("/registrations", controllers.Register(deps.Registrations, logg))

		r.Route("/holders", func(r chi.Router) {
			r.Get("/", controllers.HolderList(deps.Holders, logg))
			r.Get("/{holderId}", controllers.HolderDetail(deps.Holders, logg))
			r.Put("/{holderId}", controllers.HolderUpdate(deps.Holders, logg))
			r.Delete("/{holderId}", controllers.HolderDelete(deps.Cascade, logg))
		})

		r.Route("/authorizations", func(r chi.Router) {
			r.Get("/", controllers.AuthorizationList(deps.Authorizations, logg))
			r.Get("/{authorizationId}", controllers.AuthorizationDetail(deps.Authorizations, logg))
			r.Patch("/{authorizationId}", controllers.AuthorizationUpdate(deps.Authorizations, logg))
			r.Delete("/{authorizationId}", controllers.AuthorizationDelete(deps.Cascade, logg))
			r.Post("/{authorizationId}/code", controllers.AuthorizationGenerateCode(deps.Authorizations, logg))
			r.Post("/{authorizationId}/code/download", controllers.AuthorizationDownloadCode(deps.Authorizations, logg))
			r.Post("/{authorizationId}/document/download", controllers.AuthorizationDownloadDocument(deps.Authorizations, logg))
		})

		r.Route("/types", func(r chi.Router) {
			r.Get("/", controllers.TypeList(deps.Types, logg))
			r.Post("/", controllers.TypeCreate(deps.Types, logg))
			r.Post("/{typeId}/deactivate", controllers.TypeDeactivate(deps.Types, logg))
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", controllers.HistoryList(deps.History, logg))
			r.Get("/counts", controllers.HistoryCounts(deps.History, logg))
			r.Delete("/", controllers.HistoryClear(deps.History, logg))
			r.Post("/delete", controllers.HistoryDeleteSelected(deps.History, logg))
		})

		r.Get("/dashboard", controllers.DashboardOverview(deps.Dashboard, logg))
	})

	return r
}

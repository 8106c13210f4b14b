package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/munitransit/permits-backend/api/routes"
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
	"github.com/munitransit/permits-backend/pkg/migrate"
	"github.com/munitransit/permits-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

	conn := dbClient.DB()

	historyRepo := history.NewRepository(conn)
	recorder := history.NewRecorder(historyRepo, logg)
	historyService, err := history.NewService(historyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create history service", err)
		os.Exit(1)
	}

	typesRepo := types.NewRepository(conn)
	typesService, err := types.NewService(typesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create types service", err)
		os.Exit(1)
	}

	holdersRepo := holders.NewRepository(conn)
	holdersService, err := holders.NewService(holdersRepo, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create holders service", err)
		os.Exit(1)
	}

	authorizationsRepo := authorizations.NewRepository(conn)
	authorizationsService, err := authorizations.NewService(authorizationsRepo, recorder, cfg.Verification.BaseURL)
	if err != nil {
		logg.Error(context.Background(), "failed to create authorizations service", err)
		os.Exit(1)
	}

	registrationsService, err := registrations.NewService(holdersService, authorizationsService, typesRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create registrations service", err)
		os.Exit(1)
	}

	verificationResolver, err := verification.NewResolver(authorizationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create verification resolver", err)
		os.Exit(1)
	}

	cascadeCoordinator, err := cascade.NewCoordinator(holdersRepo, authorizationsRepo, dbClient, recorder, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cascade coordinator", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(conn), historyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	staffService, err := staff.NewService(staff.ServiceParams{
		Repo:           staff.NewRepository(conn),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		App:            cfg.App,
		FeatureFlags:   cfg.FeatureFlags,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create staff service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		SessionManager: sessionManager,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),

		Staff:          staffService,
		Registrations:  registrationsService,
		Holders:        holdersService,
		Authorizations: authorizationsService,
		Types:          typesService,
		History:        historyService,
		Dashboard:      dashboardService,
		Verification:   verificationResolver,
		Cascade:        cascadeCoordinator,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "shutdown did not finish cleanly", err)
		}
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/tablepos/docs/swagger"
	"github.com/ghuser/tablepos/pkg/app"
	"github.com/ghuser/tablepos/pkg/cache"
	"github.com/ghuser/tablepos/pkg/config"
	"github.com/ghuser/tablepos/pkg/database"
	"github.com/ghuser/tablepos/pkg/events"
	"github.com/ghuser/tablepos/pkg/httpx"
	"github.com/ghuser/tablepos/pkg/logger"
	"github.com/ghuser/tablepos/pkg/telemetry"
	"github.com/ghuser/tablepos/pkg/workflows"
	menuApi "github.com/ghuser/tablepos/services/menu/application/api"
	menuServices "github.com/ghuser/tablepos/services/menu/application/services"
	orderApi "github.com/ghuser/tablepos/services/order/application/api"
	orderServices "github.com/ghuser/tablepos/services/order/application/services"
)

// @title			TablePOS API
// @version		1.0
// @description	Point-of-sale order lifecycle and table occupancy for a single restaurant.
// @contact.name	API Support
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/
// @schemes		http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelProviders, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelProviders.Shutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional; log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	appConfig := &app.Application{Logger: log, Metrics: otelProviders.Orders}
	checks := httpx.HealthChecks{}

	if needsDatabase(cfg) {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
		}
		defer pool.Close()
		log.Info("database pool connected")

		eventBus, err := events.NewEventBusWithForwarder(cfg, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer eventBus.Close() //nolint:errcheck

		if err := eventBus.StartForwarder(ctx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1) //nolint:gocritic
		}

		appConfig.Db = pool
		appConfig.EventBus = eventBus
		checks.Database = pool
		checks.EventBus = eventBus
	}

	redisClient, err := cache.NewRedisClient(cfg)
	switch {
	case err == nil:
		defer redisClient.Close() //nolint:errcheck
		appConfig.Redis = redisClient
		checks.Redis = redisClient
		log.Info("redis connected", "role", redisClient.Role())
	case cfg.OccupancyBackend == config.BackendRedis:
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	default:
		log.Warn("redis unavailable, order cache disabled", "error", err)
	}

	menuSvcs := menuServices.New(appConfig, cfg)
	if cfg.SeedMenu {
		if _, err := menuSvcs.Catalog.SeedDefaults(ctx); err != nil {
			log.Error("failed to seed menu", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	}

	orderSvcs, err := orderServices.New(appConfig, cfg, menuSvcs.Catalog)
	if err != nil {
		log.Error("failed to wire order services", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	if err := orderSvcs.Controller.Init(ctx); err != nil {
		log.Error("failed to initialize order lifecycle", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	// Occupancy reconcile runs in this process because the controller owns
	// the in-memory occupancy view. With Temporal the scheduled workflow
	// (triggered by cmd/worker) executes its activity here.
	reconcileCtx, stopReconcile := context.WithCancel(ctx)
	defer stopReconcile()
	if cfg.TemporalEnabled {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		appConfig.TemporalClient = temporalClient

		w := workflows.NewReconcileWorker(temporalClient, &workflows.ReconcileActivities{Reconciler: orderSvcs.Controller})
		if err := w.Start(); err != nil {
			log.Error("failed to start reconcile worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer w.Stop()
		log.Info("reconcile worker started", "task_queue", workflows.ReconcileTaskQueue)
	} else {
		go orderSvcs.Controller.RunReconcileLoop(reconcileCtx, cfg.ReconcileInterval)
	}

	r := httpx.NewRouter(
		httpx.ServerConfigFrom(cfg),
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", otelProviders.Metrics.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	registerRoutes(r, menuSvcs, orderSvcs)

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment,
			"storage", cfg.StorageBackend, "occupancy", cfg.OccupancyBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func needsDatabase(cfg *config.Config) bool {
	return cfg.StorageBackend == config.BackendPostgres || cfg.OccupancyBackend == config.BackendPostgres
}

// registerRoutes mounts all service routes.
// Add each new service's routes here.
func registerRoutes(r chi.Router, menu *menuServices.Services, orders *orderServices.Services) {
	menuApi.MenuRoutes(r, menu)
	orderApi.OrderRoutes(r, orders)
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghuser/tablepos/pkg/cache"
	"github.com/ghuser/tablepos/pkg/config"
	"github.com/ghuser/tablepos/pkg/database"
	"github.com/ghuser/tablepos/pkg/events"
	"github.com/ghuser/tablepos/pkg/logger"
	"github.com/ghuser/tablepos/pkg/telemetry"
	"github.com/ghuser/tablepos/pkg/workflows"
	"github.com/ghuser/tablepos/services/order/application/subscribers"
	orderpg "github.com/ghuser/tablepos/services/order/infrastructure/persistence/postgres"
)

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

	// Events only exist on the postgres outbox.
	if cfg.StorageBackend != config.BackendPostgres {
		log.Error("worker requires postgres storage", "storage", cfg.StorageBackend)
		os.Exit(1)
	}

	ctx := context.Background()

	otelProviders, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelProviders.Shutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected", "role", redisClient.Role())

	// Read-only use: no events are published from here.
	repo := orderpg.NewOrderRepository(pool, nil)
	projector := subscribers.NewCacheProjector(repo, cache.NewOrderCache(redisClient), log)
	if err := projector.Register(ctx, eventBus); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	scheduleCtx, cancelSchedule := context.WithCancel(ctx)
	if cfg.TemporalEnabled {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		go runReconcileSchedule(scheduleCtx, temporalClient, cfg.ReconcileInterval, log)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancelSchedule()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// runReconcileSchedule triggers the occupancy reconcile workflow every
// interval until ctx is cancelled. The activity runs in the API process.
func runReconcileSchedule(ctx context.Context, tc *workflows.TemporalClient, interval time.Duration, log logger.Logger) {
	if interval <= 0 {
		log.Info("reconcile schedule disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("reconcile schedule shutting down")
			return
		case <-ticker.C:
			run, err := tc.TriggerReconcile(ctx)
			if err != nil {
				log.ErrorContext(ctx, "failed to trigger reconcile", "error", err)
				telemetry.CaptureError(err)
				continue
			}
			log.DebugContext(ctx, "reconcile triggered", "run_id", run.GetRunID())
		}
	}
}

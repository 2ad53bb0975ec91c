package app

import (
	"github.com/ghuser/tablepos/pkg/cache"
	"github.com/ghuser/tablepos/pkg/database"
	"github.com/ghuser/tablepos/pkg/events"
	"github.com/ghuser/tablepos/pkg/logger"
	"github.com/ghuser/tablepos/pkg/telemetry"
	"github.com/ghuser/tablepos/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to each service container's New during server initialization.
// Db, EventBus, Redis and TemporalClient are nil when the configured
// backends do not need them. Metrics is nil in tests; recording on it is a no-op.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "order committed", "order_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	Metrics        *telemetry.OrderMetrics
}

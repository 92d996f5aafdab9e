package app

import (
	"github.com/jpsm83/restaurant-pos/pkg/cache"
	"github.com/jpsm83/restaurant-pos/pkg/database"
	"github.com/jpsm83/restaurant-pos/pkg/events"
	"github.com/jpsm83/restaurant-pos/pkg/logger"
	"github.com/jpsm83/restaurant-pos/pkg/workflows"
	"github.com/gorilla/sessions"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to each service's route registration call during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler — use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "recording count", "supplier_good_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store // Redis-backed session store; nil in worker process
}

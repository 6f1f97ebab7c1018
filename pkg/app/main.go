package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/ratapay/pkg/cache"
	"github.com/ghuser/ratapay/pkg/config"
	"github.com/ghuser/ratapay/pkg/database"
	"github.com/ghuser/ratapay/pkg/events"
	"github.com/ghuser/ratapay/pkg/logger"
	"github.com/ghuser/ratapay/services/payment/infrastructure/ratapay"
)

// Application holds shared infrastructure dependencies for all services.
// Pass it to each service's route registration during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler; use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "transaction created", "ref", ref)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config       *config.Config
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	Ratapay      *ratapay.Client // nil in worker process
	SessionStore sessions.Store  // Redis-backed session store; nil in worker process
}

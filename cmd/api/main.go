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

	_ "github.com/ghuser/ratapay/docs/swagger"
	"github.com/ghuser/ratapay/pkg/app"
	"github.com/ghuser/ratapay/pkg/auth"
	"github.com/ghuser/ratapay/pkg/cache"
	"github.com/ghuser/ratapay/pkg/config"
	"github.com/ghuser/ratapay/pkg/database"
	"github.com/ghuser/ratapay/pkg/events"
	"github.com/ghuser/ratapay/pkg/httpx"
	"github.com/ghuser/ratapay/pkg/logger"
	"github.com/ghuser/ratapay/pkg/telemetry"
	paymentApi "github.com/ghuser/ratapay/services/payment/application/api"
)

// The gateway accepts checkout requests, signs them for Ratapay and records
// the resulting transactions.
//
// @title			Ratapay Checkout Gateway
// @version		1.0
// @description	Signs merchant checkouts for Ratapay and records the resulting transactions.
// @BasePath		/api
//
// @securityDefinitions.apikey	OperatorKey
// @in							header
// @name						Authorization
// @description				Back-office key sent as "Bearer <OPERATOR_API_KEY>"
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
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional; log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

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

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	ratapayClient, err := app.NewRatapayClient(cfg, redisClient, log)
	if err != nil {
		log.Error("failed to initialize ratapay client", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	log.Info("ratapay client ready",
		"base_url", ratapayClient.Config().APIBaseURL(),
		"sandbox", cfg.RatapaySandbox,
		"token_store", cfg.RatapayTokenStore,
	)

	sessionStore := auth.NewSessionStore(
		redisClient.Client(),
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
	)
	log.Info("session store initialized", "backend", "redis")
	if cfg.OperatorAPIKey == "" {
		log.Warn("OPERATOR_API_KEY is not set, /api/transactions will reject every request")
	}

	appConfig := &app.Application{
		Config:       cfg,
		Db:           pool,
		Logger:       log,
		EventBus:     eventBus,
		Redis:        redisClient,
		Ratapay:      ratapayClient,
		SessionStore: sessionStore,
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimit:          cfg.RateLimit,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(
		httpx.Check{Name: "database", Checker: pool},
		httpx.Check{Name: "redis", Checker: redisClient},
		httpx.Check{Name: "event_bus", Checker: eventBus},
		httpx.Check{Name: "ratapay", Checker: ratapayClient, Optional: true},
	))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
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

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	paymentApi.PaymentRoutes(r, a)
}

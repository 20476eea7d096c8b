package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"acuitysync/internal/appointments/handler"
	"acuitysync/pkg/config"
	"acuitysync/pkg/contracts"
	httputil "acuitysync/pkg/http"
	"acuitysync/pkg/middleware"
	"acuitysync/pkg/sealer"

	"github.com/julienschmidt/httprouter"
)

// Application wires three surfaces onto one listener: unauthenticated health
// probes, the provider-signed webhook ingest, and the session-authenticated
// storefront read API. Each surface carries its own middleware stack.
type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.KeyRateLimiter
	healthHandler    http.Handler
	webhookHandler   http.Handler
	storeHandler     http.Handler
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(appHandler contracts.Handler, s *sealer.Sealer) {
	a.setHealthHandler()
	a.setWebhookHandler(appHandler)
	a.setStoreHandler(appHandler, s)
	a.setAppServer()
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	healthHandler := handler.NewHealthHandler(a.cfg.Client.Mongo, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setWebhookHandler(appHandler contracts.Handler) {
	webhookRouter := httprouter.New()
	appHandler.RegisterWebhookRoutes(webhookRouter)

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)

	var h http.Handler = webhookRouter
	// Partial-failure acks stay out of the replay cache so redeliveries
	// reprocess the failed items.
	h = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key", httputil.ReplayableBatch)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	if a.cfg.AcuityAPIKey != "" {
		h = middleware.AcuitySignatureVerification(a.cfg.AcuityAPIKey, a.cfg.Log)(h)
		a.cfg.Log.Info("Webhook signature verification enabled")
	} else {
		a.cfg.Log.Warn("Webhook signature verification disabled: no API key configured")
	}
	h = middleware.ContentTypeValidation(a.cfg.Log, "application/json")(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize), a.cfg.Log)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.webhookHandler = h
	a.cfg.Log.Info("Webhook endpoints configured with full security middleware stack")
}

func (a *Application) setStoreHandler(appHandler contracts.Handler, s *sealer.Sealer) {
	storeRouter := httprouter.New()
	appHandler.RegisterStoreRoutes(storeRouter)

	a.rateLimiter = middleware.NewKeyRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.CustomerKeyExtractor,
		a.cfg.Log,
	)

	var h http.Handler = storeRouter
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.RateLimit(a.rateLimiter)(h)
	h = middleware.CustomerAuth(s, a.cfg.Log)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.storeHandler = h
	a.cfg.Log.Info("Store endpoints configured with session authentication")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/webhooks/", a.webhookHandler)
	mux.Handle("/store/", a.storeHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}

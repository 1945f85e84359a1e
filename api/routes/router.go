package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/closingdesk/commission-backend/api/controllers"
	payoutcontrollers "github.com/closingdesk/commission-backend/api/controllers/payouts"
	"github.com/closingdesk/commission-backend/api/middleware"
	"github.com/closingdesk/commission-backend/api/responses"
	"github.com/closingdesk/commission-backend/internal/payouts"
	"github.com/closingdesk/commission-backend/pkg/config"
	"github.com/closingdesk/commission-backend/pkg/db"
	pkgerrors "github.com/closingdesk/commission-backend/pkg/errors"
	"github.com/closingdesk/commission-backend/pkg/logger"
	"github.com/closingdesk/commission-backend/pkg/metrics"
	"github.com/closingdesk/commission-backend/pkg/redis"
)

// NewRouter wires the middleware chain and route table. redisClient may be nil when
// redis is not configured; idempotency replay is then disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	payoutService payouts.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(httpMetrics),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, "method not allowed"))
	})

	var (
		cachePinger      controllers.Pinger
		idempotencyStore redis.IdempotencyStore
	)
	if redisClient != nil {
		cachePinger = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})
	r.Method(http.MethodGet, "/metrics", controllers.Metrics(gatherer))

	// Groups share the top-level tree so unsupported methods get a 405 before auth runs.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg))

		r.Post("/api/create-enhanced-payout", payoutcontrollers.CreateEnhanced(payoutService, logg))
		r.Post("/api/schedule-payout", payoutcontrollers.Schedule(payoutService, logg))
		r.Post("/api/update-payout-status", payoutcontrollers.UpdateStatus(payoutService, logg))
		r.Post("/api/process-ach-payment", payoutcontrollers.ProcessACH(payoutService, logg))

		r.Get("/api/payouts", payoutcontrollers.List(payoutService, logg))
		r.Get("/api/payouts/{payoutId}", payoutcontrollers.Get(payoutService, logg))
		r.Get("/api/transactions/{transactionId}/commission-preview", payoutcontrollers.Preview(payoutService, logg))
		r.Get("/api/transactions/{transactionId}/events", payoutcontrollers.Events(payoutService, logg))
	})

	return r
}

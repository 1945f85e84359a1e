package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/closingdesk/commission-backend/api/routes"
	"github.com/closingdesk/commission-backend/internal/ach"
	"github.com/closingdesk/commission-backend/internal/audit"
	"github.com/closingdesk/commission-backend/internal/commission"
	"github.com/closingdesk/commission-backend/internal/payouts"
	"github.com/closingdesk/commission-backend/internal/transactions"
	"github.com/closingdesk/commission-backend/pkg/config"
	"github.com/closingdesk/commission-backend/pkg/db"
	"github.com/closingdesk/commission-backend/pkg/enums"
	"github.com/closingdesk/commission-backend/pkg/logger"
	"github.com/closingdesk/commission-backend/pkg/metrics"
	"github.com/closingdesk/commission-backend/pkg/migrate"
	"github.com/closingdesk/commission-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "commission-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "commission-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
	} else {
		logg.Warn(ctx, "redis not configured, idempotency and creation locks disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	payoutMetrics := metrics.NewPayoutMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	registry := commission.DefaultRegistry()
	if cfg.Commission.PlansFile != "" {
		registry, err = commission.LoadRegistryFile(cfg.Commission.PlansFile)
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"plans_file": cfg.Commission.PlansFile,
			"plans":      registry.Len(),
		}), "commission plans loaded")
	}

	policy, err := enums.ParseCalculationPolicy(cfg.Commission.Policy)
	if err != nil {
		return err
	}
	provider, err := enums.ParseACHProvider(cfg.ACH.DefaultProvider)
	if err != nil {
		return err
	}
	enabled := make([]enums.ACHProvider, 0, len(cfg.ACH.Providers))
	for _, name := range cfg.ACH.Providers {
		p, err := enums.ParseACHProvider(name)
		if err != nil {
			return err
		}
		enabled = append(enabled, p)
	}

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()), time.Now)
	if err != nil {
		return err
	}

	var lock payouts.CreationLock
	if redisClient != nil {
		lock = payouts.NewRedisCreationLock(redisClient, 0)
	}

	payoutService, err := payouts.NewService(payouts.ServiceParams{
		Tx:           dbClient,
		Payouts:      payouts.NewRepository(dbClient.DB()),
		Transactions: transactions.NewRepository(dbClient.DB()),
		Audit:        auditService,
		Registry:     registry,
		Policy:       policy,
		Dispatcher:   ach.NewSimulatedDispatcher(time.Now, enabled...),
		Lock:         lock,
		Metrics:      payoutMetrics,
		Logger:       logg,
		ACH: payouts.ACHSettings{
			DefaultProvider: provider,
			Minimum:         cfg.ACH.Minimum(),
			TestFailureRate: cfg.ACH.TestFailureRate,
		},
		Clock: time.Now,
		Rand:  rand.Float64,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"policy": string(policy),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, reg, httpMetrics, payoutService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-cds/cmd/mainconfig"
	"github.com/wolfman30/clinic-cds/internal/api/router"
	"github.com/wolfman30/clinic-cds/internal/app/bootstrap"
	"github.com/wolfman30/clinic-cds/internal/cds/knowledge"
	appconfig "github.com/wolfman30/clinic-cds/internal/config"
	"github.com/wolfman30/clinic-cds/internal/events"
	"github.com/wolfman30/clinic-cds/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-cds/internal/http/middleware"
	"github.com/wolfman30/clinic-cds/internal/notify"
	"github.com/wolfman30/clinic-cds/internal/observability/metrics"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting clinic-cds API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var clients mainconfig.Clients
	if cfg.UsesAWS() {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		clients = mainconfig.NewClients(awsCfg, cfg)
	}

	table, tableSource, err := bootstrap.LoadDefaultTable(ctx, cfg, s3Client(clients), logger)
	if err != nil {
		logger.Error("failed to load symptom table", "error", err)
		os.Exit(1)
	}
	logger.Info("symptom table loaded", "source", tableSource, "keywords", len(table))

	pool, sqlDB, err := bootstrap.OpenPostgres(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		defer sqlDB.Close()
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsHandler, registry, cdsMetrics := setupMetrics()
	comps := bootstrap.BuildService(cfg, bootstrap.ServiceDeps{
		Table:   table,
		Redis:   redisClient,
		Pool:    pool,
		SQL:     sqlDB,
		Metrics: cdsMetrics,
	}, logger)

	if comps.Outbox != nil {
		startAlertDelivery(ctx, cfg, comps, clients, logger)
	}

	routerCfg := &router.Config{
		Logger:             logger,
		CDS:                handlers.NewCDSHandler(comps.Service, logger),
		AdminStats:         handlers.NewAdminStatsHandler(registry, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		HealthChecks:       map[string]router.HealthCheck{},
	}
	if comps.Overrides != nil {
		routerCfg.AdminKnowledge = handlers.NewAdminKnowledgeHandler(comps.Overrides, auditor(comps), logger)
		routerCfg.HealthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if comps.Audit != nil {
		routerCfg.AdminAudit = handlers.NewAdminAuditHandler(comps.Audit, logger)
	}
	if pool != nil {
		routerCfg.HealthChecks["postgres"] = pool.Ping
	}
	if cfg.RateLimitRPS > 0 {
		limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go limiter.RunCleanup(ctx, 5*time.Minute)
		routerCfg.RateLimiter = limiter
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupMetrics registers the CDS collectors on a dedicated registry alongside
// the Go and process collectors.
func setupMetrics() (http.Handler, *prometheus.Registry, *metrics.CDSMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cdsMetrics := metrics.NewCDSMetrics(registry)
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return handler, registry, cdsMetrics
}

func startAlertDelivery(ctx context.Context, cfg *appconfig.Config, comps bootstrap.Components, clients mainconfig.Clients, logger *logging.Logger) {
	email, provider := bootstrap.BuildEmailSender(cfg, sesClient(clients), logger)
	handler := bootstrap.BuildAlertHandler(cfg, bootstrap.AlertDeps{
		Email:     email,
		Queue:     sqsClient(clients),
		Processed: comps.Processed,
	}, logger)
	if handler == nil {
		logger.Warn("no risk alert sinks configured; critical alerts stay in the outbox")
		return
	}
	deliverer := events.NewDeliverer(comps.Outbox, handler, logger).
		WithBatchSize(int32(cfg.OutboxBatchSize)).
		WithInterval(cfg.OutboxPollInterval).
		WithMaxAttempts(cfg.OutboxMaxAttempts)
	go deliverer.Start(ctx)
	if comps.Processed != nil {
		go comps.Processed.RunPruner(ctx, cfg.ProcessedRetention, time.Hour, logger)
	}
	logger.Info("risk alert delivery started", "email_provider", provider, "interval", cfg.OutboxPollInterval.String())
}

// The helpers below keep nil clients out of interface values.

func s3Client(c mainconfig.Clients) knowledge.S3API {
	if c.S3 == nil {
		return nil
	}
	return c.S3
}

func sesClient(c mainconfig.Clients) notify.SESAPI {
	if c.SES == nil {
		return nil
	}
	return c.SES
}

func sqsClient(c mainconfig.Clients) events.SQSAPI {
	if c.SQS == nil {
		return nil
	}
	return c.SQS
}

func auditor(comps bootstrap.Components) handlers.KnowledgeAuditor {
	if comps.Audit == nil {
		return nil
	}
	return comps.Audit
}

// Package main provides the advisor server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/hivelab/hive-advisor-go/internal/advisor"
	"github.com/hivelab/hive-advisor-go/internal/alias"
	"github.com/hivelab/hive-advisor-go/internal/catalog"
	"github.com/hivelab/hive-advisor-go/internal/config"
	"github.com/hivelab/hive-advisor-go/internal/logger"
	"github.com/hivelab/hive-advisor-go/internal/metrics"
	"github.com/hivelab/hive-advisor-go/internal/ratelimit"
	"github.com/hivelab/hive-advisor-go/internal/retrieval"
	"github.com/hivelab/hive-advisor-go/internal/router"
	"github.com/hivelab/hive-advisor-go/internal/sentry"
	"github.com/hivelab/hive-advisor-go/internal/session"
	"github.com/hivelab/hive-advisor-go/internal/storage"
	"github.com/hivelab/hive-advisor-go/internal/warmup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting Hive Advisor Server")

	// Initialize error tracking (token-gated, disabled when unset)
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     cfg.SentryRelease,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize error tracking")
	} else if sentry.Enabled() {
		log.Info("Error tracking enabled")
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to the catalog database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Load the knowledge base files into the database. A failed load
	// is not fatal: the previously persisted catalog keeps serving.
	if err := catalog.Ingest(context.Background(), db, cfg.CatalogPath(), cfg.PlanPath()); err != nil {
		log.WithError(err).Warn("Catalog ingest failed, serving previously loaded catalog")
	}
	if count, err := db.CountCourses(context.Background()); err == nil {
		log.WithField("courses", count).Info("Course catalog ready")
	}

	// Create Prometheus registry
	registry := prometheus.NewRegistry()

	// Register Go and process collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	// Create metrics
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create the two retrieval stores and index them in the background
	structureStore := retrieval.NewKeywordStore(retrieval.StoreStructure, log)
	detailsStore := retrieval.NewKeywordStore(retrieval.StoreDetails, log)
	warmup.RunInBackground(db, structureStore, detailsStore, log)
	log.Info("Background index build started")

	// Load the alias table; fall back to the built-in rules when the
	// file is absent or empty
	aliasTable, err := alias.LoadTable(cfg.AliasTablePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to load alias table")
	}
	if aliasTable.Len() == 0 {
		aliasTable = alias.DefaultTable()
		log.Info("No alias table configured, using built-in aliases")
	}
	log.WithField("aliases", aliasTable.Len()).Info("Alias table loaded")
	resolver := alias.NewResolver(aliasTable)

	// Load the routing rule table (built-in rules when absent)
	rules, err := router.LoadRuleSet(cfg.RuleTablePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to load routing rules")
	}
	log.Info("Routing rules loaded")

	// Create the session store with metrics callbacks
	sessions := session.NewStore(cfg.HistoryCap)
	sessions.OnEvict(func() { m.HistoryEvictionsTotal.Inc() })
	sessions.OnCount(func(count int) { m.ActiveSessions.Set(float64(count)) })

	// Create the per-user rate limiter
	limiter := ratelimit.NewPerKey(cfg.UserRateLimitBurst, cfg.UserRateLimitRefillPerSec, ratelimit.DefaultCleanupPeriod)
	limiter.OnDrop(func(string) { m.RateLimiterDropped.WithLabelValues("user").Inc() })
	defer limiter.Stop()

	// Assemble the advising engine
	facade := retrieval.NewFacade(structureStore, detailsStore, cfg.RetrievalTopN, log, m)
	engine := advisor.New(advisor.Config{
		Sessions:           sessions,
		Rules:              rules,
		Resolver:           resolver,
		Facade:             facade,
		Catalog:            catalog.New(db),
		DetectionThreshold: cfg.DetectionThreshold,
		Metrics:            m,
		Logger:             log,
	})
	log.Info("Advisor engine created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	ginRouter := gin.New()

	// Add middleware
	ginRouter.Use(gin.Recovery())
	if sentry.Enabled() {
		ginRouter.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	ginRouter.Use(securityHeadersMiddleware())
	ginRouter.Use(loggingMiddleware(log))

	// Setup routes
	setupRoutes(ginRouter, cfg, engine, limiter, db, structureStore, detailsStore, sessions, m, registry, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      ginRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Periodic index rebuild goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in index rebuild goroutine")
			}
		}()
		reindexPeriodically(ctx, db, structureStore, detailsStore, log)
	}()

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Cancel context to stop background goroutines
	cancel()

	// Wait for goroutines to finish (with timeout)
	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Close database connection
	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}

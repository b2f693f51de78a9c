package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/strydehq/stryde/pkg/api"
	"github.com/strydehq/stryde/pkg/audit"
	"github.com/strydehq/stryde/pkg/authz"
	"github.com/strydehq/stryde/pkg/config"
	"github.com/strydehq/stryde/pkg/observability"
	"github.com/strydehq/stryde/pkg/orgs"
	"github.com/strydehq/stryde/pkg/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnLifetime)
	if err := db.Ping(); err != nil {
		logger.WithError(err).Error("failed to ping database")
		os.Exit(1)
	}

	sessions, err := session.NewRedisStore(session.RedisConfig{
		URL:      cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.WithError(err).Error("failed to connect to redis")
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	store := orgs.NewPostgresStore(db)
	resolver := authz.NewResolver(sessions, store)
	guard := authz.NewGuard(resolver, logger, metrics)
	summaries := authz.NewSummaryService(store, cfg.Authz.SummaryCacheTTL, metrics)
	auditLog := audit.NewDBRecorder(db, logger)
	members := orgs.NewService(store, logger).WithAudit(auditLog)

	router := mux.NewRouter()
	if cfg.Observability.OTelEnabled {
		observability.InitTracing()
		router.Use(observability.TraceRequests(cfg.Observability.OTelServiceName))
	}
	api.NewServer(guard, summaries, members, logger, metrics).
		WithAuditLog(auditLog).
		RegisterRoutes(router)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Authz.InvitationCleanupSchedule, func() {
		if err := members.CleanupExpiredInvitations(context.Background()); err != nil {
			logger.WithError(err).Error("invitation cleanup failed")
		}
	})
	if err != nil {
		logger.WithError(err).Error("failed to schedule invitation cleanup")
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/api"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/metrics"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/repository/postgres"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/config"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/logger"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/loginguard"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.NewAPIMetrics()

	// --- Start Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metricsMux,
	}

	go func() {
		log.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Audit Logger ---
	auditLog, err := audit.New(cfg.AuditLogDir,
		audit.WithDebug(cfg.DebugLogging),
		audit.WithObserver(func(c audit.Category) {
			m.AuditEventsTotal.WithLabelValues(string(c)).Inc()
		}),
	)
	if err != nil {
		log.Error("failed to initialize audit logger", "error", err)
		os.Exit(1)
	}

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Error("postgres is not reachable", "error", err)
		os.Exit(1)
	}
	if err := auditLog.Database("connect", "success", nil); err != nil {
		log.Error("failed to append database audit event", "error", err)
	}

	// --- Initialize Repositories ---
	userRepo := postgres.NewUserRepository(db, log, auditLog)
	studentRepo := postgres.NewStudentRepository(db, log, auditLog)

	// --- Initialize Use Cases and Guard ---
	guard := loginguard.New(cfg.MaxLoginAttempts, cfg.LoginBlockWindow)
	authService := usecase.NewAuthService(userRepo, log, cfg.JWTSecret, cfg.JWTExpiry, cfg.BcryptCost)
	studentService := usecase.NewStudentService(studentRepo, log)

	// --- Initialize API Server ---
	router := api.NewRouter(cfg, log, auditLog, m, guard, authService, studentService)
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting api server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("api server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}

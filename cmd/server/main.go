package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubciclismoepn/backend/config"
	"github.com/clubciclismoepn/backend/internal/email"
	"github.com/clubciclismoepn/backend/internal/health"
	"github.com/clubciclismoepn/backend/internal/infrastructure/postgres"
	ctxlog "github.com/clubciclismoepn/backend/internal/log"
	"github.com/clubciclismoepn/backend/internal/metrics"
	"github.com/clubciclismoepn/backend/internal/scheduler"
	"github.com/clubciclismoepn/backend/internal/session"
	httptransport "github.com/clubciclismoepn/backend/internal/transport/http"
	"github.com/clubciclismoepn/backend/internal/transport/http/handler"
	"github.com/clubciclismoepn/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRecoveryTokenRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)

	issuer := session.NewIssuer([]byte(cfg.JWTSecret), cfg.SessionTTL())
	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, issuer)
	recoveryUsecase := usecase.NewRecoveryUsecase(userRepo, tokenRepo, emailSender, cfg.Location(), logger)
	notificationUsecase := usecase.NewNotificationUsecase(notificationRepo)

	authHandler := handler.NewAuthHandler(authUsecase, recoveryUsecase, logger)
	notificationHandler := handler.NewNotificationHandler(notificationUsecase, logger)

	// Background processes live for the whole process and stop on signal.
	reminder := scheduler.NewReminder(
		eventRepo,
		notificationRepo,
		logger,
		cfg.ReminderInterval(),
		cfg.ReminderLead(),
		cfg.Location(),
	)
	go reminder.Start(ctx)

	janitor := scheduler.NewJanitor(tokenRepo, logger, 10*time.Minute)
	go janitor.Start(ctx)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, notificationHandler, issuer, userRepo),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}

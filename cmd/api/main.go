package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/status-portal/internal/api/http"
	"github.com/spec-kit/status-portal/internal/api/http/handlers"
	"github.com/spec-kit/status-portal/internal/auth"
	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/events"
	"github.com/spec-kit/status-portal/internal/observability"
	"github.com/spec-kit/status-portal/internal/ratelimit"
	"github.com/spec-kit/status-portal/internal/repository"
	"github.com/spec-kit/status-portal/internal/service"
	"github.com/spec-kit/status-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	defaults, err := config.LoadDocumentDefaults(cfg.Storage.SeedFile)
	if err != nil {
		logger.Fatal("failed to load document defaults", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	httpClient := &http.Client{Timeout: cfg.Storage.IOTimeout}
	opened, err := repository.Open(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Fatal("failed to open document storage", zap.Error(err))
	}
	defer opened.Close()
	logger.Info("document storage selected",
		zap.String("backend", opened.Repository.Name()),
		zap.Bool("ephemeral", cfg.Storage.Ephemeral))

	store := service.NewDocumentStore(service.StoreDependencies{
		Repository:  opened.Repository,
		Defaults:    defaults,
		IOTimeout:   cfg.Storage.IOTimeout,
		MaxAttempts: cfg.Storage.MaxAttempts,
		Logger:      logger,
		Metrics:     metrics,
	})

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(logger, cfg.Notification, nil)
	notifier := worker.StartNotificationWorker(dispatcher, notifications, logger)
	defer notifier.Stop()

	messageService := service.NewMessageService(service.MessageDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	statusService := service.NewStatusService(service.StatusDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := httptransport.NewServer(cfg, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App, opened.Repository.Name(), store),
		Messages:  handlers.NewMessagesHandler(messageService),
		Status:    handlers.NewStatusHandler(statusService),
		StaffGate: auth.StaffGate(cfg.Auth),
		Limiter:   ratelimit.New(cfg.RateLimit),
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORS:      cfg.CORS,
	})
	if !cfg.Auth.Enabled() {
		logger.Warn("staff routes are not protected; set AUTH_JWT_SECRET to require tokens")
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

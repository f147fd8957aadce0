package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-ticket-service/internal/api/http"
	"github.com/spec-kit/support-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/support-ticket-service/internal/auth"
	"github.com/spec-kit/support-ticket-service/internal/classifier"
	"github.com/spec-kit/support-ticket-service/internal/config"
	"github.com/spec-kit/support-ticket-service/internal/events"
	"github.com/spec-kit/support-ticket-service/internal/observability"
	"github.com/spec-kit/support-ticket-service/internal/persistence"
	"github.com/spec-kit/support-ticket-service/internal/repository"
	"github.com/spec-kit/support-ticket-service/internal/repository/memory"
	"github.com/spec-kit/support-ticket-service/internal/service"
	"github.com/spec-kit/support-ticket-service/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		uow   repository.UnitOfWork
		repos repository.Repositories
	)
	readiness := map[string]handlers.Pinger{"redis": redis}
	if pg.Enabled() {
		uow = repository.NewPostgresUnitOfWork(pg.PoolHandle())
		repos = repository.NewPostgresRepositories(pg.PoolHandle())
		readiness["postgres"] = pg
	} else {
		logger.Warn("running on the in-memory store; data is lost on restart")
		store := memory.New()
		uow = store
		repos = store.Repositories()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	if cfg.Notification.RelayEnabled {
		worker.NewNotificationRelay(redis, cfg.Notification, logger, metrics).Register(dispatcher)
	}

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		UnitOfWork: uow,
		Repos:      repos,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		UnitOfWork: uow,
		Repos:      repos,
		Classifier: classifier.NewRuleBased(repos.Articles),
		Notifier:   notificationService,
		Logger:     logger,
		Metrics:    metrics,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMiddleware := auth.NewAuthMiddleware(tokens, repos.Users)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ReadTimeout:           cfg.App.RequestTimeout,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

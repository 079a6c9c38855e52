package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/pardisbank/statement-registry/internal/api/http"
	"github.com/pardisbank/statement-registry/internal/api/http/handlers"
	"github.com/pardisbank/statement-registry/internal/auth"
	"github.com/pardisbank/statement-registry/internal/config"
	"github.com/pardisbank/statement-registry/internal/directory"
	"github.com/pardisbank/statement-registry/internal/events"
	"github.com/pardisbank/statement-registry/internal/observability"
	"github.com/pardisbank/statement-registry/internal/persistence"
	"github.com/pardisbank/statement-registry/internal/repository"
	"github.com/pardisbank/statement-registry/internal/service"
	"github.com/pardisbank/statement-registry/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	registrationRepo := repository.NewRegistrationRepository(pool)
	historyRepo := repository.NewStatementHistoryRepository(pool)
	branchRepo := repository.NewBranchRepository(pool)
	issuerRepo := repository.NewIssuerRepository(pool)

	dirClient := directory.NewClient(cfg.Directory, nil, logger)
	cascade := auth.NewCascade(dirClient, cfg.Directory, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Cascade:   cascade,
		Directory: dirClient,
		Metrics:   metrics,
		Logger:    logger,
	})
	registrationService := service.NewRegistrationService(service.RegistrationDependencies{
		RegistrationRepo: registrationRepo,
		HistoryRepo:      historyRepo,
		Cache:            redis,
		CacheTTL:         time.Duration(cfg.Auth.VerifyCacheTTLSecs) * time.Second,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
	})
	bulkService := service.NewBulkImportService(registrationService, dispatcher, metrics, logger)
	branchService := service.NewBranchService(branchRepo)
	issuerService := service.NewIssuerService(issuerRepo, branchRepo, authService)

	worker.StartHistoryWorker(dispatcher, historyRepo, logger)

	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Registrations:  handlers.NewRegistrationsHandler(registrationService, bulkService),
		Branches:       handlers.NewBranchesHandler(branchService),
		Issuers:        handlers.NewIssuersHandler(issuerService, authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

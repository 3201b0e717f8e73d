package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/lifecycle"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/search"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	orgRepo := repository.NewOrganizationRepository(pool)
	authorizationRepo := repository.NewAuthorizationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	contractRepo := repository.NewContractRepository(pool)
	timeSpentRepo := repository.NewTimeSpentRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	labelRepo := repository.NewLabelRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	authorizer := auth.NewAuthorizer(authorizationRepo)

	engine := lifecycle.NewEngine(lifecycle.Dependencies{
		Tickets:            ticketRepo,
		Messages:           messageRepo,
		Agents:             userRepo,
		Authorizer:         authorizer,
		Dispatcher:         dispatcher,
		Logger:             logger,
		AutoAssignOnCreate: cfg.Lifecycle.AutoAssignOnCreate,
	})
	worker.StartLifecycleWorker(engine)

	authService := service.NewAuthService(cfg.Auth, userRepo, authorizationRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		MessageRepo:   messageRepo,
		OrgRepo:       orgRepo,
		ContractRepo:  contractRepo,
		TimeSpentRepo: timeSpentRepo,
		Dispatcher:    dispatcher,
	})

	orgService := service.NewOrganizationService(orgRepo, teamRepo, labelRepo, contractRepo, ticketRepo)

	directory := service.NewDirectoryService(userRepo, orgRepo, redis, cfg.Search.DirectoryCacheTTL(), logger)
	builder := search.NewTicketQueryBuilder(directory, service.OrganizationDirectory{DirectoryService: directory})
	searchService := service.NewSearchService(builder, ticketRepo, metrics, cfg.Search.PageSize)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, searchService),
		Organizations:  handlers.NewOrganizationsHandler(orgService),
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

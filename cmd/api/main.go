package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/ai"
	httptransport "github.com/zetsuserv/support-portal/internal/api/http"
	"github.com/zetsuserv/support-portal/internal/api/http/handlers"
	"github.com/zetsuserv/support-portal/internal/auth"
	"github.com/zetsuserv/support-portal/internal/config"
	"github.com/zetsuserv/support-portal/internal/events"
	"github.com/zetsuserv/support-portal/internal/notify"
	"github.com/zetsuserv/support-portal/internal/observability"
	"github.com/zetsuserv/support-portal/internal/persistence"
	"github.com/zetsuserv/support-portal/internal/repository"
	"github.com/zetsuserv/support-portal/internal/service"
	"github.com/zetsuserv/support-portal/internal/storage"
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
	adminRepo := repository.NewAdminRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	replyRepo := repository.NewReplyRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	subscriberRepo := repository.NewSubscriberRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(redis.Client)

	mailer := notify.NewMailer(cfg.SMTP, logger)
	bus := events.NewInMemoryDispatcher()

	aiClient := ai.NewClient(ai.ClientConfig{
		BaseURL:         cfg.AI.BaseURL,
		APIKey:          cfg.AI.APIKey,
		Temperature:     cfg.AI.Temperature,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
		Timeout:         cfg.AI.Timeout(),
	})
	chain := ai.NewFallbackChain(aiClient, cfg.AI.Models, logger)
	drafter := ai.NewDrafter(chain, logger)

	imageStore := storage.NewImageStore(
		cfg.Attachments.Dir,
		cfg.Attachments.MaxImageWidth,
		cfg.Attachments.MaxImageHeight,
		cfg.Attachments.MaxFileBytes,
		logger,
	)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		AdminRepo:  adminRepo,
		ResetRepo:  resetRepo,
		Tokens:     tokens,
		Sender:     mailer,
		BcryptCost: cfg.Auth.BcryptCost,
		ResetTTL:   cfg.Auth.PasswordResetTTL(),
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, adminRepo)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:       ticketRepo,
		ReplyRepo:        replyRepo,
		UserRepo:         userRepo,
		KnowledgeRepo:    knowledgeRepo,
		AvailabilityRepo: availabilityRepo,
		Images:           imageStore,
		Drafter:          drafter,
		Sender:           mailer,
		Dispatcher:       bus,
		Metrics:          metrics,
		Logger:           logger,
	})
	adminService := service.NewAdminService(availabilityRepo, logger)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, logger)

	batchDispatcher := notify.NewBatchDispatcher(cfg.Broadcast.BatchSize, cfg.Broadcast.BatchDelay(), logger)
	broadcastService := service.NewBroadcastService(service.BroadcastDependencies{
		SubscriberRepo: subscriberRepo,
		Dispatcher:     batchDispatcher,
		Sender:         mailer,
		Bus:            bus,
		Metrics:        metrics,
		Logger:         logger,
	})

	notificationService := service.NewNotificationService(mailer, cfg.SMTP.AdminTo, logger)
	notificationService.Register(bus)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Admin:          handlers.NewAdminHandler(authService, adminService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService),
		Knowledge:      handlers.NewKnowledgeHandler(knowledgeService),
		Broadcast:      handlers.NewBroadcastHandler(broadcastService),
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

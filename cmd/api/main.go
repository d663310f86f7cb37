package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/grievance-service/internal/api/http"
	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/bot"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/notify/telegram"
	"github.com/spec-kit/grievance-service/internal/notify/whatsapp"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/storage"
	"github.com/spec-kit/grievance-service/internal/ticketid"
	"github.com/spec-kit/grievance-service/internal/worker"
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

	pool := pg.PoolHandle()
	memberRepo := repository.NewMemberRepository(pool)
	grievanceRepo := repository.NewGrievanceRepository(pool)
	messageRefRepo := repository.NewMessageRefRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	generator := ticketid.New(cfg.Grievance.TicketPrefix)
	gate := service.NewCooldownGate(grievanceRepo, redis.ClientHandle(), cfg.Grievance.CooldownWindow(), logger)

	telegramClient := telegram.New(cfg.Telegram, logger)
	whatsappClient := whatsapp.New(cfg.WhatsApp, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	verifier := buildVerifier(cfg, whatsappClient, redis, logger)
	authService := service.NewAuthService(cfg.Auth, verifier, memberRepo, tokens, logger)
	authMiddleware := auth.NewAuthMiddleware(tokens, memberRepo)

	grievanceService := service.NewGrievanceService(cfg.Grievance, service.GrievanceDependencies{
		MemberRepo:    memberRepo,
		GrievanceRepo: grievanceRepo,
		Gate:          gate,
		Generator:     generator,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:      dispatcher,
		Telegram:        telegramClient,
		WhatsApp:        whatsappClient,
		MessageRefRepo:  messageRefRepo,
		GrievanceRepo:   grievanceRepo,
		MemberRepo:      memberRepo,
		Metrics:         metrics,
		SendTimeout:     cfg.Notification.SendTimeout(),
		ConfirmTemplate: cfg.WhatsApp.ConfirmationTemplate,
		Logger:          logger,
	})
	worker.StartNotificationWorker(notificationService, logger)

	digest := worker.NewDigestWorker(grievanceService, telegramClient, cfg.Notification.DigestSchedule, logger)
	if err := digest.Start(); err != nil {
		logger.Fatal("failed to start digest worker", zap.Error(err))
	}
	defer digest.Stop()

	botRouter := bot.NewRouter(grievanceService, telegramClient, redis.ClientHandle(), cfg.Notification.DedupTTL(), logger)

	blobStore, err := storage.NewDiskStore(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Grievances:     handlers.NewGrievancesHandler(grievanceService),
		Admin:          handlers.NewAdminHandler(authService, grievanceService),
		Webhook:        handlers.NewWebhookHandler(botRouter, cfg.Telegram.WebhookSecret, logger),
		Uploads:        handlers.NewUploadsHandler(blobStore, cfg.Storage.MaxUploadMB),
		AuthMiddleware: authMiddleware,
		UploadDir:      cfg.Storage.UploadDir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildVerifier(cfg *config.Config, whatsappClient *whatsapp.Client, redis *persistence.Redis, logger *zap.Logger) service.VerificationProvider {
	if cfg.Auth.OTPProvider == "whatsapp" && whatsappClient.Enabled() {
		return service.NewWhatsAppProvider(whatsappClient, redis.ClientHandle(), cfg.WhatsApp.OTPTemplate, cfg.Auth.OTPTTL(), logger)
	}
	return &service.StaticProvider{Code: cfg.Auth.StaticOTPCode, Logger: logger}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

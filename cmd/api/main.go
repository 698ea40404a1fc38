package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/api/dto"
	httptransport "github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/api/http"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/api/http/handlers"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/auth"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/challenge"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/config"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/events"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/notification"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/observability"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/persistence"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/repository"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/service"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/storage"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	otpStore, closeStore, err := newChallengeStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init challenge store", zap.Error(err))
	}
	defer closeStore()

	blobs, err := storage.NewLocalStore(cfg.Storage.RootDir, cfg.Storage.PublicURL)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}

	mailer, err := notification.NewMailer(cfg.Notification, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}

	otpTTL := cfg.Challenge.TTL()
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, notification.Renderer{
		WorkerSender:  cfg.Notification.SenderName,
		CitizenSender: cfg.Notification.CitizenSenderName,
		AdminContact:  cfg.Notification.AdminContactEmail,
		OtpValidity:   int(otpTTL.Minutes()),
	}, mailer, logger)
	worker.StartNotificationWorker(notificationService, logger)

	pool := pg.PoolHandle()
	validator := dto.NewValidator()

	identityService := service.NewIdentityService(service.IdentityDependencies{
		AccountRepo:      repository.NewAccountRepository(pool),
		RegistrationOtps: challenge.New(otpStore, challenge.PurposeRegistration, otpTTL),
		ResetOtps:        challenge.New(otpStore, challenge.PurposePasswordReset, otpTTL),
		Blobs:            blobs,
		Passwords:        auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Dispatcher:       dispatcher,
		Validate:         validator.Engine(),
		Logger:           logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewTicketRepository(pool),
		Blobs:      blobs,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AdminSessionTTLMinutes)
	if cfg.Auth.AdminCode == "" {
		logger.Warn("ADMIN_ACCESS_CODE not set; admin console is locked")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitBytes,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres":        pg,
			"challenge_store": otpStore,
		}),
		Workers:        handlers.NewWorkersHandler(identityService, validator),
		Admin:          handlers.NewAdminHandler(identityService, auth.NewAdminGate(cfg.Auth.AdminCode, tokens), validator),
		Tickets:        handlers.NewTicketsHandler(ticketService, validator),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		FilesRoot:      cfg.Storage.RootDir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// newChallengeStore picks the OTP backend. The memory store only suits a
// single instance since codes are not shared between processes.
func newChallengeStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (challenge.Store, func(), error) {
	switch cfg.Challenge.Store {
	case "redis":
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return challenge.NewRedisStore(rdb.Client), rdb.Close, nil
	case "memory":
		logger.Warn("using in-process challenge store")
		return challenge.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown CHALLENGE_STORE %q", cfg.Challenge.Store)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/helpdesk-portal/internal/adapters/primary/http"
	mw "github.com/lorrc/helpdesk-portal/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/websocket"
	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/email"
	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/memory"
	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/postgres"
	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/redis"
	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/storage"
	"github.com/lorrc/helpdesk-portal/internal/auth"
	"github.com/lorrc/helpdesk-portal/internal/config"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/services"
	"github.com/lorrc/helpdesk-portal/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Migrations and Database Pool
	ctx := context.Background()
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations applied", "path", cfg.Database.MigrationsPath)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 4. OTP storage: Redis when configured, process memory otherwise
	var (
		otpStore    ports.OTPStore
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(ctx, cfg.Redis, logger)
		defer redisClient.Close()
		otpStore = redis.NewOTPStore(redisClient)
	} else {
		otpStore = memory.NewOTPStore()
	}

	attachments, err := storage.NewFileStore(cfg.Attachments.Dir)
	if err != nil {
		logger.Error("failed to open attachment directory", "dir", cfg.Attachments.Dir, "error", err)
		os.Exit(1)
	}

	// 5. Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(logger).WithKeepalive(websocket.Keepalive{
		PingInterval: cfg.WebSocket.PingInterval,
		PongWait:     cfg.WebSocket.PongWait,
	})
	go hub.Run()
	dispatcher := services.NewDispatcher(hub, logger)

	// 6. Rate Limiters
	var generalRateLimiter, authRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})

		authRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.AuthRPS,
			BurstSize:         cfg.RateLimit.AuthBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
	}
	// one OTP resend per address per minute
	otpLimiter := mw.NewRateLimitByKey(1.0/60, 1)

	// 7. Dependency Injection (Wiring the Hexagon)
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Repositories (Secondary Adapters)
	userRepo := postgres.NewUserRepository(pool)
	deptRepo := postgres.NewDepartmentRepository(pool)
	buildingRepo := postgres.NewBuildingRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	eventRepo := postgres.NewTicketEventRepository(pool)
	assetRepo := postgres.NewAssetRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txManager := postgres.NewTransactionManager(pool)

	notifier := email.NewMockSMTPNotifier(userRepo, logger)

	// Services (Core)
	authService := services.NewAuthService(userRepo, otpStore, notifier, services.OTPSettings{
		Length: cfg.OTP.Length,
		TTL:    cfg.OTP.TTL,
	})
	authzService := services.NewAuthorizationService(userRepo)
	orgService := services.NewOrganizationService(userRepo, deptRepo, buildingRepo, authzService, notifier)
	ticketService := services.NewTicketService(services.TicketServiceDeps{
		TicketRepo:   ticketRepo,
		EventRepo:    eventRepo,
		UserRepo:     userRepo,
		DeptRepo:     deptRepo,
		BuildingRepo: buildingRepo,
		AuthzSvc:     authzService,
		TxManager:    txManager,
		Dispatcher:   dispatcher,
		Notifier:     notifier,
	})
	commentService := services.NewCommentService(services.CommentServiceDeps{
		CommentRepo: commentRepo,
		TicketRepo:  ticketRepo,
		EventRepo:   eventRepo,
		UserRepo:    userRepo,
		TicketSvc:   ticketService,
		TxManager:   txManager,
		Dispatcher:  dispatcher,
		Notifier:    notifier,
	})
	eventService := services.NewEventService(eventRepo, ticketService)
	realtimeService := services.NewRealtimeService(userRepo)
	attachmentService := services.NewAttachmentService(attachments, userRepo)
	inventoryService := services.NewInventoryService(assetRepo, userRepo, buildingRepo)
	reportService := services.NewReportService(reportRepo, ticketRepo, userRepo)

	if cfg.Bootstrap.Enabled() {
		if err := authService.EnsureSuperAdmin(ctx,
			cfg.Bootstrap.SuperAdminName,
			cfg.Bootstrap.SuperAdminEmail,
			cfg.Bootstrap.SuperAdminPassword,
		); err != nil {
			logger.Error("failed to bootstrap super admin", "error", err)
			os.Exit(1)
		}
	}

	// Handlers (Primary Adapters)
	commentHandler := httpAdapter.NewCommentHandler(commentService, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, cfg.App.Version)
	if redisClient != nil {
		healthHandler.WithChecker("redis", redisClient)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Tokens:         tokenManager,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		GeneralLimiter: generalRateLimiter,
		AuthLimiter:    authRateLimiter,
		Logger:         logger,
	}, httpAdapter.Handlers{
		Auth:       httpAdapter.NewAuthHandler(authService, tokenManager, otpLimiter, errorHandler, logger),
		Me:         httpAdapter.NewMeHandler(authService, authzService, errorHandler, logger),
		Org:        httpAdapter.NewOrgHandler(orgService, errorHandler, logger),
		Ticket:     httpAdapter.NewTicketHandler(ticketService, commentService, eventService, commentHandler, errorHandler, logger),
		Attachment: httpAdapter.NewAttachmentHandler(attachmentService, errorHandler, logger),
		Inventory:  httpAdapter.NewInventoryHandler(inventoryService, errorHandler, logger),
		Report:     httpAdapter.NewReportHandler(reportService, errorHandler, logger),
		Health:     healthHandler,
		WebSocket:  httpAdapter.NewWebSocketHandler(hub, tokenManager, realtimeService, cfg, errorHandler, logger),
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Drain background notifications, then close live sessions.
	ticketService.Shutdown()
	commentService.Shutdown()
	hub.Stop()

	logger.Info("server shutdown complete")
}

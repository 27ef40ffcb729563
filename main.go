// Package main provides the main entry point for the campaign engine
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freightdeck/campaign-engine/app/dispatcher"
	"github.com/freightdeck/campaign-engine/app/handlers"
	"github.com/freightdeck/campaign-engine/app/middleware"
	"github.com/freightdeck/campaign-engine/app/router"
	"github.com/freightdeck/campaign-engine/app/scheduler"
	"github.com/freightdeck/campaign-engine/app/services"
	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/config"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting campaign engine...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers; in-flight dispatches run to completion
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// initializeEmailProvider picks the delivery backend for email campaigns
func initializeEmailProvider(cfg *config.EmailConfig) services.EmailProvider {
	if cfg.UseMock {
		return services.NewMockEmailProvider()
	}
	return services.NewSMTPEmailProvider(cfg)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	campaignRepo := repository.NewCampaignRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	dispatchRunRepo := repository.NewDispatchRunRepository(db)
	deliveryLogRepo := repository.NewDeliveryLogRepository(db)
	notificationRepo := repository.NewInAppNotificationRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Channel senders
	emailProvider := initializeEmailProvider(&cfg.Email)
	senders := []services.ChannelSender{
		services.NewEmailSender(emailProvider),
		services.NewInAppSender(notificationRepo, nil),
		services.NewWhatsAppSender(log.Default()),
	}

	// Audience resolution with cached previews
	resolver := businessflow.NewAudienceResolver(userRepo, rc, cfg.Cache.PreviewTTL)

	// Dispatcher drives campaign sends through the worker pool
	campaignDispatcher := dispatcher.New(
		campaignRepo,
		dispatchRunRepo,
		deliveryLogRepo,
		resolver,
		senders,
		db,
		log.Default(),
		nil,
		cfg.Dispatcher.Concurrency,
	)
	stopFuncs = append(stopFuncs, campaignDispatcher.Wait)

	// Initialize flows
	campaignFlow := businessflow.NewCampaignFlow(
		campaignRepo,
		operatorRepo,
		companyRepo,
		auditRepo,
		resolver,
		campaignDispatcher,
		nil,
		db,
	)

	authFlow := businessflow.NewAuthFlow(
		operatorRepo,
		auditRepo,
		tokenService,
		nil,
	)

	reportFlow := businessflow.NewReportFlow(
		campaignRepo,
		operatorRepo,
		services.NewReportService(deliveryLogRepo),
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authFlow)
	campaignHandler := handlers.NewCampaignHandler(campaignFlow)
	reportHandler := handlers.NewReportHandler(reportFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		authHandler,
		campaignHandler,
		reportHandler,
		authMiddleware,
		cfg.Metrics.Enabled,
		db,
		rc,
	)

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewCampaignScheduler(
			campaignRepo,
			campaignDispatcher,
			nil,
			nil,
			cfg.Scheduler.SweepInterval,
			cfg.Scheduler.StaleSendingTimeout,
			cfg.Logging.Dir,
		)
		stopScheduler := sched.Start(context.Background())
		stopFuncs = append(stopFuncs, stopScheduler)
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

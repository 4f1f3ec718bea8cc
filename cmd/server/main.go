package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "membership-portal-backend/internal/api/http"
	"membership-portal-backend/internal/config"
	"membership-portal-backend/internal/gateway"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/metrics"
	"membership-portal-backend/internal/repository/postgres"
	"membership-portal-backend/internal/security"
	"membership-portal-backend/internal/service"
	"membership-portal-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.example.yaml", "Path to configuration file")
	migrateDir := flag.String("migrate", "", "Run schema migrations ('up' or 'down') and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Membership Portal Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := postgres.Connect(cfg.GetDatabaseConnectionString(), cfg.Database.MaxConnections)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Database connection established")

	if *migrateDir != "" {
		if err := postgres.RunMigrations(db, *migrateDir); err != nil {
			db.Close()
			log.Fatalf("Migration failed: %v", err)
		}
		logger.Info("Migrations applied", "direction", *migrateDir)
		db.Close()
		return
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db, "up"); err != nil {
			db.Close()
			log.Fatalf("Migration failed: %v", err)
		}
		logger.Info("Schema is up to date")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)
	defer store.Close()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Initialize external integrations
	paymentGateway := gateway.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	if cfg.SendGrid.APIKey == "" {
		logger.Warn("SendGrid API key not set; emails will only be logged")
	}

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	memberSvc := service.NewMemberService(store.UserRepository, store.ActivityRepository, emailSvc)
	paymentSvc := service.NewPaymentService(
		store.UserRepository,
		store.PaymentRepository,
		store.PaymentOrderRepository,
		paymentGateway,
		emailSvc,
		cfg.PlanPrices(),
		cfg.Razorpay.Currency,
	)
	approvalSvc := service.NewApprovalService(store.PaymentRepository, store.UserRepository, emailSvc)
	reportSvc := service.NewReportService(
		store.UserRepository,
		store.PaymentRepository,
		store.ActivityRepository,
		cfg.Membership.TrendMonths,
	)
	activitySvc := service.NewActivityService(store.ActivityRepository)
	bulletinSvc := service.NewBulletinService(store.AnnouncementRepository, store.ResourceRepository)

	// Proof-of-payment uploads
	proofStore, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.MaxProofBytes)
	if err != nil {
		log.Fatalf("Failed to initialize proof storage: %v", err)
	}
	logger.Info("Proof storage ready", "dir", cfg.Storage.Dir, "max_bytes", cfg.Storage.MaxProofBytes)
	proofSvc := service.NewProofService(store.PaymentRepository, proofStore)

	// Rate limiting (optional)
	trustedProxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		log.Fatalf("Invalid trusted proxies: %v", err)
	}
	limiter, redisClient := httpapi.NewRateLimiter(cfg.Redis, trustedProxies)
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("Rate limiting enabled", "redis", cfg.Redis.Addr,
			"login_per_minute", cfg.Redis.LoginPerMinute, "intake_per_hour", cfg.Redis.IntakePerHour)
	} else {
		logger.Warn("Redis address not set; rate limiting disabled")
	}

	// Initialize HTTP handlers
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:     httpapi.NewAuthHandler(authSvc),
		Member:   httpapi.NewMemberHandler(memberSvc),
		Payment:  httpapi.NewPaymentHandler(paymentSvc, approvalSvc),
		Report:   httpapi.NewReportHandler(reportSvc),
		Activity: httpapi.NewActivityHandler(activitySvc),
		Bulletin: httpapi.NewBulletinHandler(bulletinSvc),
		Proof:    httpapi.NewProofHandler(proofSvc),
	}, tokenManager, limiter)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.GetMetricsAddress(), Handler: mux}
		go func() {
			logger.Info("Metrics server listening", "address", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", "error", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a fatal listener error
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		logger.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", "error", err)
		}
	}
	logger.Info("Server stopped. Goodbye!")
}

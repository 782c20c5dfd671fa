package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	api "github.com/nickprotop/NeighborTools-sub003/internal/api/grpc"
	"github.com/nickprotop/NeighborTools-sub003/internal/api/grpc/interceptor"
	httpapi "github.com/nickprotop/NeighborTools-sub003/internal/api/http"
	"github.com/nickprotop/NeighborTools-sub003/internal/cache"
	"github.com/nickprotop/NeighborTools-sub003/internal/config"
	"github.com/nickprotop/NeighborTools-sub003/internal/limiter"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/push"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository/postgres"
	"github.com/nickprotop/NeighborTools-sub003/internal/security"
	"github.com/nickprotop/NeighborTools-sub003/internal/service"
	"github.com/nickprotop/NeighborTools-sub003/internal/utils"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting NeighborTools bundle rental service...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())
	logger.Info("Database configuration", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.Database.Driver, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Redis (optional)
	rdb, closeRedis, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.User, cfg.Redis.Password)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err, "addr", cfg.Redis.Addr)
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer closeRedis()
	if rdb == nil {
		logger.Warn("Redis not configured, bundle rental requests are not rate limited")
	}

	// Initialize Notifications
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid not configured, emails are disabled")
		emailSvc = service.NewNoopEmailService()
	}

	var pushSvc push.Sender = push.NopSender{}
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := push.NewFCMSender(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.ProjectID)
		if err != nil {
			logger.Error("Failed to initialize push notifications", "error", err)
			log.Fatalf("Failed to initialize push notifications: %v", err)
		}
		pushSvc = fcm
	} else {
		logger.Warn("Firebase not configured, push notifications are disabled")
	}

	notifier := service.NewNotificationDispatcher(store.UserRepository, store.NotificationRepository, emailSvc, pushSvc)

	// Initialize Services
	bundleCfg := cfg.Bundle
	availabilitySvc := service.NewAvailabilityService(store.ToolRepository, bundleCfg.DefaultLeadTimeDays, nil)
	bundleAvailabilitySvc := service.NewBundleAvailabilityService(store.BundleRepository, availabilitySvc, service.SuggestionSettings{
		HorizonDays:    bundleCfg.SuggestionHorizonDays,
		MaxSuggestions: bundleCfg.MaxSuggestions,
		Concurrency:    bundleCfg.AvailabilityConcurrency,
	})
	pricingSvc := service.NewPricingEngine(store.BundleRepository, store.ToolRepository, utils.TierThresholds{
		WeeklyDays:      bundleCfg.WeeklyThresholdDays,
		MonthlyDays:     bundleCfg.MonthlyThresholdDays,
		MonthLengthDays: bundleCfg.MonthLengthDays,
	}, bundleCfg.PlatformFee())
	approvalSvc := service.NewApprovalService(
		store.BundleRentalRepository,
		store.RentalRepository,
		store.PaymentCaptureRepository,
		notifier,
		time.Duration(bundleCfg.ApprovalTimeoutHours)*time.Hour,
		bundleCfg.MaxDecisionRetries,
		nil,
	)
	rentalSvc := service.NewBundleRentalService(
		store.BundleRepository,
		store.BundleRentalRepository,
		store.RentalRepository,
		bundleAvailabilitySvc,
		pricingSvc,
		limiter.New(rdb, bundleCfg.MaxRequestsPerHour),
		notifier,
		bundleCfg.MaxDecisionRetries,
		nil,
	)

	// Set up gRPC server
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Logging(), authInterceptor.Unary()),
	)
	api.RegisterBundleRentalServiceServer(s, api.NewBundleRentalHandler(bundleAvailabilitySvc, pricingSvc, rentalSvc, approvalSvc))

	// Register reflection service for grpcurl
	reflection.Register(s)

	// Set up HTTP server
	checks := map[string]httpapi.HealthCheck{"database": db.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	httpServer := &http.Server{
		Addr:         cfg.GetHTTPAddress(),
		Handler:      httpapi.NewRouter(httpapi.NewBundleHandler(bundleAvailabilitySvc, pricingSvc), httpapi.NewHealthHandler(checks), cfg.Server.Origins),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := s.Serve(lis); err != nil {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case err := <-errc:
		logger.Error("Server error", "error", err)
	}

	shutdown(s, httpServer)
	logger.Info("Server stopped. Goodbye!")
}

func shutdown(s *grpc.Server, httpServer *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}

	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.Stop()
	}
}

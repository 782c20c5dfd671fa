package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nickprotop/NeighborTools-sub003/internal/cache"
	"github.com/nickprotop/NeighborTools-sub003/internal/config"
	"github.com/nickprotop/NeighborTools-sub003/internal/jobs"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/push"
	"github.com/nickprotop/NeighborTools-sub003/internal/repository/postgres"
	"github.com/nickprotop/NeighborTools-sub003/internal/scheduler"
	"github.com/nickprotop/NeighborTools-sub003/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-stale-approvals', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting NeighborTools Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(ctx, cfg.Database.Driver, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// Redis holds the job lease; without it every replica runs every job.
	rdb, closeRedis, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.User, cfg.Redis.Password)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer closeRedis()

	// Initialize Services
	var emailSvc service.EmailService = service.NewNoopEmailService()
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	}
	var pushSvc push.Sender = push.NopSender{}
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := push.NewFCMSender(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize push notifications: %v", err)
		}
		pushSvc = fcm
	}
	notifier := service.NewNotificationDispatcher(store.UserRepository, store.NotificationRepository, emailSvc, pushSvc)

	approvalSvc := service.NewApprovalService(
		store.BundleRentalRepository,
		store.RentalRepository,
		store.PaymentCaptureRepository,
		notifier,
		time.Duration(cfg.Bundle.ApprovalTimeoutHours)*time.Hour,
		cfg.Bundle.MaxDecisionRetries,
		nil,
	)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&jobs.Services{Approval: approvalSvc}, rdb, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "expire-stale-approvals":
		jobRunner.ExpireStaleApprovals()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - expire-stale-approvals\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}

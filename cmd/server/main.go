package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/panjf2000/ants/v2"

	"github.com/parkops/backoffice/internal/backoffice"
	"github.com/parkops/backoffice/internal/backoffice/poller"
	"github.com/parkops/backoffice/internal/backoffice/service"
	"github.com/parkops/backoffice/internal/config"
	"github.com/parkops/backoffice/internal/data/mongo"
	"github.com/parkops/backoffice/internal/data/postgres"
	"github.com/parkops/backoffice/internal/logger"
	"github.com/parkops/backoffice/internal/operator"
	"github.com/parkops/backoffice/internal/platform/messaging/producers"
	"github.com/parkops/backoffice/internal/platform/persistence"
	"github.com/parkops/backoffice/internal/source"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting back-office server",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	if err := persistence.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		log.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for cash_session_closed events
	closingProducer, err := producers.NewClosingEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize closing-event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize worker pool for concurrent report computation
	workerPool, err := ants.NewPool(cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)

	// Initialize transaction sources: the relational backend's sync endpoint
	// merged with the legacy document archive
	syncSource := source.NewSyncClient(log, cfg.Sync.BaseURL, cfg.Sync.Timeout)
	archiveSource := mongo.NewArchiveRepository(log, mongoDB.Database())
	txSource := source.NewMerged(log, syncSource, archiveSource)

	// Initialize services
	reportService := service.NewReportService(log, txSource, workerPool, cfg.Sync.Limit)
	sessionService := service.NewSessionService(
		log,
		txSource,
		postgresDB,
		sessionRepo,
		outboxRepo,
		cfg.Sync.Limit,
		cfg.Reconciliation.Tolerance,
	)
	exportService := service.NewExportService(log, txSource, cfg.Sync.Limit)

	// Operator session state is held in memory for the single back-office node
	operators := operator.NewStaticProvider()

	// Initialize REST server
	server := backoffice.NewServer(log, cfg, reportService, sessionService, exportService, operators)
	log.Info("REST server initialized")

	// Initialize outbox poller for closing-event publication
	eventPublisher := poller.NewEventPublisher(outboxRepo, closingProducer, log)
	outboxPoller := poller.NewPoller(&cfg.Outbox, outboxRepo, eventPublisher, log)

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Create wait group for background goroutines
	var wg sync.WaitGroup

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		outboxPoller.Start(appCtx)
	}()

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context; this stops the outbox poller
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Wait for the poller to finish its current batch
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Background workers stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Release the report worker pool
	workerPool.Release()

	if err = closingProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kayako-stat-service/internal/infrastructure/config"
	"kayako-stat-service/internal/infrastructure/persistence"
	"kayako-stat-service/internal/infrastructure/router"
	"kayako-stat-service/internal/interface/handler"
	"kayako-stat-service/internal/interface/repository"
	"kayako-stat-service/internal/usecase"
	"kayako-stat-service/pkg/logger"
	"kayako-stat-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Kayako Stat Service", "version", cfg.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	ticketRepo := repository.NewMongoTicketRepository(db, cfg.MongoCollection)
	if err := ticketRepo.EnsureIndexes(ctx); err != nil {
		log.Error("Failed to create record indexes", "error", err)
	}

	// Set up import history
	historyDB, err := persistence.NewHistoryDB(cfg.HistoryDriver, cfg.HistoryDSN)
	if err != nil {
		log.Fatal("Failed to open history database", "error", err)
	}
	if err := repository.AutoMigrate(historyDB); err != nil {
		log.Fatal("Failed to migrate history database", "error", err)
	}
	historyRepo := repository.NewGormImportRunRepository(historyDB)

	m := metrics.NewMetrics("kayako_stat", prometheus.DefaultRegisterer)

	importService := usecase.NewImportService(
		usecase.NewTicketImporter(usecase.PolicyAbort, log),
		usecase.NewTicketSync(ticketRepo, log),
		historyRepo,
		m,
		log,
	)
	reportService := usecase.NewReportService(ticketRepo, log)

	gin.SetMode(gin.ReleaseMode)
	maxUpload := int64(cfg.MaxUploadMB) << 20
	statHandler := handler.NewStatHandler(importService, reportService, m, log, maxUpload)
	engine := router.NewRouter(statHandler, promhttp.Handler(), log)
	engine.MaxMultipartMemory = maxUpload

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if err := persistence.CloseHistoryDB(historyDB); err != nil {
		log.Error("History database close error", "error", err)
	}

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Kayako Stat Service stopped")
}

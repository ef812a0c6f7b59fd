package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wetmill-backend/internal/archive"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/cache"
	"wetmill-backend/internal/config"
	"wetmill-backend/internal/database"
	"wetmill-backend/internal/db"
	"wetmill-backend/internal/handlers"
	"wetmill-backend/internal/health"
	h "wetmill-backend/internal/http"
	"wetmill-backend/internal/logging"
	"wetmill-backend/internal/middleware"
	"wetmill-backend/internal/repositories"
	"wetmill-backend/internal/services"
	"wetmill-backend/internal/tasks"
)

func main() {
	migrationsDir := flag.String("migrations", "migrations", "directory holding the SQL migrations")
	skipMigrations := flag.Bool("skip-migrations", false, "start without applying pending migrations")
	flag.Parse()

	cfg := config.Load()
	logging.Configure(cfg.Log.Level, cfg.Log.Format)
	log := logging.Module("main")

	pool := db.Connect(cfg)
	defer pool.Close()
	log.Info("connected to postgres")

	if !*skipMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err := database.NewMigrator(pool, *migrationsDir).RunMigrations(ctx)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
	}

	// Redis is optional; without it reports are built on every read and
	// backfill sweeps run unlocked.
	redisClient, err := cache.NewClient(cfg)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, running without report cache")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.WithField("addr", cfg.Redis.Addr).Info("connected to redis")
	}
	reportCache := cache.NewReportCache(redisClient, time.Duration(cfg.Redis.ReportTTLSeconds)*time.Second)
	sweepLocker := cache.NewSweepLocker(redisClient)

	var archiver services.Archiver
	s3Archiver, err := archive.NewS3Archiver(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Warn("report archive disabled")
	} else if s3Archiver != nil {
		archiver = s3Archiver
		log.WithField("bucket", s3Archiver.Bucket()).Info("report archive enabled")
	}

	runner := tasks.NewRunner(tasks.Options{
		Workers:  cfg.Tasks.Workers,
		Attempts: cfg.Tasks.Attempts,
		Backoff:  time.Duration(cfg.Tasks.BackoffMS) * time.Millisecond,
		Timeout:  time.Duration(cfg.Tasks.TimeoutSeconds) * time.Second,
	})

	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	stationRepo := repositories.NewStationRepository(pool)
	purchaseRepo := repositories.NewPurchaseRepository(pool)
	processingRepo := repositories.NewProcessingRepository(pool)
	baggingOffRepo := repositories.NewBaggingOffRepository(pool)
	qualityRepo := repositories.NewQualityRepository(pool)
	transferRepo := repositories.NewTransferRepository(pool)
	deliveryRepo := repositories.NewDeliveryRepository(pool)
	wetTransferRepo := repositories.NewWetTransferRepository(pool)
	sampleStorageRepo := repositories.NewSampleStorageRepository(pool)
	reportRepo := repositories.NewReportRepository(pool)

	// Services
	userService := services.NewUserService(userRepo, jwtManager)
	stationService := services.NewStationService(stationRepo)
	purchaseService := services.NewPurchaseService(purchaseRepo, stationRepo, processingRepo, reportCache)
	processingService := services.NewProcessingService(processingRepo, stationRepo)
	qualityService := services.NewQualityService(qualityRepo, baggingOffRepo, sweepLocker, reportCache)
	baggingOffService := services.NewBaggingOffService(baggingOffRepo, processingRepo, qualityService, runner, reportCache)
	deliveryService := services.NewDeliveryService(deliveryRepo, qualityRepo, transferRepo, sweepLocker, reportCache)
	transferService := services.NewTransferService(transferRepo, baggingOffRepo, qualityService, deliveryService, runner, reportCache)
	wetTransferService := services.NewWetTransferService(wetTransferRepo, processingRepo, reportCache)
	sampleStorageService := services.NewSampleStorageService(sampleStorageRepo)
	batchService := services.NewBatchService(baggingOffRepo, transferRepo)
	reportService := services.NewReportService(reportRepo, stationRepo, transferRepo, reportCache, archiver)

	// Handlers
	router := h.NewRouter(h.Handlers{
		Auth:          handlers.NewAuthHandler(userService),
		Health:        handlers.NewHealthHandler(health.NewHealthChecker(pool, reportCache)),
		Station:       handlers.NewStationHandler(stationService),
		Purchase:      handlers.NewPurchaseHandler(purchaseService),
		Processing:    handlers.NewProcessingHandler(processingService),
		BaggingOff:    handlers.NewBaggingOffHandler(baggingOffService),
		Quality:       handlers.NewQualityHandler(qualityService),
		Delivery:      handlers.NewDeliveryHandler(deliveryService),
		Transfer:      handlers.NewTransferHandler(transferService, reportService),
		WetTransfer:   handlers.NewWetTransferHandler(wetTransferService),
		SampleStorage: handlers.NewSampleStorageHandler(sampleStorageService),
		Batch:         handlers.NewBatchHandler(batchService),
		Report:        handlers.NewReportHandler(reportService),
		Admin:         handlers.NewAdminHandler(runner),
	}, middleware.NewAuthMiddleware(jwtManager, userService))

	timeout := time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           middleware.NewCORS(cfg)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := runner.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("background tasks did not finish before shutdown")
	}
}

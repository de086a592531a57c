package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotel-recommender/internal/auth"
	"hotel-recommender/internal/config"
	"hotel-recommender/internal/dataset"
	"hotel-recommender/internal/enrich"
	"hotel-recommender/internal/logger"
	"hotel-recommender/internal/queue"
	"hotel-recommender/internal/recommend"
	"hotel-recommender/internal/telemetry"
	"hotel-recommender/middleware"
	"hotel-recommender/routes"
	"hotel-recommender/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	// Telemetry
	var metrics *telemetry.Metrics
	if cfg.OTelEnabled {
		shutdown, err := telemetry.InitTracer(context.Background(), "hotel-recommender", cfg.OTelEndpoint, cfg.GinMode)
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				shutdown(ctx)
			}()
		}
		if metrics, err = telemetry.InitMetrics(); err != nil {
			logger.Warn("Metrics disabled", "error", err)
			metrics = nil
		}
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Redis backs rate limiting, the task queue and optionally the image cache.
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		if cfg.ImageCacheBackend == "redis" {
			log.Fatal("Failed to connect to Redis:", err)
		}
		logger.Warn("Redis unavailable, rate limiting and image warm-up disabled", "error", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// Enrichment collaborators
	store, err := enrich.NewImageStore(cfg.ImageCacheBackend, cfg.ImageCacheFile, rdb)
	if err != nil {
		log.Fatal("Failed to create image cache:", err)
	}
	unsplash := enrich.NewUnsplashClient(enrich.UnsplashConfig{
		BaseURL:           cfg.UnsplashAPIURL,
		AccessKey:         cfg.UnsplashAccessKey,
		Timeout:           cfg.UnsplashTimeout,
		RequestsPerMinute: cfg.UnsplashRPM,
	}, metrics)
	images := enrich.NewCachedImageResolver(store, unsplash, cfg.PlaceholderImageURL, metrics)
	prices := enrich.NewMockPriceOracle(nil)

	// Domain services
	recommender := recommend.NewService(
		recommend.FileReviewLoader(cfg.ReviewsFile),
		images,
		prices,
		recommend.WithMetrics(metrics),
	)
	catalog := services.NewCatalogService(dataset.Source{
		ReviewsFile:    cfg.ReviewsFile,
		FaceScoresFile: cfg.FaceScoresFile,
		AspectFile:     cfg.AspectFile,
		SubAspectFile:  cfg.SubAspectFile,
	}, images, prices)
	users := services.NewMongoUserStore(mongoClient.Database(cfg.DBName))
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())

	if cfg.WarmOnStart {
		go func() {
			start := time.Now()
			if err := recommender.Warm(context.Background()); err != nil {
				logger.Error("Similarity index warm-up failed", "error", err)
				return
			}
			logger.Info("Similarity index ready", "duration", time.Since(start).String())
		}()
	}

	// Periodic image warm-up through the worker queue
	if rdb != nil {
		queueClient := asynq.NewClient(config.AsynqRedisOpt(cfg))
		defer queueClient.Close()

		scheduler := queue.NewScheduler()
		if err := scheduler.ScheduleImageWarm(queueClient, cfg.ImageWarmInterval); err != nil {
			logger.Error("Failed to schedule image warm-up", "error", err)
		} else {
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	if cfg.OTelEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
		router.Use(middleware.MetricsMiddleware(metrics))
	}
	if cfg.CompressionEnabled {
		router.Use(middleware.CompressionMiddleware())
	}
	setupRoutes(router, rdb, cfg, catalog, recommender, users, tokens)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func setupRoutes(
	router *gin.Engine,
	rdb *redis.Client,
	cfg *config.Config,
	catalog *services.CatalogService,
	recommender *recommend.Service,
	users services.UserStore,
	tokens *auth.TokenManager,
) {
	routes.SetupHealthRoutes(router)

	api := router.Group("/api")
	if rdb != nil {
		api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitReqs, time.Duration(cfg.RateLimitWindow)*time.Second))
	}
	api.Use(middleware.RequestSizeLimit(1 << 20))

	routes.SetupAuthRoutes(api, users, tokens, middleware.NewAuthMiddleware(tokens), cfg.BcryptCost)
	routes.SetupHotelRoutes(api, catalog, recommender)
}

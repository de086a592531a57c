package main

import (
	"context"
	"log"

	"hotel-recommender/internal/config"
	"hotel-recommender/internal/dataset"
	"hotel-recommender/internal/enrich"
	"hotel-recommender/internal/logger"
	"hotel-recommender/internal/queue"
	"hotel-recommender/services"

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

	var rdb *redis.Client
	if cfg.ImageCacheBackend == "redis" {
		rdb, err = config.NewRedisClient(cfg)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer rdb.Close()
	}

	store, err := enrich.NewImageStore(cfg.ImageCacheBackend, cfg.ImageCacheFile, rdb)
	if err != nil {
		log.Fatal("Failed to create image cache:", err)
	}
	unsplash := enrich.NewUnsplashClient(enrich.UnsplashConfig{
		BaseURL:           cfg.UnsplashAPIURL,
		AccessKey:         cfg.UnsplashAccessKey,
		Timeout:           cfg.UnsplashTimeout,
		RequestsPerMinute: cfg.UnsplashRPM,
	}, nil)
	images := enrich.NewCachedImageResolver(store, unsplash, cfg.PlaceholderImageURL, nil)
	catalog := services.NewCatalogService(dataset.Source{
		ReviewsFile:    cfg.ReviewsFile,
		FaceScoresFile: cfg.FaceScoresFile,
		AspectFile:     cfg.AspectFile,
		SubAspectFile:  cfg.SubAspectFile,
	}, images, enrich.NewMockPriceOracle(nil))

	redisOpt := config.AsynqRedisOpt(cfg)

	// Image warm-ups are slow and rate limited, a couple of workers is enough.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 3,
				"low":     1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(catalog, images)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskWarmImages, processor.WarmImages)

	logger.Info("Starting Asynq worker", "concurrency", 2, "redis", redisOpt.Addr)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}

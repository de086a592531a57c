package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"hotel-recommender/internal/config"
	"hotel-recommender/internal/dataset"
	"hotel-recommender/internal/enrich"
	"hotel-recommender/internal/recommend"
	"hotel-recommender/services"

	"github.com/redis/go-redis/v9"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/datasets <command>")
		fmt.Println("Commands:")
		fmt.Println("  validate     - Load every dataset file and build the similarity index")
		fmt.Println("  warm-images  - Resolve and cache an image for every catalog hotel")
		os.Exit(1)
	}

	command := os.Args[1]

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	source := dataset.Source{
		ReviewsFile:    cfg.ReviewsFile,
		FaceScoresFile: cfg.FaceScoresFile,
		AspectFile:     cfg.AspectFile,
		SubAspectFile:  cfg.SubAspectFile,
	}

	switch command {
	case "validate":
		if err := validate(source); err != nil {
			log.Fatalf("Validation failed: %v", err)
		}
	case "warm-images":
		if err := warmImages(cfg, source); err != nil {
			log.Fatalf("Image warm-up failed: %v", err)
		}
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func validate(source dataset.Source) error {
	reviews, err := dataset.LoadReviews(source.ReviewsFile)
	if err != nil {
		return err
	}
	fmt.Printf("Reviews: %d rows\n", len(reviews))

	faces, err := dataset.LoadFaceScores(source.FaceScoresFile)
	if err != nil {
		return err
	}
	fmt.Printf("Face scores: %d hotels\n", len(faces))

	for _, path := range []string{source.AspectFile, source.SubAspectFile} {
		pivot, err := dataset.LoadAspectSummary(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d columns\n", path, len(pivot.Aspects))
	}

	start := time.Now()
	docs := recommend.Aggregate(reviews)
	matrix, err := recommend.Fit(docs, recommend.DefaultVectorizerOptions())
	if errors.Is(err, recommend.ErrInsufficientData) {
		fmt.Printf("Similarity index: %d hotels, not enough data to vectorize (%v)\n", len(docs), err)
		return nil
	}
	if err != nil {
		return err
	}
	index, err := recommend.BuildIndex(matrix, docs)
	if err != nil {
		return err
	}
	fmt.Printf("Similarity index: %d hotels, %d terms, built in %s\n",
		index.Len(), len(matrix.Terms), time.Since(start).Round(time.Millisecond))
	return nil
}

func warmImages(cfg *config.Config, source dataset.Source) error {
	var rdb *redis.Client
	if cfg.ImageCacheBackend == "redis" {
		var err error
		if rdb, err = config.NewRedisClient(cfg); err != nil {
			return err
		}
		defer rdb.Close()
	}

	store, err := enrich.NewImageStore(cfg.ImageCacheBackend, cfg.ImageCacheFile, rdb)
	if err != nil {
		return err
	}
	images := enrich.NewCachedImageResolver(store, enrich.NewUnsplashClient(enrich.UnsplashConfig{
		BaseURL:           cfg.UnsplashAPIURL,
		AccessKey:         cfg.UnsplashAccessKey,
		Timeout:           cfg.UnsplashTimeout,
		RequestsPerMinute: cfg.UnsplashRPM,
	}, nil), cfg.PlaceholderImageURL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	names, err := services.NewCatalogService(source, images, enrich.NewMockPriceOracle(nil)).Names(ctx)
	if err != nil {
		return err
	}
	resolved := images.Warm(ctx, names)
	fmt.Printf("Resolved images for %d of %d hotels\n", resolved, len(names))
	return nil
}

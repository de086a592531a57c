package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// MongoDB (users)
	MongoURI string
	DBName   string

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret    string
	JWTExpiresIn string
	BcryptCost   int

	RateLimitReqs   int
	RateLimitWindow int

	// Datasets
	DataDir        string
	ReviewsFile    string
	FaceScoresFile string
	AspectFile     string
	SubAspectFile  string

	// Image lookup
	ImageCacheBackend   string // "csv" (default) or "redis"
	ImageCacheFile      string
	UnsplashAccessKey   string
	UnsplashAPIURL      string
	UnsplashTimeout     time.Duration
	UnsplashRPM         int
	PlaceholderImageURL string
	ImageWarmInterval   time.Duration

	WarmOnStart        bool
	CompressionEnabled bool

	// Telemetry
	OTelEnabled  bool
	OTelEndpoint string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/hotel_recommender"),
		DBName:   getEnv("DB_NAME", "hotel_recommender"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "30m"),
		BcryptCost:   getEnvInt("BCRYPT_COST", 12),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		DataDir:        dataDir,
		ReviewsFile:    getEnv("REVIEWS_FILE", filepath.Join(dataDir, "final_processed_reviews_deepl_use.csv")),
		FaceScoresFile: getEnv("FACE_SCORES_FILE", filepath.Join(dataDir, "hotel_face_scores.csv")),
		AspectFile:     getEnv("ASPECT_FILE", filepath.Join(dataDir, "hotel_aspect_summary1.csv")),
		SubAspectFile:  getEnv("SUBASPECT_FILE", filepath.Join(dataDir, "hotel_subaspect_summary.csv")),

		ImageCacheBackend:   getEnv("IMAGE_CACHE_BACKEND", "csv"),
		ImageCacheFile:      getEnv("IMAGE_CACHE_FILE", filepath.Join(dataDir, "hotel_images_cache.csv")),
		UnsplashAccessKey:   getEnv("UNSPLASH_ACCESS_KEY", ""),
		UnsplashAPIURL:      getEnv("UNSPLASH_API_URL", "https://api.unsplash.com"),
		UnsplashTimeout:     getEnvDuration("UNSPLASH_TIMEOUT", 5*time.Second),
		UnsplashRPM:         getEnvInt("UNSPLASH_RPM", 50),
		PlaceholderImageURL: getEnv("PLACEHOLDER_IMAGE_URL", "https://images.unsplash.com/photo-1566073771259-6a8506099945?auto=format&fit=crop&w=800&q=80"),
		ImageWarmInterval:   getEnvDuration("IMAGE_WARM_INTERVAL", 6*time.Hour),

		WarmOnStart:        getEnvBool("RECOMMENDER_WARM_ON_START", false),
		CompressionEnabled: getEnvBool("COMPRESSION_ENABLED", true),

		OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint: getEnv("OTEL_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}

	if _, err := time.ParseDuration(cfg.JWTExpiresIn); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN is not a valid duration: %v", err)
	}

	switch cfg.ImageCacheBackend {
	case "csv", "redis":
	default:
		return nil, fmt.Errorf("IMAGE_CACHE_BACKEND must be csv or redis, got %q", cfg.ImageCacheBackend)
	}

	return cfg, nil
}

// TokenTTL returns the parsed JWT lifetime. LoadConfig has already validated it.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTExpiresIn)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

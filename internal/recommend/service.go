package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"hotel-recommender/internal/dataset"
	"hotel-recommender/internal/enrich"
	"hotel-recommender/internal/logger"
	"hotel-recommender/internal/telemetry"
	"hotel-recommender/models"
)

const DefaultTopN = 5

// ErrInvalidTopN is returned for a non-positive result count.
var ErrInvalidTopN = errors.New("top_n must be a positive integer")

// ReviewLoader supplies the raw reviews the index is built from.
type ReviewLoader func(ctx context.Context) ([]dataset.Review, error)

// FileReviewLoader reads reviews from a CSV file on every call.
func FileReviewLoader(path string) ReviewLoader {
	return func(ctx context.Context) ([]dataset.Review, error) {
		return dataset.LoadReviews(path)
	}
}

type Option func(*Service)

func WithVectorizerOptions(opts VectorizerOptions) Option {
	return func(s *Service) { s.opts = opts }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service owns the similarity index. The index is built once, on the first
// query or an explicit Warm, and kept for the life of the process.
type Service struct {
	load    ReviewLoader
	images  enrich.ImageResolver
	prices  enrich.PriceOracle
	opts    VectorizerOptions
	metrics *telemetry.Metrics

	group singleflight.Group
	mu    sync.RWMutex
	index *Index
}

func NewService(load ReviewLoader, images enrich.ImageResolver, prices enrich.PriceOracle, options ...Option) *Service {
	s := &Service{
		load:   load,
		images: images,
		prices: prices,
		opts:   DefaultVectorizerOptions(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Warm builds the index now instead of on the first query.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.getIndex(ctx)
	return err
}

// Similar returns up to topN hotels most similar to hotelName, best first.
// An unknown hotel, or a corpus too small to vectorize, yields an empty slice.
func (s *Service) Similar(ctx context.Context, hotelName string, topN int) ([]models.SimilarHotel, error) {
	if topN <= 0 {
		return nil, ErrInvalidTopN
	}

	ix, err := s.getIndex(ctx)
	if err != nil {
		return nil, err
	}

	neighbors := ix.Neighbors(hotelName, topN)
	results := make([]models.SimilarHotel, 0, len(neighbors))
	for _, nb := range neighbors {
		name := nb.Document.HotelName
		results = append(results, models.SimilarHotel{
			HotelName:  name,
			Rating:     nb.Document.Rating,
			Similarity: nb.Score,
			ImageURL:   s.images.ImageURL(ctx, name),
			Price:      s.prices.Price(name),
		})
	}
	return results, nil
}

func (s *Service) getIndex(ctx context.Context) (*Index, error) {
	s.mu.RLock()
	ix := s.index
	s.mu.RUnlock()
	if ix != nil {
		return ix, nil
	}

	v, err, _ := s.group.Do("index", func() (interface{}, error) {
		s.mu.RLock()
		ix := s.index
		s.mu.RUnlock()
		if ix != nil {
			return ix, nil
		}

		// Callers share this build, so one caller's cancellation must not abort it.
		ix, err := s.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.index = ix
		s.mu.Unlock()
		return ix, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}

func (s *Service) build(ctx context.Context) (*Index, error) {
	ctx, span := otel.Tracer("hotel-recommender").Start(ctx, "recommend.build_index")
	defer span.End()

	start := time.Now()
	reviews, err := s.load(ctx)
	if err != nil {
		s.metrics.RecordIndexBuild(ctx, time.Since(start).Seconds(), 0, "error")
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	docs := Aggregate(reviews)
	span.SetAttributes(
		attribute.Int("recommend.reviews", len(reviews)),
		attribute.Int("recommend.documents", len(docs)),
	)

	matrix, err := Fit(docs, s.opts)
	if errors.Is(err, ErrInsufficientData) {
		logger.Warn("Similarity index is empty", "documents", len(docs), "reason", err.Error())
		s.metrics.RecordIndexBuild(ctx, time.Since(start).Seconds(), 0, "insufficient_data")
		return emptyIndex(), nil
	}
	if err != nil {
		return nil, err
	}

	ix, err := BuildIndex(matrix, docs)
	if err != nil {
		s.metrics.RecordIndexBuild(ctx, time.Since(start).Seconds(), len(docs), "error")
		return nil, err
	}

	span.SetAttributes(attribute.Int("recommend.vocabulary", len(matrix.Terms)))
	s.metrics.RecordIndexBuild(ctx, time.Since(start).Seconds(), ix.Len(), "success")
	logger.Info("Similarity index built",
		"documents", ix.Len(),
		"vocabulary", len(matrix.Terms),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ix, nil
}

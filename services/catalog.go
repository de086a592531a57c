package services

import (
	"context"
	"fmt"

	"hotel-recommender/internal/dataset"
	"hotel-recommender/internal/enrich"
	"hotel-recommender/models"
)

// CatalogService assembles the hotel listing from the dataset files. Files
// are re-read on every call; a missing or malformed file is an error.
type CatalogService struct {
	source dataset.Source
	images enrich.ImageResolver
	prices enrich.PriceOracle
}

func NewCatalogService(source dataset.Source, images enrich.ImageResolver, prices enrich.PriceOracle) *CatalogService {
	return &CatalogService{source: source, images: images, prices: prices}
}

// List returns one summary per face-score row, in file order.
func (s *CatalogService) List(ctx context.Context) ([]models.HotelSummary, error) {
	faces, err := dataset.LoadFaceScores(s.source.FaceScoresFile)
	if err != nil {
		return nil, err
	}
	aspects, err := dataset.LoadAspectSummary(s.source.AspectFile)
	if err != nil {
		return nil, err
	}
	subAspects, err := dataset.LoadAspectSummary(s.source.SubAspectFile)
	if err != nil {
		return nil, err
	}
	reviews, err := dataset.LoadReviews(s.source.ReviewsFile)
	if err != nil {
		return nil, err
	}
	ratings := dataset.MeanRatings(reviews)

	hotels := make([]models.HotelSummary, 0, len(faces))
	for _, row := range faces {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("catalog listing interrupted: %w", err)
		}

		hotel := models.HotelSummary{
			HotelName:  row.HotelName,
			FaceScore:  row.FaceScore,
			FaceEmoji:  row.FaceEmoji,
			ImageURL:   row.ImageURL,
			Aspects:    aspects.Row(row.HotelName),
			SubAspects: subAspects.Row(row.HotelName),
		}
		if hotel.ImageURL == "" {
			hotel.ImageURL = s.images.ImageURL(ctx, row.HotelName)
		}
		if row.Price != nil {
			hotel.Price = *row.Price
		} else {
			hotel.Price = s.prices.Price(row.HotelName)
		}
		if r, ok := ratings[row.HotelName]; ok {
			hotel.Rating = &r
		}
		hotels = append(hotels, hotel)
	}
	return hotels, nil
}

// Names lists the hotels of the catalog without enriching them.
func (s *CatalogService) Names(ctx context.Context) ([]string, error) {
	faces, err := dataset.LoadFaceScores(s.source.FaceScoresFile)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(faces))
	for _, row := range faces {
		names = append(names, row.HotelName)
	}
	return names, nil
}

package dataset

import (
	"errors"
	"fmt"
	"io"
)

const (
	ColHotelName    = "hotel_name"
	ColReviewRating = "review_rating"
	ColReviewText   = "processed_final_review"
)

// Review is one row of the processed review dataset.
type Review struct {
	HotelName string
	Rating    *float64
	Text      string
}

// LoadReviews reads the review dataset at path.
func LoadReviews(path string) ([]Review, error) {
	var reviews []Review
	err := openFile(path, func(r io.Reader) error {
		var err error
		reviews, err = ReadReviews(r)
		return err
	})
	return reviews, err
}

// ReadReviews parses review rows from r. All three review columns must be
// present in the header; individual cells may be empty.
func ReadReviews(r io.Reader) ([]Review, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr, ColHotelName, ColReviewRating, ColReviewText)
	if err != nil {
		return nil, err
	}

	var reviews []Review
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read review row: %w", err)
		}

		rating, err := parseOptionalFloat(h.get(record, ColReviewRating))
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, ColReviewRating, err)
		}

		reviews = append(reviews, Review{
			HotelName: h.get(record, ColHotelName),
			Rating:    rating,
			Text:      h.get(record, ColReviewText),
		})
	}
	return reviews, nil
}

// MeanRatings averages the present ratings per hotel over every row,
// regardless of whether the row carries review text.
func MeanRatings(reviews []Review) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range reviews {
		if r.HotelName == "" || r.Rating == nil {
			continue
		}
		sums[r.HotelName] += *r.Rating
		counts[r.HotelName]++
	}

	means := make(map[string]float64, len(sums))
	for name, sum := range sums {
		means[name] = sum / float64(counts[name])
	}
	return means
}

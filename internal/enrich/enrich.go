// Package enrich resolves the per-hotel image URL and price shown alongside
// hotel listings and recommendations. Lookups never fail: every error path
// degrades to a default value.
package enrich

import "context"

// ImageResolver returns an image URL for a hotel.
type ImageResolver interface {
	ImageURL(ctx context.Context, hotelName string) string
}

// PriceOracle returns the current nightly price for a hotel.
type PriceOracle interface {
	Price(hotelName string) float64
}

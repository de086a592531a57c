package enrich

import (
	"context"

	"hotel-recommender/internal/logger"
	"hotel-recommender/internal/telemetry"
)

// PhotoSearcher finds a photo URL for a free-text query.
type PhotoSearcher interface {
	SearchPhoto(ctx context.Context, query string) (string, error)
}

// CachedImageResolver looks hotels up in an ImageStore and falls back to a
// photo search on a miss. Whatever the search yields, including the
// placeholder on failure, is written back so the hotel is not searched again.
type CachedImageResolver struct {
	store       ImageStore
	search      PhotoSearcher
	placeholder string
	metrics     *telemetry.Metrics
}

func NewCachedImageResolver(store ImageStore, search PhotoSearcher, placeholder string, metrics *telemetry.Metrics) *CachedImageResolver {
	return &CachedImageResolver{
		store:       store,
		search:      search,
		placeholder: placeholder,
		metrics:     metrics,
	}
}

func (r *CachedImageResolver) ImageURL(ctx context.Context, hotelName string) string {
	url, ok, err := r.store.Get(ctx, hotelName)
	if err != nil {
		logger.Warn("Image cache read failed", "hotel", hotelName, "error", err)
	}
	if ok && url != "" {
		r.metrics.RecordImageLookup(ctx, "cache")
		return url
	}

	url, err = r.search.SearchPhoto(ctx, hotelName)
	if err != nil || url == "" {
		logger.Warn("Image search failed, using placeholder", "hotel", hotelName, "error", err)
		url = r.placeholder
		r.metrics.RecordImageLookup(ctx, "placeholder")
	} else {
		r.metrics.RecordImageLookup(ctx, "api")
	}

	if err := r.store.Put(ctx, hotelName, url); err != nil {
		logger.Warn("Image cache write failed", "hotel", hotelName, "error", err)
	}
	return url
}

// Warm resolves every hotel in names, populating the store. It stops early if
// ctx is cancelled and returns how many hotels were resolved.
func (r *CachedImageResolver) Warm(ctx context.Context, names []string) int {
	resolved := 0
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		r.ImageURL(ctx, name)
		resolved++
	}
	return resolved
}

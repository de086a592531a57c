package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics. A nil *Metrics records nothing.
type Metrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	IndexBuildTime    metric.Float64Histogram
	IndexedHotels     metric.Int64Gauge
	ImageLookups      metric.Int64Counter
	CircuitBreakerOps metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("hotel-recommender")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	indexBuildTime, err := meter.Float64Histogram(
		"recommend.index.build.duration",
		metric.WithDescription("Similarity index build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	indexedHotels, err := meter.Int64Gauge(
		"recommend.index.hotels",
		metric.WithDescription("Hotels held by the similarity index"),
	)
	if err != nil {
		return nil, err
	}

	imageLookups, err := meter.Int64Counter(
		"images.lookups.total",
		metric.WithDescription("Hotel image lookups by outcome"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerOps, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		IndexBuildTime:    indexBuildTime,
		IndexedHotels:     indexedHotels,
		ImageLookups:      imageLookups,
		CircuitBreakerOps: circuitBreakerOps,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(ctx context.Context, method, path, status string, duration float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, duration, attrs)
}

// RecordIndexBuild records one similarity index build.
func (m *Metrics) RecordIndexBuild(ctx context.Context, duration float64, hotels int, status string) {
	if m == nil {
		return
	}
	m.IndexBuildTime.Record(ctx, duration, metric.WithAttributes(attribute.String("status", status)))
	if status != "error" {
		m.IndexedHotels.Record(ctx, int64(hotels))
	}
}

// RecordImageLookup counts an image lookup; source is "cache", "api" or "placeholder".
func (m *Metrics) RecordImageLookup(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.ImageLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	if m == nil {
		return
	}
	m.CircuitBreakerOps.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("state", state),
	))
}

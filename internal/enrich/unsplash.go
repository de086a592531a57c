package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"hotel-recommender/internal/logger"
	"hotel-recommender/internal/telemetry"
)

// ErrNoResults is returned when a search succeeds but matches no photo.
var ErrNoResults = errors.New("no photo found")

type UnsplashConfig struct {
	BaseURL   string
	AccessKey string
	Timeout   time.Duration
	// RequestsPerMinute caps outgoing searches; 0 disables the limiter.
	RequestsPerMinute int
}

// UnsplashClient searches photos for a hotel name. Calls pass through a rate
// limiter and a circuit breaker so an unavailable API fails fast.
type UnsplashClient struct {
	cfg     UnsplashConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

func NewUnsplashClient(cfg UnsplashConfig, metrics *telemetry.Metrics) *UnsplashClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "UnsplashAPI",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// an empty result set means the API is healthy
			return err == nil || errors.Is(err, ErrNoResults)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.RecordCircuitBreakerState(name, to.String())
		},
	})

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.RequestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}

	return &UnsplashClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: limiter,
	}
}

// SearchPhoto returns the regular-size URL of the first photo matching query.
func (c *UnsplashClient) SearchPhoto(ctx context.Context, query string) (string, error) {
	if c.cfg.AccessKey == "" {
		return "", errors.New("unsplash access key not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.search(ctx, query)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *UnsplashClient) search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("client_id", c.cfg.AccessKey)
	params.Set("per_page", "1")
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/search/photos?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read unsplash response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unsplash returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode unsplash response: %w", err)
	}
	if len(parsed.Results) == 0 || parsed.Results[0].URLs.Regular == "" {
		return "", ErrNoResults
	}
	return parsed.Results[0].URLs.Regular, nil
}

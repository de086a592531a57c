package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel-recommender/internal/auth"
	"hotel-recommender/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Minute)
	authMW := NewAuthMiddleware(tokens)

	router := gin.New()
	router.GET("/me", authMW.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUsername(c))
	})

	token, _, err := tokens.Issue("alice")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		assert.Contains(t, w.Body.String(), "Not authenticated")
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestSizeLimit(t *testing.T) {
	router := gin.New()
	router.Use(RequestSizeLimit(8))
	router.POST("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "request_too_large")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	router := gin.New()
	router.Use(RateLimitMiddleware(rdb, 1, time.Minute))
	router.GET("/api/hotels", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hotels", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCompressionMiddleware(t *testing.T) {
	payload := strings.Repeat("Seaside Inn clean pool view. ", 40)

	router := gin.New()
	router.Use(CompressionMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, payload)
	})

	tests := []struct {
		acceptEncoding string
		algorithm      utils.CompressionAlgorithm
	}{
		{"br, gzip", utils.CompressionBrotli},
		{"gzip", utils.CompressionGzip},
		{"", utils.CompressionNone},
	}
	for _, tt := range tests {
		t.Run(string(tt.algorithm), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))
			if tt.algorithm == utils.CompressionNone {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				assert.Equal(t, payload, w.Body.String())
				return
			}
			assert.Equal(t, string(tt.algorithm), w.Header().Get("Content-Encoding"))
			body, err := utils.DecompressData(w.Body.Bytes(), tt.algorithm)
			require.NoError(t, err)
			assert.Equal(t, payload, string(body))
		})
	}
}

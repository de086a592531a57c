package middleware

import (
	"time"

	"hotel-recommender/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware provides OpenTelemetry tracing for Gin
func TracingMiddleware() gin.HandlerFunc {
	return otelgin.Middleware("hotel-recommender")
}

// EnrichTrace adds the request ID and authenticated user to the active span.
func EnrichTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		span.SetAttributes(attribute.String("request.id", GetRequestID(c)))

		c.Next()

		if username := GetUsername(c); username != "" {
			span.SetAttributes(attribute.String("user.name", username))
		}
		span.SetAttributes(attribute.Int("http.response.size", c.Writer.Size()))
	}
}

// MetricsMiddleware records request metrics
func MetricsMiddleware(metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusStr := "success"
		if c.Writer.Status() >= 400 {
			statusStr = "error"
		}
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordRequest(c.Request.Context(), c.Request.Method, path, statusStr, time.Since(start).Seconds())
	}
}

package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout is the default timeout for most database operations
	DefaultTimeout = 10 * time.Second

	// LongTimeout covers catalog exports and cache warm-up runs.
	LongTimeout = 30 * time.Second
)

// WithTimeout creates a context with default timeout
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

// WithLongTimeout creates a context with long timeout for operations that may take longer
func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, LongTimeout)
}

package observability

import (
	"context"

	"github.com/bkyoung/issuegraph/internal/adapter/resthttp"
	"github.com/bkyoung/issuegraph/internal/usecase/fetch"
)

// FetchLogger adapts resthttp.Logger to the fetch.Logger interface.
// This allows the fetcher to use the same structured logging
// infrastructure as the HTTP client.
type FetchLogger struct {
	logger resthttp.Logger
}

// NewFetchLogger creates a new fetch logger adapter.
func NewFetchLogger(logger resthttp.Logger) fetch.Logger {
	return &FetchLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
// Delegates to the underlying resthttp.Logger for consistent structured logging.
func (l *FetchLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
// Delegates to the underlying resthttp.Logger for consistent structured logging.
func (l *FetchLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}

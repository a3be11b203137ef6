package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v3"
)

// Logging logs HTTP requests with method, path, status, and duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		Schema: httplog.SchemaECS.Concise(true),

		// Requests carry API keys, so headers are allowlisted and bodies
		// never reach the logs.
		LogRequestHeaders:  []string{"Content-Type", "Origin", "Anthropic-Version"},
		LogResponseHeaders: []string{},
		LogRequestBody:     nil, // Never log request bodies
		LogResponseBody:    nil, // Never log response bodies

		RecoverPanics: false, // use dedicated middleware, panics are logged regardless
	})
}

// SetLogAttrs sets attributes on the request log.
func SetLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	httplog.SetAttrs(ctx, attrs...)
}

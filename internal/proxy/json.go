package proxy

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter"
)

// writeJSON writes a JSON response with the given status code.
// Logs encoding failures internally using the provided context.
func writeJSON(ctx context.Context, w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	// Headers and status are written before encoding to avoid buffering.
	// If encoding fails, the client may receive a partial response.
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// writeError maps an adapter error to the client error envelope and the
// HTTP status derived from the failure kind. Upstream failures relay the
// upstream status unchanged.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	resp, status := anthropicadapter.ToErrorResponse(err)
	writeJSON(ctx, w, resp, status)
}

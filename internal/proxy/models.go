package proxy

import (
	"log/slog"
	"net/http"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/openaichat"
)

// ListModelsHandler relays the upstream model listing, translated to the
// Messages API shape so clients can populate model pickers.
type ListModelsHandler struct {
	Adapter   *openaichat.CreateMessageAdapter
	Transport http.RoundTripper
}

// Compile-time check that ListModelsHandler implements http.Handler
var _ http.Handler = (*ListModelsHandler)(nil)

func (h *ListModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	models, err := h.Adapter.ListModels(ctx, h.Transport)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list upstream models", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, models, http.StatusOK)
}

package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter"
	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/openaichat"
	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// validate checks the structural requirements of inbound requests.
var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateMessageHandler handles Messages API create-message requests,
// buffered and streaming.
type CreateMessageHandler struct {
	Adapter   *openaichat.CreateMessageAdapter
	Transport http.RoundTripper
	Metrics   *Metrics
}

// Compile-time check that CreateMessageHandler implements http.Handler
var _ http.Handler = (*CreateMessageHandler)(nil)

// ServeHTTP implements http.Handler interface for streaming or non-streaming requests.
func (h *CreateMessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.MessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			slog.WarnContext(ctx, "request exceeds size limit", "limit_bytes", maxBytesErr.Limit)
			writeJSON(ctx, w,
				types.NewErrorResponse("request_too_large", http.StatusText(http.StatusRequestEntityTooLarge)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		slog.ErrorContext(ctx, "failed to decode request", "error", err)
		writeError(ctx, w, &anthropicadapter.SerializationError{Op: "decode request body", Err: err})
		return
	}

	if err := validate.Struct(req); err != nil {
		slog.WarnContext(ctx, "request failed validation", "error", err)
		writeJSON(ctx, w,
			types.NewErrorResponse("invalid_request_error", err.Error()),
			http.StatusBadRequest,
		)
		return
	}

	if req.Stream != nil && *req.Stream {
		h.streamResponse(ctx, w, req)
	} else {
		h.writeResponse(ctx, w, req)
	}
}

// writeResponse handles buffered message requests.
func (h *CreateMessageHandler) writeResponse(
	ctx context.Context,
	w http.ResponseWriter,
	req types.MessagesRequest,
) {
	if ctx.Err() != nil {
		return
	}
	response, err := h.Adapter.ProcessRequest(ctx, req, h.Transport)
	if err != nil {
		slog.ErrorContext(ctx, "request failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, response, http.StatusOK)
}

// streamResponse relays translated events over SSE. Every frame carries
// the event name in the "event:" field with the JSON payload as data; the
// stream ends after message_stop or a terminal error event.
func (h *CreateMessageHandler) streamResponse(
	ctx context.Context,
	w http.ResponseWriter,
	req types.MessagesRequest,
) {
	if ctx.Err() != nil {
		return
	}
	stream, err := h.Adapter.ProcessStreamingRequest(ctx, req, h.Transport)
	if err != nil {
		slog.ErrorContext(ctx, "streaming request failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "SSE not supported", "error", err)
		writeError(ctx, w, err)
		return
	}

	for event, err := range stream {
		// Check for client disconnect before writing
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "client disconnected during stream")
			return
		}

		// A mid-stream failure becomes a single terminal error event; the
		// response status is already committed by then.
		if err != nil {
			slog.ErrorContext(ctx, "stream error", "error", err)
			errorEvent := types.NewStreamErrorEvent(fmt.Sprintf("Stream error: %v", err))
			if writeErr := sse.WriteEvent(errorEvent.EventType()); writeErr != nil {
				slog.ErrorContext(ctx, "failed to write error event", "error", writeErr)
				return
			}
			if writeErr := sse.WriteData(errorEvent); writeErr != nil {
				slog.ErrorContext(ctx, "failed to write error event", "error", writeErr)
			}
			return
		}

		if writeErr := sse.WriteEvent(event.EventType()); writeErr != nil {
			slog.ErrorContext(ctx, "failed to write event", "error", writeErr)
			return
		}
		if writeErr := sse.WriteData(event); writeErr != nil {
			slog.ErrorContext(ctx, "failed to write event", "error", writeErr)
			return
		}
		h.Metrics.ObserveStreamEvent(event.EventType())
	}
}

package openaichat

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter"
	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// defaultRequestTimeout bounds one upstream exchange end to end, including
// the full read of a streaming body.
const defaultRequestTimeout = 300 * time.Second

// CreateMessageAdapter translates Messages API requests into chat
// completions calls against the configured upstream. The zero timeout
// falls back to defaultRequestTimeout. With LogPayloads set, translated
// payloads are logged at debug level.
type CreateMessageAdapter struct {
	BaseURL        string
	Overrides      ModelOverrides
	RequestTimeout time.Duration
	LogPayloads    bool
}

// Compile-time check that the adapter satisfies the operation contract.
var _ anthropicadapter.CreateMessageAdapter = (*CreateMessageAdapter)(nil)

// ProcessRequest performs a buffered exchange: translate, call upstream,
// translate back.
func (a *CreateMessageAdapter) ProcessRequest(
	ctx context.Context,
	clientReq types.MessagesRequest,
	transport http.RoundTripper,
) (*types.MessagesResponse, error) {
	c, err := newClient(a.BaseURL, transport)
	if err != nil {
		return nil, err
	}

	upstreamReq := translateRequest(clientReq, a.Overrides)
	a.logPayload(ctx, "translated upstream request", upstreamReq)

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
	defer cancel()

	upstreamResp, err := c.createCompletion(ctx, upstreamReq)
	if err != nil {
		return nil, err
	}
	a.logPayload(ctx, "upstream response", upstreamResp)

	return toMessagesResponse(*upstreamResp)
}

// ProcessStreamingRequest opens a streaming exchange and returns the
// translated event sequence. The upstream body stays open until the
// consumer finishes iterating; the overall request timeout covers the
// entire read.
func (a *CreateMessageAdapter) ProcessStreamingRequest(
	ctx context.Context,
	clientReq types.MessagesRequest,
	transport http.RoundTripper,
) (iter.Seq2[types.StreamEvent, error], error) {
	c, err := newClient(a.BaseURL, transport)
	if err != nil {
		return nil, err
	}

	upstreamReq := translateRequest(clientReq, a.Overrides)
	a.logPayload(ctx, "translated upstream request", upstreamReq)

	streamCtx, cancel := context.WithTimeout(ctx, a.requestTimeout())

	body, err := c.createCompletionStream(streamCtx, upstreamReq)
	if err != nil {
		cancel()
		return nil, err
	}

	events := reassemble(streamCtx, body)
	return func(yield func(types.StreamEvent, error) bool) {
		defer cancel()
		for event, err := range events {
			if !yield(event, err) {
				return
			}
		}
	}, nil
}

func (a *CreateMessageAdapter) requestTimeout() time.Duration {
	if a.RequestTimeout > 0 {
		return a.RequestTimeout
	}
	return defaultRequestTimeout
}

// logPayload dumps a translated payload at debug level when payload
// logging is enabled.
func (a *CreateMessageAdapter) logPayload(ctx context.Context, msg string, payload any) {
	if !a.LogPayloads {
		return
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return
	}
	slog.DebugContext(ctx, msg, "payload", string(encoded))
}

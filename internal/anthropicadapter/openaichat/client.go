package openaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter"
)

const (
	// Well-known endpoint suffixes appended to the configured base URL.
	completionsPath = "/v1/chat/completions"
	modelsPath      = "/v1/models"

	// maxErrorBodyBytes caps how much of an upstream error body is retained.
	maxErrorBodyBytes = 64 * 1024
)

// client performs upstream exchanges. The transport chain handles
// authentication.
type client struct {
	baseURL    string
	httpClient *http.Client
}

// newClient creates an upstream client with the provided transport.
func newClient(baseURL string, transport http.RoundTripper) (*client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}

	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			// Client.Timeout = 0 allows long-running SSE streams; request
			// deadlines come from the caller's context.
		},
	}, nil
}

func (c *client) completionsURL() string { return c.baseURL + completionsPath }

func (c *client) modelsURL() string { return c.baseURL + modelsPath }

// createCompletion performs a buffered completion exchange.
func (c *client) createCompletion(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.postJSON(ctx, c.completionsURL(), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &anthropicadapter.TransformError{Reason: "response body is not valid JSON", Err: err}
	}
	return &out, nil
}

// createCompletionStream opens a streaming completion exchange and returns
// the raw SSE body. The caller owns closing it.
func (c *client) createCompletionStream(ctx context.Context, req Request) (io.ReadCloser, error) {
	resp, err := c.postJSON(ctx, c.completionsURL(), req, withAccept("text/event-stream"))
	if err != nil {
		return nil, err
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// listModels fetches the upstream model listing.
func (c *client) listModels(ctx context.Context) (*ModelList, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelsURL(), nil)
	if err != nil {
		return nil, &anthropicadapter.TransportError{Op: "build upstream request", Err: err}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &anthropicadapter.TransportError{Op: "call upstream", Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out ModelList
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &anthropicadapter.TransformError{Reason: "model listing is not valid JSON", Err: err}
	}
	return &out, nil
}

// withAccept sets the Accept header on an outbound request.
func withAccept(contentType string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Accept", contentType)
	}
}

func (c *client) postJSON(ctx context.Context, url string, payload any, opts ...func(*http.Request)) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &anthropicadapter.SerializationError{Op: "encode upstream request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &anthropicadapter.TransportError{Op: "build upstream request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(httpReq)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &anthropicadapter.TransportError{Op: "call upstream", Err: err}
	}
	return resp, nil
}

// checkStatus converts a non-2xx upstream status into an UpstreamError
// carrying the capped body text.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	text := strings.TrimSpace(string(body))
	if readErr != nil {
		text = "Unknown error"
	}

	return &anthropicadapter.UpstreamError{StatusCode: resp.StatusCode, Body: text}
}

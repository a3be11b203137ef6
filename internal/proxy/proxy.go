package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/openaichat"
	"github.com/m0n0x41d/anthropic-proxy/internal/observability/middleware"
)

const defaultMaxRequestBytes = 10 << 20 // 10 MiB

// ReadinessChecker reports whether the application is ready to serve traffic.
type ReadinessChecker interface {
	IsReady() bool
}

type options struct {
	transport       http.RoundTripper
	maxRequestBytes int64
}

// Option configures optional Proxy behavior.
type Option func(*options)

// WithTransport sets the transport used for upstream calls.
// Defaults to http.DefaultTransport.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithMaxRequestBytes overrides the request body size limit.
func WithMaxRequestBytes(maxBytes int64) Option {
	return func(o *options) {
		o.maxRequestBytes = maxBytes
	}
}

// Proxy is the HTTP server translating Messages API calls onto a chat
// completions upstream.
type Proxy struct {
	handler http.Handler
	server  *http.Server
}

// New assembles the route table and middleware chain around the adapter.
// Upstream calls go through the configured transport, wrapped for metrics.
func New(adapter *openaichat.CreateMessageAdapter, health ReadinessChecker, opts ...Option) (*Proxy, error) {
	if adapter == nil {
		return nil, errors.New("adapter must not be nil")
	}
	if health == nil {
		return nil, errors.New("readiness checker must not be nil")
	}

	o := &options{
		transport:       http.DefaultTransport,
		maxRequestBytes: defaultMaxRequestBytes,
	}
	for _, opt := range opts {
		opt(o)
	}

	metrics := NewMetrics()
	transport := &instrumentedTransport{metrics: metrics, base: o.transport}

	mux := http.NewServeMux()
	mux.Handle("POST /v1/messages", metrics.InstrumentHandler("/v1/messages", &CreateMessageHandler{
		Adapter:   adapter,
		Transport: transport,
		Metrics:   metrics,
	}))
	mux.Handle("GET /v1/models", metrics.InstrumentHandler("/v1/models", &ListModelsHandler{
		Adapter:   adapter,
		Transport: transport,
	}))
	mux.Handle("GET /health", livenessHandler())
	mux.Handle("GET /health/ready", readinessHandler(health))
	mux.Handle("GET /metrics", metrics.Handler())

	handler := chain(mux,
		Recovery,
		middleware.RequestIDGeneration,
		middleware.TraceContextExtraction,
		middleware.Logging(slog.Default()),
		middleware.RequestIDPropagation,
		CORS,
		RequestSizeLimit(o.maxRequestBytes),
	)

	return &Proxy{handler: handler}, nil
}

// ServeHTTP dispatches through the full middleware chain and route table.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// Start listens on addr and serves in the background. The returned channel
// receives the terminal serve error, or nil after a clean shutdown.
func (p *Proxy) Start(ctx context.Context, addr string) (<-chan error, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	// No global read/write timeouts: streamed responses can outlive any
	// fixed value. The adapter bounds each upstream exchange instead.
	p.server = &http.Server{
		Handler: p.handler,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := p.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	slog.InfoContext(ctx, "proxy server listening", "addr", listener.Addr().String())
	return errCh, nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests up
// to the context deadline.
func (p *Proxy) Shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}

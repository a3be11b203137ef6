package proxy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/openaichat"
	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// toggleReadiness is a readiness checker the test can flip.
type toggleReadiness struct {
	ready bool
}

func (c *toggleReadiness) IsReady() bool { return c.ready }

func newTestProxy(t *testing.T, health ReadinessChecker, opts ...Option) *Proxy {
	t.Helper()

	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	adapter := &openaichat.CreateMessageAdapter{BaseURL: "https://upstream.example"}

	proxy, err := New(adapter, health, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return proxy
}

func TestNewRejectsNilDependencies(t *testing.T) {
	if _, err := New(nil, mockReadinessChecker{}); err == nil {
		t.Error("want error for nil adapter")
	}
	if _, err := New(&openaichat.CreateMessageAdapter{BaseURL: "https://u.example"}, nil); err == nil {
		t.Error("want error for nil readiness checker")
	}
}

func TestProxyHealthEndpoints(t *testing.T) {
	health := &toggleReadiness{}
	proxy := newTestProxy(t, health)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := get("/health"); rec.Code != http.StatusOK {
		t.Errorf("liveness = %d", rec.Code)
	}
	if rec := get("/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness before ready = %d", rec.Code)
	}

	health.ready = true
	if rec := get("/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("readiness after ready = %d", rec.Code)
	}
}

func TestProxyCORSPreflight(t *testing.T) {
	proxy := newTestProxy(t, mockReadinessChecker{})

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/messages", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("allow origin = %q", origin)
	}
	if methods := rec.Header().Get("Access-Control-Allow-Methods"); methods != "*" {
		t.Errorf("allow methods = %q", methods)
	}
}

func TestProxyRequestIDHeader(t *testing.T) {
	proxy := newTestProxy(t, mockReadinessChecker{},
		WithTransport(&mockUpstreamTransport{
			responseBody:   benchBufferedResponse,
			responseStatus: http.StatusOK,
		}),
	)

	t.Run("generated when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(benchMessagesRequest))
		proxy.ServeHTTP(rec, req)

		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}
	})

	t.Run("echoed when provided", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(benchMessagesRequest))
		req.Header.Set("X-Request-ID", "req-fixed-1")
		proxy.ServeHTTP(rec, req)

		if id := rec.Header().Get("X-Request-ID"); id != "req-fixed-1" {
			t.Errorf("X-Request-ID = %q", id)
		}
	})
}

func TestProxyRequestSizeLimit(t *testing.T) {
	proxy := newTestProxy(t, mockReadinessChecker{},
		WithTransport(&mockUpstreamTransport{
			responseBody:   benchBufferedResponse,
			responseStatus: http.StatusOK,
		}),
		WithMaxRequestBytes(64),
	)

	big := `{"model":"claude-sonnet-4","max_tokens":1024,"messages":[{"role":"user","content":"` +
		strings.Repeat("x", 256) + `"}]}`

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(big)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp types.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Err.Type != "request_too_large" {
		t.Errorf("error type = %q", resp.Err.Type)
	}
}

func TestProxyModelsEndpoint(t *testing.T) {
	proxy := newTestProxy(t, mockReadinessChecker{},
		WithTransport(&mockUpstreamTransport{
			responseBody:   `{"object":"list","data":[{"id":"gpt-4o","object":"model","created":1715367049,"owned_by":"openai"},{"id":"o3-mini","object":"model","created":1737146383,"owned_by":"openai"}]}`,
			responseStatus: http.StatusOK,
		}),
	)

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var list types.ModelList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Data) != 2 {
		t.Fatalf("models = %+v", list.Data)
	}
	if list.Data[0].ID != "gpt-4o" || list.Data[1].ID != "o3-mini" {
		t.Errorf("model ids = %q, %q", list.Data[0].ID, list.Data[1].ID)
	}
}

func TestProxyMetricsEndpoint(t *testing.T) {
	proxy := newTestProxy(t, mockReadinessChecker{},
		WithTransport(&mockUpstreamTransport{
			responseBody:   benchBufferedResponse,
			responseStatus: http.StatusOK,
		}),
	)

	// One handled request so the counters have samples.
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(benchMessagesRequest)))
	if rec.Code != http.StatusOK {
		t.Fatalf("seed request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, metric := range []string{
		`anthropic_proxy_requests_total{code="200",endpoint="/v1/messages"} 1`,
		`anthropic_proxy_upstream_requests_total{code="200"} 1`,
		"anthropic_proxy_request_duration_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %q", metric)
		}
	}
}

func TestProxyUnknownRoute(t *testing.T) {
	proxy := newTestProxy(t, mockReadinessChecker{})

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2/other", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

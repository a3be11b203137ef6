package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/openaichat"
	"github.com/m0n0x41d/anthropic-proxy/internal/proxy"
	"github.com/m0n0x41d/anthropic-proxy/internal/tokensource"
)

// App orchestrates the lifecycle of the proxy server and related services.
type App struct {
	config *Config
	health *Health
	proxy  *proxy.Proxy
}

// New assembles the proxy server from the resolved configuration: token
// storage, the authenticated upstream transport, and the translation adapter.
func New(ctx context.Context, cfg *Config) (*App, error) {
	store, err := cfg.Auth.NewTokenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}

	key, err := store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream API key: %w", err)
	}
	if key == "" {
		slog.WarnContext(ctx, "no upstream API key configured, requests are sent unauthenticated")
	}

	base := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.Upstream.ConnectTimeout,
		}).DialContext,
		MaxIdleConnsPerHost: 10,
	}
	transport := tokensource.NewTransport(tokensource.New(key), base)

	adapter := &openaichat.CreateMessageAdapter{
		BaseURL: cfg.Upstream.BaseURL,
		Overrides: openaichat.ModelOverrides{
			Reasoning:  cfg.Models.Reasoning,
			Completion: cfg.Models.Completion,
		},
		RequestTimeout: cfg.Upstream.RequestTimeout,
		LogPayloads:    cfg.Verbose,
	}

	health := NewHealth()

	proxyServer, err := proxy.New(adapter, health, proxy.WithTransport(transport))
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}

	return &App{
		config: cfg,
		health: health,
		proxy:  proxyServer,
	}, nil
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	var shutdownFuncs []func(context.Context) error

	addr := a.config.Addr()
	slog.InfoContext(gCtx, "starting proxy server",
		"addr", addr,
		"upstream", a.config.Upstream.BaseURL,
	)
	proxyErrCh, err := a.proxy.Start(gCtx, addr)
	if err != nil {
		return fmt.Errorf("proxy startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.proxy.Shutdown)
	a.health.SetReady(true)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-proxyErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "proxy runtime error", "error", err)
				return fmt.Errorf("proxy: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	runtimeErr := g.Wait()

	a.health.SetReady(false)
	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}

package app

import (
	"sync/atomic"

	"github.com/m0n0x41d/anthropic-proxy/internal/proxy"
)

// Health tracks whether the application is ready to serve traffic.
// All methods are safe for concurrent use.
type Health struct {
	ready atomic.Bool
}

var _ proxy.ReadinessChecker = (*Health)(nil)

// NewHealth returns a Health that reports not ready until SetReady is called.
func NewHealth() *Health {
	return &Health{}
}

// SetReady updates the readiness state.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the current readiness state.
func (h *Health) IsReady() bool {
	return h.ready.Load()
}

package proxy

import (
	"io"
	"net/http"
)

// livenessHandler answers liveness probes. Reaching the handler at all
// proves the process is serving, so the answer is always 200 OK.
func livenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "OK")
	}
}

// readinessHandler answers readiness probes from the checker's current
// state: 200 once the application accepts traffic, 503 before and during
// shutdown.
func readinessHandler(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !checker.IsReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, "unavailable")
			return
		}
		io.WriteString(w, "OK")
	}
}

package proxy

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// Recovery converts handler panics into a logged 500 error response. When
// the panic happens mid-stream the headers are already on the wire and the
// write degrades to a log entry only.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				slog.ErrorContext(r.Context(), "handler panicked",
					"panic", v,
					"stack", string(debug.Stack()),
				)
				writeJSON(r.Context(), w,
					types.NewErrorResponse("api_error", http.StatusText(http.StatusInternalServerError)),
					http.StatusInternalServerError,
				)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RequestSizeLimit caps the inbound body size. Handlers reading past the
// cap get *http.MaxBytesError from the body reader.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows any origin and short-circuits preflight requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// chain wraps h in the given middlewares, first middleware outermost.
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// SSEWriter emits server-sent events with an explicit event name per
// frame, flushing after every frame so clients see events as they happen.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter prepares the response for server-sent events. Fails when
// the ResponseWriter cannot flush, since buffered SSE defeats streaming.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent writes the "event:" line of the next frame. The frame is not
// complete until WriteData follows.
func (s *SSEWriter) WriteEvent(name string) error {
	_, err := fmt.Fprintf(s.w, "event: %s\n", name)
	return err
}

// WriteData writes the JSON-encoded payload as the "data:" line,
// terminates the frame, and flushes it.
func (s *SSEWriter) WriteData(data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", encoded); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

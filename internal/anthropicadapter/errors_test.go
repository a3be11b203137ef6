package anthropicadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantType    string
		wantMessage string
	}{
		{
			name:        "serialization failure is the client's fault",
			err:         &SerializationError{Op: "decode request body", Err: errors.New("unexpected EOF")},
			wantStatus:  http.StatusBadRequest,
			wantType:    "invalid_request_error",
			wantMessage: "decode request body: unexpected EOF",
		},
		{
			name:        "upstream status is relayed",
			err:         &UpstreamError{StatusCode: http.StatusTooManyRequests, Body: "slow down"},
			wantStatus:  http.StatusTooManyRequests,
			wantType:    "rate_limit_error",
			wantMessage: "slow down",
		},
		{
			name:        "upstream overload keeps its non-standard status",
			err:         &UpstreamError{StatusCode: 529, Body: "overloaded"},
			wantStatus:  529,
			wantType:    "overloaded_error",
			wantMessage: "overloaded",
		},
		{
			name:        "upstream auth failure",
			err:         &UpstreamError{StatusCode: http.StatusUnauthorized, Body: "bad key"},
			wantStatus:  http.StatusUnauthorized,
			wantType:    "authentication_error",
			wantMessage: "bad key",
		},
		{
			name:        "empty upstream body falls back to status text",
			err:         &UpstreamError{StatusCode: http.StatusServiceUnavailable},
			wantStatus:  http.StatusServiceUnavailable,
			wantType:    "api_error",
			wantMessage: "Service Unavailable",
		},
		{
			name:        "untranslatable upstream reply",
			err:         &TransformError{Reason: "no choices in response"},
			wantStatus:  http.StatusBadGateway,
			wantType:    "api_error",
			wantMessage: "cannot translate upstream response: no choices in response",
		},
		{
			name:        "undecodable upstream body is not the client's fault",
			err:         &TransformError{Reason: "response body is not valid JSON", Err: errors.New("invalid character 'o' looking for beginning of value")},
			wantStatus:  http.StatusBadGateway,
			wantType:    "api_error",
			wantMessage: "cannot translate upstream response: response body is not valid JSON: invalid character 'o' looking for beginning of value",
		},
		{
			name:        "transport failure",
			err:         &TransportError{Op: "call upstream", Err: errors.New("connection refused")},
			wantStatus:  http.StatusBadGateway,
			wantType:    "api_error",
			wantMessage: "call upstream: connection refused",
		},
		{
			name:       "transport deadline becomes a gateway timeout",
			err:        &TransportError{Op: "call upstream", Err: fmt.Errorf("request aborted: %w", context.DeadlineExceeded)},
			wantStatus: http.StatusGatewayTimeout,
			wantType:   "api_error",
		},
		{
			name:        "wrapped errors are still classified",
			err:         fmt.Errorf("handling request: %w", &UpstreamError{StatusCode: http.StatusNotFound, Body: "no such model"}),
			wantStatus:  http.StatusNotFound,
			wantType:    "not_found_error",
			wantMessage: "no such model",
		},
		{
			name:        "anything else is an internal error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantType:    "api_error",
			wantMessage: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, status := ToErrorResponse(tt.err)

			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if resp.Type != "error" {
				t.Errorf("envelope type = %q, want error", resp.Type)
			}
			if resp.Err.Type != tt.wantType {
				t.Errorf("error type = %q, want %q", resp.Err.Type, tt.wantType)
			}
			if tt.wantMessage != "" && resp.Err.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Err.Message, tt.wantMessage)
			}
		})
	}
}

package anthropicadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// UpstreamError reports a non-success status from the upstream provider.
// Body holds the upstream response body as received, capped by the client.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// TransformError reports an upstream reply that cannot be expressed in
// the inbound protocol, whether it failed to decode or decoded into
// something untranslatable.
type TransformError struct {
	Reason string
	Err    error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot translate upstream response: %s: %v", e.Reason, e.Err)
	}
	return "cannot translate upstream response: " + e.Reason
}

func (e *TransformError) Unwrap() error { return e.Err }

// SerializationError reports a client-supplied payload that failed to
// decode or re-encode. Upstream bodies that fail to decode are a
// TransformError instead; the client is never blamed for those.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// TransportError reports a network-level failure talking to the upstream.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ToErrorResponse maps an adapter error to the response body and HTTP
// status to send back to the client. Upstream failures relay the upstream
// status; everything else is classified by failure kind.
func ToErrorResponse(err error) (*types.ErrorResponse, int) {
	var serialization *SerializationError
	if errors.As(err, &serialization) {
		return types.NewErrorResponse("invalid_request_error", serialization.Error()), http.StatusBadRequest
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		message := upstream.Body
		if message == "" {
			message = http.StatusText(upstream.StatusCode)
		}
		return types.NewErrorResponse(errorTypeForStatus(upstream.StatusCode), message), upstream.StatusCode
	}

	var transform *TransformError
	if errors.As(err, &transform) {
		return types.NewErrorResponse("api_error", transform.Error()), http.StatusBadGateway
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		status := http.StatusBadGateway
		if errors.Is(transport.Err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		return types.NewErrorResponse("api_error", transport.Error()), status
	}

	return types.NewErrorResponse("api_error", err.Error()), http.StatusInternalServerError
}

// errorTypeForStatus picks the error type name for a relayed upstream
// status.
func errorTypeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request_error"
	case http.StatusUnauthorized:
		return "authentication_error"
	case http.StatusForbidden:
		return "permission_error"
	case http.StatusNotFound:
		return "not_found_error"
	case http.StatusRequestEntityTooLarge:
		return "request_too_large"
	case http.StatusTooManyRequests:
		return "rate_limit_error"
	case 529:
		return "overloaded_error"
	default:
		return "api_error"
	}
}

package types

import "fmt"

// ErrorDetail is the inner error object shared by error responses and
// in-stream error events.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e ErrorDetail) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse is the body of a non-2xx reply.
type ErrorResponse struct {
	Type string      `json:"type"`
	Err  ErrorDetail `json:"error"`
}

// NewErrorResponse builds an error body with the given error type and
// message.
func NewErrorResponse(errType, message string) *ErrorResponse {
	return &ErrorResponse{
		Type: "error",
		Err:  ErrorDetail{Type: errType, Message: message},
	}
}

func (e *ErrorResponse) Error() string {
	return e.Err.Error()
}

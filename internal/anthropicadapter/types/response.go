package types

import "encoding/json"

// MessagesResponse is the body of a completed (non-streamed) message.
type MessagesResponse struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Role         string            `json:"role"`
	Content      []ResponseContent `json:"content"`
	Model        string            `json:"model"`
	StopReason   *string           `json:"stop_reason"`
	StopSequence *string           `json:"stop_sequence"`
	Usage        Usage             `json:"usage"`
}

// ResponseContent is one generated content block. Only text and tool_use
// shapes are ever produced; the Type field discriminates and the unused
// fields stay omitted on the wire.
type ResponseContent struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// NewTextContent builds a text content block.
func NewTextContent(text string) ResponseContent {
	return ResponseContent{Type: "text", Text: text}
}

// NewToolUseContent builds a tool_use content block. Input must already be
// valid JSON.
func NewToolUseContent(id, name string, input json.RawMessage) ResponseContent {
	return ResponseContent{Type: "tool_use", ID: id, Name: name, Input: input}
}

// Usage reports token accounting for one exchange.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// DeltaUsage is the reduced usage object attached to message_delta events.
type DeltaUsage struct {
	OutputTokens int `json:"output_tokens"`
}

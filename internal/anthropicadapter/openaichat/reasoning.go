package openaichat

import (
	"encoding/json"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// ModelOverrides routes requests to configured upstream models. Requests
// with extended thinking enabled prefer Reasoning, all others prefer
// Completion; an unset override falls back to the model named by the
// request itself.
type ModelOverrides struct {
	Reasoning  string
	Completion string
}

// effectiveModel resolves the upstream model for a request.
func (o ModelOverrides) effectiveModel(req types.MessagesRequest) string {
	if thinkingEnabled(req) {
		if o.Reasoning != "" {
			return o.Reasoning
		}
		return req.Model
	}

	if o.Completion != "" {
		return o.Completion
	}
	return req.Model
}

// reasoningFragment returns the chain-of-thought fragment of a streamed
// delta. Upstreams disagree on the field name: OpenRouter streams
// "reasoning" while DeepSeek-style APIs stream "reasoning_content".
func (d Delta) reasoningFragment() *string {
	if d.Reasoning != nil {
		return d.Reasoning
	}
	return d.ReasoningContent
}

// thinkingEnabled reports whether the request carries a thinking extension
// object with type "enabled". Anything else, including a malformed thinking
// value, counts as disabled.
func thinkingEnabled(req types.MessagesRequest) bool {
	raw, ok := req.Extra["thinking"]
	if !ok {
		return false
	}

	var thinking struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &thinking); err != nil {
		return false
	}
	return thinking.Type == "enabled"
}

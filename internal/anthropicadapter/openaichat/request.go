package openaichat

import (
	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// translateRequest builds the upstream chat completions request for an
// inbound Messages request. Sampling parameters pass through untouched.
// tool_choice is never forwarded; the upstream default (auto) applies.
func translateRequest(req types.MessagesRequest, overrides ModelOverrides) Request {
	messages := fromSystemPrompt(req.System)
	for _, msg := range req.Messages {
		messages = append(messages, fromMessage(msg)...)
	}

	return Request{
		Model:       overrides.effectiveModel(req),
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.StopSequences,
		Stream:      req.Stream,
		Tools:       fromToolDefinitions(req.Tools),
	}
}

package openaichat

import (
	"encoding/json"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter"
	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// toMessagesResponse translates a complete chat completions response into a
// Messages API response. Only the first choice is considered; a response
// carrying no choices at all cannot be translated.
func toMessagesResponse(resp Response) (*types.MessagesResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, &anthropicadapter.TransformError{Reason: "no choices in response"}
	}
	choice := resp.Choices[0]

	var content []types.ResponseContent
	if choice.Message.Content != nil && *choice.Message.Content != "" {
		content = append(content, types.NewTextContent(*choice.Message.Content))
	}
	for _, call := range choice.Message.ToolCalls {
		content = append(content, toToolUseContent(call))
	}

	return &types.MessagesResponse{
		ID:         resp.ID,
		Type:       "message",
		Role:       "assistant",
		Content:    content,
		Model:      resp.Model,
		StopReason: toStopReason(choice.FinishReason),
		Usage:      toUsage(resp.Usage),
	}, nil
}

// toToolUseContent converts one upstream tool call to a tool_use content
// block. A malformed argument string degrades to an empty input object
// rather than failing the whole response.
func toToolUseContent(call ToolCall) types.ResponseContent {
	input := json.RawMessage(call.Function.Arguments)
	if !json.Valid(input) {
		input = json.RawMessage("{}")
	}

	id := call.ID
	if id == "" {
		id = newToolUseID()
	}

	return types.NewToolUseContent(id, call.Function.Name, input)
}

// toStopReason maps an upstream finish reason to a Messages stop reason.
// The response translator and the stream reassembler share this single
// mapping. Unknown finish reasons map to end_turn; an absent finish reason
// stays absent.
func toStopReason(finishReason *string) *string {
	if finishReason == nil {
		return nil
	}

	var stop string
	switch *finishReason {
	case "tool_calls":
		stop = "tool_use"
	case "stop":
		stop = "end_turn"
	case "length":
		stop = "max_tokens"
	default:
		stop = "end_turn"
	}
	return &stop
}

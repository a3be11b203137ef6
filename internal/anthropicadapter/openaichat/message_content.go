package openaichat

import (
	"fmt"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// fromSystemPrompt hoists the Anthropic system field into leading
// system-role messages, one message per block in block form.
func fromSystemPrompt(system *types.SystemPrompt) []Message {
	if system == nil {
		return nil
	}

	if system.Text != nil {
		return []Message{{Role: "system", Content: NewTextContent(*system.Text)}}
	}

	messages := make([]Message, 0, len(system.Blocks))
	for _, block := range system.Blocks {
		messages = append(messages, Message{Role: "system", Content: NewTextContent(block.Text)})
	}
	return messages
}

// fromMessage converts one Anthropic message into one or more chat messages.
//
// tool_result blocks cannot live inside a user message upstream; each one is
// split out as a standalone tool-role message, emitted in block order before
// the aggregate of the remaining blocks. Thinking blocks are dropped: chat
// completions have no inbound representation for them.
func fromMessage(msg types.Message) []Message {
	if msg.Content.Text != nil {
		return []Message{{Role: msg.Role, Content: NewTextContent(*msg.Content.Text)}}
	}

	var result []Message
	var parts []ContentPart
	var toolCalls []ToolCall

	for _, block := range msg.Content.Blocks {
		switch b := block.(type) {
		case types.TextBlock:
			parts = append(parts, ContentPart{Type: "text", Text: b.Text})
		case types.ImageBlock:
			parts = append(parts, fromImageBlock(b))
		case types.ToolUseBlock:
			toolCalls = append(toolCalls, fromToolUseBlock(b))
		case types.ToolResultBlock:
			result = append(result, Message{
				Role:       "tool",
				Content:    NewTextContent(b.Content),
				ToolCallID: b.ToolUseID,
			})
		case types.ThinkingBlock:
			// Dropped, see above.
		}
	}

	if len(parts) > 0 || len(toolCalls) > 0 {
		result = append(result, Message{
			Role:      msg.Role,
			Content:   aggregateContent(parts),
			ToolCalls: toolCalls,
		})
	}

	return result
}

// aggregateContent packs collected content parts into message content. A
// single text part collapses to the plain-string form; a single image part
// stays a part list. No parts yields nil, serialized as null alongside tool
// calls.
func aggregateContent(parts []ContentPart) *MessageContent {
	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 && parts[0].Type == "text" {
		return NewTextContent(parts[0].Text)
	}
	return NewPartsContent(parts)
}

// fromImageBlock inlines a base64 image block as a data URL content part.
func fromImageBlock(block types.ImageBlock) ContentPart {
	dataURL := fmt.Sprintf("data:%s;base64,%s", block.Source.MediaType, block.Source.Data)
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}}
}

package openaichat

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// fromToolDefinitions transforms Anthropic tool definitions into chat
// completions function declarations. Client-side batching pseudo-tools are
// dropped; when nothing survives the filter, nil is returned so the tools
// field is omitted from the upstream request entirely.
func fromToolDefinitions(tools []types.ToolDefinition) []Tool {
	if len(tools) == 0 {
		return nil
	}

	result := make([]Tool, 0, len(tools))
	for _, tool := range tools {
		if tool.Type == "BatchTool" {
			continue
		}

		result = append(result, Tool{
			Type: "function",
			Function: Function{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  sanitizeSchema(tool.InputSchema),
			},
		})
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// sanitizeSchema strips JSON Schema features OpenAI-compatible providers
// reject, currently "format": "uri". The removal applies at the object
// level and recurses into property schemas and array item schemas. Object
// schemas are copied rather than modified, so the caller's schema stays
// intact; non-object schemas pass through unchanged and the function is
// idempotent.
func sanitizeSchema(schema any) any {
	obj, ok := schema.(map[string]any)
	if !ok {
		return schema
	}

	out := make(map[string]any, len(obj))
	for key, value := range obj {
		out[key] = value
	}

	if format, ok := out["format"].(string); ok && format == "uri" {
		delete(out, "format")
	}

	if properties, ok := out["properties"].(map[string]any); ok {
		cleaned := make(map[string]any, len(properties))
		for key, value := range properties {
			cleaned[key] = sanitizeSchema(value)
		}
		out["properties"] = cleaned
	}

	if items, ok := out["items"]; ok {
		out["items"] = sanitizeSchema(items)
	}

	return out
}

// fromToolUseBlock converts a tool_use block to a chat tool call. Input is
// already raw JSON; an absent input degrades to an empty object since the
// upstream requires an arguments string. The upstream also requires a call
// id, so a fallback is generated when the block omits one.
func fromToolUseBlock(block types.ToolUseBlock) ToolCall {
	id := block.ID
	if id == "" {
		id = newToolCallID()
	}

	arguments := "{}"
	if len(block.Input) > 0 {
		arguments = string(block.Input)
	}

	return ToolCall{
		ID:   id,
		Type: "function",
		Function: FunctionCall{
			Name:      block.Name,
			Arguments: arguments,
		},
	}
}

// newToolCallID generates an OpenAI-style tool call ID (format: call_<8-char-uuid>).
func newToolCallID() string {
	return fmt.Sprintf("call_%s", uuid.New().String()[:8])
}

// newToolUseID generates an Anthropic-style tool use ID (format: toolu_<8-char-uuid>).
// Used as fallback when the upstream omits a tool call id.
func newToolUseID() string {
	return fmt.Sprintf("toolu_%s", uuid.New().String()[:8])
}

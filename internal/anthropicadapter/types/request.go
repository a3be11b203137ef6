package types

import (
	"encoding/json"
	"fmt"
)

// MessagesRequest is the inbound body of a create-message call.
//
// Known fields are modeled explicitly; any remaining top-level fields are
// collected verbatim into Extra so vendor extensions (notably "thinking")
// survive decoding without this package having to know their schema.
type MessagesRequest struct {
	Model         string           `json:"model" validate:"required"`
	Messages      []Message        `json:"messages" validate:"required,min=1"`
	System        *SystemPrompt    `json:"system,omitempty"`
	MaxTokens     int              `json:"max_tokens" validate:"required,min=1"`
	Temperature   *float64         `json:"temperature,omitempty"`
	TopP          *float64         `json:"top_p,omitempty"`
	StopSequences []string         `json:"stop_sequences,omitempty"`
	Stream        *bool            `json:"stream,omitempty"`
	Tools         []ToolDefinition `json:"tools,omitempty"`

	// Extra holds top-level request fields this proxy does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownRequestFields are the top-level keys decoded into struct fields and
// therefore excluded from Extra.
var knownRequestFields = map[string]struct{}{
	"model":          {},
	"messages":       {},
	"system":         {},
	"max_tokens":     {},
	"temperature":    {},
	"top_p":          {},
	"stop_sequences": {},
	"stream":         {},
	"tools":          {},
}

// UnmarshalJSON decodes the known fields and captures everything else in Extra.
func (r *MessagesRequest) UnmarshalJSON(data []byte) error {
	type alias MessagesRequest
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for field := range knownRequestFields {
		delete(all, field)
	}
	if len(all) == 0 {
		all = nil
	}

	*r = MessagesRequest(known)
	r.Extra = all
	return nil
}

// MarshalJSON emits the known fields merged with Extra.
func (r MessagesRequest) MarshalJSON() ([]byte, error) {
	type alias MessagesRequest
	data, err := json.Marshal(alias(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range r.Extra {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// SystemPrompt is either a single string or an ordered list of text blocks.
// Exactly one of Text and Blocks is set after decoding.
type SystemPrompt struct {
	Text   *string
	Blocks []SystemBlock
}

// SystemBlock is one entry of a block-form system prompt.
type SystemBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *SystemPrompt) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		s.Text = &text
		s.Blocks = nil
		return nil
	}

	var blocks []SystemBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("system prompt must be a string or a block list: %w", err)
	}
	s.Text = nil
	s.Blocks = blocks
	return nil
}

func (s SystemPrompt) MarshalJSON() ([]byte, error) {
	if s.Text != nil {
		return json.Marshal(*s.Text)
	}
	return json.Marshal(s.Blocks)
}

// Message is one turn of the conversation.
type Message struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent is either a plain string or an ordered content-block list.
// Exactly one of Text and Blocks is set after decoding.
type MessageContent struct {
	Text   *string
	Blocks []ContentBlock
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		c.Text = &text
		c.Blocks = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("message content must be a string or a block list: %w", err)
	}

	blocks := make([]ContentBlock, 0, len(raw))
	for i, blockJSON := range raw {
		block, err := decodeContentBlock(blockJSON)
		if err != nil {
			return fmt.Errorf("content block %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}
	c.Text = nil
	c.Blocks = blocks
	return nil
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Text != nil {
		return json.Marshal(*c.Text)
	}

	encoded := make([]json.RawMessage, 0, len(c.Blocks))
	for _, block := range c.Blocks {
		blockJSON, err := encodeContentBlock(block)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, blockJSON)
	}
	return json.Marshal(encoded)
}

// ContentBlock is the closed union of request content-block shapes.
type ContentBlock interface {
	isContentBlock()
}

// TextBlock carries plain text.
type TextBlock struct {
	Text string `json:"text"`
}

// ImageBlock carries an inline base64 image.
type ImageBlock struct {
	Source ImageSource `json:"source"`
}

// ImageSource describes the payload of an ImageBlock.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ToolUseBlock records an assistant-issued tool invocation.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResultBlock carries the caller-supplied result for a prior tool use.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
}

// ThinkingBlock is accepted on input for conversation-history round-trips
// but never forwarded upstream.
type ThinkingBlock struct {
	Thinking string `json:"thinking"`
}

func (TextBlock) isContentBlock()       {}
func (ImageBlock) isContentBlock()      {}
func (ToolUseBlock) isContentBlock()    {}
func (ToolResultBlock) isContentBlock() {}
func (ThinkingBlock) isContentBlock()   {}

func decodeContentBlock(data []byte) (ContentBlock, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case "text":
		var block TextBlock
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, err
		}
		return block, nil
	case "image":
		var block ImageBlock
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, err
		}
		return block, nil
	case "tool_use":
		var block ToolUseBlock
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, err
		}
		return block, nil
	case "tool_result":
		var block ToolResultBlock
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, err
		}
		return block, nil
	case "thinking":
		var block ThinkingBlock
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, err
		}
		return block, nil
	default:
		return nil, fmt.Errorf("unknown content block type %q", probe.Type)
	}
}

func encodeContentBlock(block ContentBlock) (json.RawMessage, error) {
	tag := func(blockType string, body any) (json.RawMessage, error) {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
		fields["type"] = json.RawMessage(fmt.Sprintf("%q", blockType))
		return json.Marshal(fields)
	}

	switch b := block.(type) {
	case TextBlock:
		return tag("text", b)
	case ImageBlock:
		return tag("image", b)
	case ToolUseBlock:
		return tag("tool_use", b)
	case ToolResultBlock:
		return tag("tool_result", b)
	case ThinkingBlock:
		return tag("thinking", b)
	default:
		return nil, fmt.Errorf("unsupported content block %T", block)
	}
}

// ToolDefinition declares one callable tool. Type distinguishes vendor
// built-in tool kinds; plain function tools leave it empty.
type ToolDefinition struct {
	Type        string `json:"type,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"input_schema"`
}

package types

// Stream event names, also used as the SSE "event:" field.
const (
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
	EventError             = "error"
)

// StreamEvent is the closed union of events a streamed message session
// emits. Every variant is constructed through the New* helpers below so the
// wire field sets stay exact.
type StreamEvent interface {
	// EventType returns the event name carried in the body's "type" field.
	EventType() string
}

// MessageStartEvent opens a streamed message session.
type MessageStartEvent struct {
	Type    string       `json:"type"`
	Message MessageStart `json:"message"`
}

// MessageStart is the skeleton message announced by message_start. Usage is
// always zero at this point; real counts arrive with message_delta.
type MessageStart struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Role  string `json:"role"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// NewMessageStartEvent builds the session-opening event.
func NewMessageStartEvent(id, model string) *MessageStartEvent {
	return &MessageStartEvent{
		Type: EventMessageStart,
		Message: MessageStart{
			ID:    id,
			Type:  "message",
			Role:  "assistant",
			Model: model,
		},
	}
}

func (e *MessageStartEvent) EventType() string { return e.Type }

// ContentBlockStartEvent opens the content block at Index.
type ContentBlockStartEvent struct {
	Type         string       `json:"type"`
	Index        int          `json:"index"`
	ContentBlock StartedBlock `json:"content_block"`
}

// StartedBlock is the block header announced by content_block_start. Text
// and Thinking start empty by definition; ID and Name are present only for
// tool_use blocks (and then always, even when empty).
type StartedBlock struct {
	Type     string  `json:"type"`
	Text     *string `json:"text,omitempty"`
	Thinking *string `json:"thinking,omitempty"`
	ID       *string `json:"id,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// NewTextBlockStartEvent opens an empty text block.
func NewTextBlockStartEvent(index int) *ContentBlockStartEvent {
	empty := ""
	return &ContentBlockStartEvent{
		Type:         EventContentBlockStart,
		Index:        index,
		ContentBlock: StartedBlock{Type: "text", Text: &empty},
	}
}

// NewThinkingBlockStartEvent opens an empty thinking block.
func NewThinkingBlockStartEvent(index int) *ContentBlockStartEvent {
	empty := ""
	return &ContentBlockStartEvent{
		Type:         EventContentBlockStart,
		Index:        index,
		ContentBlock: StartedBlock{Type: "thinking", Thinking: &empty},
	}
}

// NewToolUseBlockStartEvent opens a tool_use block for the given call.
func NewToolUseBlockStartEvent(index int, id, name string) *ContentBlockStartEvent {
	return &ContentBlockStartEvent{
		Type:         EventContentBlockStart,
		Index:        index,
		ContentBlock: StartedBlock{Type: "tool_use", ID: &id, Name: &name},
	}
}

func (e *ContentBlockStartEvent) EventType() string { return e.Type }

// ContentBlockDeltaEvent appends a fragment to the open block at Index.
type ContentBlockDeltaEvent struct {
	Type  string     `json:"type"`
	Index int        `json:"index"`
	Delta BlockDelta `json:"delta"`
}

// BlockDelta is the fragment payload; the populated field matches Type.
type BlockDelta struct {
	Type        string  `json:"type"`
	Text        *string `json:"text,omitempty"`
	Thinking    *string `json:"thinking,omitempty"`
	PartialJSON *string `json:"partial_json,omitempty"`
}

// NewTextDeltaEvent appends text to the open text block.
func NewTextDeltaEvent(index int, text string) *ContentBlockDeltaEvent {
	return &ContentBlockDeltaEvent{
		Type:  EventContentBlockDelta,
		Index: index,
		Delta: BlockDelta{Type: "text_delta", Text: &text},
	}
}

// NewThinkingDeltaEvent appends reasoning text to the open thinking block.
func NewThinkingDeltaEvent(index int, thinking string) *ContentBlockDeltaEvent {
	return &ContentBlockDeltaEvent{
		Type:  EventContentBlockDelta,
		Index: index,
		Delta: BlockDelta{Type: "thinking_delta", Thinking: &thinking},
	}
}

// NewInputJSONDeltaEvent appends a raw argument fragment to the open
// tool_use block.
func NewInputJSONDeltaEvent(index int, partialJSON string) *ContentBlockDeltaEvent {
	return &ContentBlockDeltaEvent{
		Type:  EventContentBlockDelta,
		Index: index,
		Delta: BlockDelta{Type: "input_json_delta", PartialJSON: &partialJSON},
	}
}

func (e *ContentBlockDeltaEvent) EventType() string { return e.Type }

// ContentBlockStopEvent closes the content block at Index.
type ContentBlockStopEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// NewContentBlockStopEvent closes the block at index.
func NewContentBlockStopEvent(index int) *ContentBlockStopEvent {
	return &ContentBlockStopEvent{Type: EventContentBlockStop, Index: index}
}

func (e *ContentBlockStopEvent) EventType() string { return e.Type }

// MessageDeltaEvent carries the terminal stop reason and, when the upstream
// reported it, the output token count.
type MessageDeltaEvent struct {
	Type  string       `json:"type"`
	Delta MessageDelta `json:"delta"`
	Usage *DeltaUsage  `json:"usage,omitempty"`
}

// MessageDelta is the top-level delta of a message_delta event. StopSequence
// is always serialized (as null) to match the documented shape.
type MessageDelta struct {
	StopReason   *string `json:"stop_reason"`
	StopSequence *string `json:"stop_sequence"`
}

// NewMessageDeltaEvent builds the terminal delta. usage may be nil.
func NewMessageDeltaEvent(stopReason *string, usage *DeltaUsage) *MessageDeltaEvent {
	return &MessageDeltaEvent{
		Type:  EventMessageDelta,
		Delta: MessageDelta{StopReason: stopReason},
		Usage: usage,
	}
}

func (e *MessageDeltaEvent) EventType() string { return e.Type }

// MessageStopEvent ends a streamed message session.
type MessageStopEvent struct {
	Type string `json:"type"`
}

// NewMessageStopEvent builds the session-closing event.
func NewMessageStopEvent() *MessageStopEvent {
	return &MessageStopEvent{Type: EventMessageStop}
}

func (e *MessageStopEvent) EventType() string { return e.Type }

// ErrorEvent reports a mid-stream failure. A session ending on ErrorEvent is
// incomplete: open blocks are not closed and no message_stop follows.
type ErrorEvent struct {
	Type  string      `json:"type"`
	Error ErrorDetail `json:"error"`
}

// NewStreamErrorEvent builds the stream_error event for a transport failure.
func NewStreamErrorEvent(message string) *ErrorEvent {
	return &ErrorEvent{
		Type:  EventError,
		Error: ErrorDetail{Type: "stream_error", Message: message},
	}
}

func (e *ErrorEvent) EventType() string { return e.Type }

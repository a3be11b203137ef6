package openaichat

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter"
	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

const (
	// Bounds for a single SSE line; large tool argument fragments can push
	// lines well past bufio's default.
	scanBufferInitial = 64 * 1024
	scanBufferMax     = 1024 * 1024
)

// streamDone is the literal sentinel payload marking logical end of stream.
const streamDone = "[DONE]"

// blockType names the kind of content block currently open.
type blockType int

const (
	blockNone blockType = iota
	blockThinking
	blockText
	blockToolUse
)

// streamState folds upstream completion chunks into the ordered Messages
// event stream. All state is local to one streaming session.
//
// Invariants: exactly one content block is open at a time, block indices
// are dense starting at 0 and never reused, and message_start is emitted
// exactly once before any content event.
type streamState struct {
	messageID        string
	model            string
	modelSet         bool
	contentIndex     int
	openBlock        blockType
	toolCallID       string
	toolCallArgs     strings.Builder
	messageStartSent bool
}

// capture records message identity from a parsed chunk: the model from the
// first chunk, the message id from the first chunk carrying one.
func (s *streamState) capture(chunk StreamChunk) {
	if !s.modelSet {
		s.model = chunk.Model
		s.modelSet = true
	}
	if s.messageID == "" && chunk.ID != "" {
		s.messageID = chunk.ID
	}
}

// closeBlock emits content_block_stop for the open block, if any, and
// advances the index so the next block starts fresh.
func (s *streamState) closeBlock(yield func(types.StreamEvent, error) bool) bool {
	if s.openBlock == blockNone {
		return true
	}
	if !yield(types.NewContentBlockStopEvent(s.contentIndex), nil) {
		return false
	}
	s.contentIndex++
	s.openBlock = blockNone
	return true
}

// apply folds one parsed chunk into the session, yielding the events it
// produces in protocol order. Returns false once the consumer stops
// iterating.
func (s *streamState) apply(chunk StreamChunk, yield func(types.StreamEvent, error) bool) bool {
	s.capture(chunk)

	if len(chunk.Choices) == 0 {
		return true
	}
	choice := chunk.Choices[0]

	if !s.messageStartSent {
		if !yield(types.NewMessageStartEvent(s.messageID, s.model), nil) {
			return false
		}
		s.messageStartSent = true
	}

	if reasoning := choice.Delta.reasoningFragment(); reasoning != nil {
		if s.openBlock != blockThinking {
			if !s.closeBlock(yield) {
				return false
			}
			if !yield(types.NewThinkingBlockStartEvent(s.contentIndex), nil) {
				return false
			}
			s.openBlock = blockThinking
		}
		if !yield(types.NewThinkingDeltaEvent(s.contentIndex, *reasoning), nil) {
			return false
		}
	}

	if choice.Delta.Content != nil && *choice.Delta.Content != "" {
		if s.openBlock != blockText {
			if !s.closeBlock(yield) {
				return false
			}
			if !yield(types.NewTextBlockStartEvent(s.contentIndex), nil) {
				return false
			}
			s.openBlock = blockText
		}
		if !yield(types.NewTextDeltaEvent(s.contentIndex, *choice.Delta.Content), nil) {
			return false
		}
	}

	for _, call := range choice.Delta.ToolCalls {
		// An id marks the start of a new tool call: the previous block ends
		// and the argument buffer starts over.
		if call.ID != nil {
			if !s.closeBlock(yield) {
				return false
			}
			s.toolCallID = *call.ID
			s.toolCallArgs.Reset()
		}

		if call.Function == nil {
			continue
		}

		if call.Function.Name != nil {
			if !yield(types.NewToolUseBlockStartEvent(s.contentIndex, s.toolCallID, *call.Function.Name), nil) {
				return false
			}
			s.openBlock = blockToolUse
		}

		if call.Function.Arguments != nil {
			s.toolCallArgs.WriteString(*call.Function.Arguments)
			if !yield(types.NewInputJSONDeltaEvent(s.contentIndex, *call.Function.Arguments), nil) {
				return false
			}
		}
	}

	if choice.FinishReason != nil {
		// The stream is ending; close without advancing the index.
		if s.openBlock != blockNone {
			if !yield(types.NewContentBlockStopEvent(s.contentIndex), nil) {
				return false
			}
			s.openBlock = blockNone
		}
		if !yield(types.NewMessageDeltaEvent(toStopReason(choice.FinishReason), toDeltaUsage(chunk.Usage)), nil) {
			return false
		}
	}

	return true
}

// reassemble converts the upstream SSE byte stream into the structured
// Messages event sequence. The body is closed when iteration finishes for
// any reason.
//
// Frames may arrive split across arbitrary read boundaries; only complete
// lines are acted on. A payload that fails to parse is skipped without
// touching state, so a single malformed frame cannot abort an otherwise
// good stream. A transport read failure surfaces through the iterator's
// error slot and ends the stream; a stream ending that way is incomplete
// and no closing events follow.
func reassemble(ctx context.Context, body io.ReadCloser) iter.Seq2[types.StreamEvent, error] {
	return func(yield func(types.StreamEvent, error) bool) {
		defer body.Close()

		state := &streamState{}
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, scanBufferInitial), scanBufferMax)

		for scanner.Scan() {
			payload, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}

			if strings.TrimSpace(payload) == streamDone {
				yield(types.NewMessageStopEvent(), nil)
				return
			}

			var chunk StreamChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				slog.DebugContext(ctx, "skipping malformed stream chunk", "error", err)
				continue
			}

			if !state.apply(chunk, yield) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			slog.ErrorContext(ctx, "upstream stream read failed", "error", err)
			yield(nil, &anthropicadapter.TransportError{Op: "read upstream stream", Err: err})
		}
	}
}

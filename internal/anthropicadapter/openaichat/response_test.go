package openaichat

import (
	"errors"
	"testing"

	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter"
)

func TestToMessagesResponseText(t *testing.T) {
	resp := Response{
		ID:    "chatcmpl-123",
		Model: "gpt-4o",
		Choices: []Choice{{
			Message:      ResponseMessage{Role: "assistant", Content: ptr("Hello there")},
			FinishReason: ptr("stop"),
		}},
		Usage: Usage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14},
	}

	out, err := toMessagesResponse(resp)
	if err != nil {
		t.Fatalf("toMessagesResponse: %v", err)
	}

	if out.ID != "chatcmpl-123" || out.Model != "gpt-4o" {
		t.Errorf("id/model = %q/%q, want passed through", out.ID, out.Model)
	}
	if out.Type != "message" || out.Role != "assistant" {
		t.Errorf("type/role = %q/%q", out.Type, out.Role)
	}
	if len(out.Content) != 1 || out.Content[0].Type != "text" || out.Content[0].Text != "Hello there" {
		t.Errorf("content = %+v, want single text block", out.Content)
	}
	if out.StopReason == nil || *out.StopReason != "end_turn" {
		t.Errorf("stop_reason = %v, want end_turn", out.StopReason)
	}
	if out.StopSequence != nil {
		t.Errorf("stop_sequence = %v, want null", out.StopSequence)
	}
	if out.Usage.InputTokens != 10 || out.Usage.OutputTokens != 4 {
		t.Errorf("usage = %+v, want renamed token counts", out.Usage)
	}
}

func TestToMessagesResponseEmptyTextSkipped(t *testing.T) {
	resp := Response{
		ID:    "x",
		Model: "m",
		Choices: []Choice{{
			Message:      ResponseMessage{Role: "assistant", Content: ptr("")},
			FinishReason: ptr("stop"),
		}},
	}

	out, err := toMessagesResponse(resp)
	if err != nil {
		t.Fatalf("toMessagesResponse: %v", err)
	}
	if len(out.Content) != 0 {
		t.Errorf("content = %+v, want no block for empty text", out.Content)
	}
}

func TestToMessagesResponseToolCalls(t *testing.T) {
	resp := Response{
		ID:    "x",
		Model: "m",
		Choices: []Choice{{
			Message: ResponseMessage{
				Role:    "assistant",
				Content: nil,
				ToolCalls: []ToolCall{
					{ID: "call_1", Type: "function", Function: FunctionCall{Name: "get_weather", Arguments: `{"city":"Oslo"}`}},
					{ID: "call_2", Type: "function", Function: FunctionCall{Name: "get_time", Arguments: `definitely not json`}},
				},
			},
			FinishReason: ptr("tool_calls"),
		}},
	}

	out, err := toMessagesResponse(resp)
	if err != nil {
		t.Fatalf("toMessagesResponse: %v", err)
	}

	if len(out.Content) != 2 {
		t.Fatalf("got %d blocks, want 2 tool_use blocks", len(out.Content))
	}

	first := out.Content[0]
	if first.Type != "tool_use" || first.ID != "call_1" || first.Name != "get_weather" {
		t.Errorf("first block = %+v", first)
	}
	if string(first.Input) != `{"city":"Oslo"}` {
		t.Errorf("input = %s", first.Input)
	}

	// Unparseable arguments degrade to an empty object instead of failing
	// the whole response.
	second := out.Content[1]
	if string(second.Input) != "{}" {
		t.Errorf("degraded input = %s, want {}", second.Input)
	}

	if out.StopReason == nil || *out.StopReason != "tool_use" {
		t.Errorf("stop_reason = %v, want tool_use", out.StopReason)
	}
}

func TestToMessagesResponseGeneratesMissingToolID(t *testing.T) {
	resp := Response{
		ID:    "x",
		Model: "m",
		Choices: []Choice{{
			Message: ResponseMessage{
				Role:      "assistant",
				ToolCalls: []ToolCall{{Function: FunctionCall{Name: "f", Arguments: "{}"}}},
			},
		}},
	}

	out, err := toMessagesResponse(resp)
	if err != nil {
		t.Fatalf("toMessagesResponse: %v", err)
	}
	id := out.Content[0].ID
	if len(id) != len("toolu_")+8 || id[:6] != "toolu_" {
		t.Errorf("generated id = %q, want toolu_ prefix with 8-char suffix", id)
	}
}

func TestToMessagesResponseNoChoices(t *testing.T) {
	_, err := toMessagesResponse(Response{ID: "x", Model: "m"})

	var transformErr *anthropicadapter.TransformError
	if !errors.As(err, &transformErr) {
		t.Fatalf("err = %v, want TransformError", err)
	}
}

func TestToMessagesResponseAbsentFinishReason(t *testing.T) {
	resp := Response{
		ID:    "x",
		Model: "m",
		Choices: []Choice{{
			Message: ResponseMessage{Role: "assistant", Content: ptr("partial")},
		}},
	}

	out, err := toMessagesResponse(resp)
	if err != nil {
		t.Fatalf("toMessagesResponse: %v", err)
	}
	if out.StopReason != nil {
		t.Errorf("stop_reason = %v, want absent", out.StopReason)
	}
}

func TestToStopReason(t *testing.T) {
	tests := []struct {
		in   *string
		want *string
	}{
		{ptr("tool_calls"), ptr("tool_use")},
		{ptr("stop"), ptr("end_turn")},
		{ptr("length"), ptr("max_tokens")},
		{ptr("content_filter"), ptr("end_turn")},
		{nil, nil},
	}

	for _, tt := range tests {
		got := toStopReason(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("toStopReason(%v) = %q, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("toStopReason(%q) = %v, want %q", *tt.in, got, *tt.want)
		}
	}
}

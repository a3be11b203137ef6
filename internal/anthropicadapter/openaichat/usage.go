package openaichat

import (
	"github.com/m0n0x41d/anthropic-proxy/internal/anthropicadapter/types"
)

// toUsage renames the upstream token accounting fields to the Messages
// naming (prompt→input, completion→output). No aggregation is needed for a
// complete response.
func toUsage(usage Usage) types.Usage {
	return types.Usage{
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
	}
}

// toDeltaUsage extracts the completion token count carried by a terminal
// stream chunk. Returns nil when the chunk carried no usage at all.
func toDeltaUsage(usage *Usage) *types.DeltaUsage {
	if usage == nil {
		return nil
	}
	return &types.DeltaUsage{OutputTokens: usage.CompletionTokens}
}

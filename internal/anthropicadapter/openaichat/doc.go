// Package openaichat adapts Anthropic Messages API requests to any
// OpenAI-compatible chat completions endpoint, enabling Anthropic SDK
// clients to work with OpenAI-style providers without code changes.
//
// The adapter handles:
//
//   - Message transformation: Anthropic's system field becomes leading
//     system messages, tool_result blocks are split out into standalone
//     tool-role messages, and the remaining blocks of a message are
//     aggregated into one chat message (content parts and tool calls).
//
//   - Tool calling: tool_use blocks map to tool_calls with JSON-encoded
//     argument strings, and tool input schemas are sanitized for schema
//     features OpenAI-compatible providers reject.
//
//   - Model routing: requests with extended thinking enabled can be routed
//     to a dedicated reasoning model, all others to a completion model.
//
//   - Streaming: reassembles the upstream's flat content/tool-call deltas
//     into Anthropic's structured event stream (message_start, indexed
//     content blocks, message_delta, message_stop) with single-pass state
//     tracking and no buffering of the full stream.
//
// # Adapters
//
// CreateMessageAdapter: Anthropic CreateMessage → OpenAI chat completions
package openaichat

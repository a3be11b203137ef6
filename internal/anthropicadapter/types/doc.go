// Package types provides Anthropic Messages API types for server-side
// request/response handling.
//
// These types are hand-modeled rather than taken from the anthropic-sdk-go
// SDK:
//
//  1. SERVER-SIDE vs CLIENT-SIDE: The SDK is designed for making outbound
//     API calls TO Anthropic. This proxy receives inbound requests FROM
//     clients and answers in Anthropic's wire shape. The SDK's param types
//     are marshal-oriented and its response types carry far more optional
//     fields than this proxy ever emits.
//
//  2. EXACT EMISSION: The streaming event bodies this proxy produces must
//     have a fixed, minimal field set so that any Messages-API client can
//     consume them. SDK response structs serialize fields the proxy must
//     not send.
//
//  3. CLOSED SUMS: Content blocks and stream events are closed tagged
//     unions here, one Go type per documented shape. An unrecognized
//     inbound block type is a decode error, not a silently dropped field,
//     and event construction is compile-time checked.
//
// The one deliberate exception to closedness is MessagesRequest.Extra,
// which captures unknown top-level request fields (such as the "thinking"
// configuration) as raw JSON: that part of the request schema is owned by
// the upstream vendor and intentionally open-ended.
package types

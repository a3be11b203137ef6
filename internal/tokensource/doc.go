// Package tokensource provides bearer credential plumbing for the upstream
// OpenAI-compatible API.
//
// Upstream providers authenticate with a long-lived API key rather than a
// refresh-token flow, so the package wraps the key in an oauth2.TokenSource
// and injects it through oauth2.Transport. Keeping the oauth2 shapes here
// means the outbound client never handles credentials itself and a
// refreshing source can be dropped in later without touching the transport
// chain.
//
// # Usage
//
//	source := tokensource.New(apiKey) // nil when apiKey is empty
//	transport := tokensource.NewTransport(source, baseTransport)
//	// transport now adds "Authorization: Bearer <apiKey>" to every request
package tokensource

package tokensource

import (
	"net/http"

	"golang.org/x/oauth2"
)

// New wraps an upstream API key in a TokenSource. An empty key returns nil,
// meaning upstream calls go out unauthenticated.
func New(key string) oauth2.TokenSource {
	if key == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: key,
		TokenType:   "Bearer",
	})
}

// NewTransport wraps base so every request carries the source's token as an
// Authorization header. A nil source returns base unchanged; a nil base
// falls back to http.DefaultTransport inside oauth2.Transport.
func NewTransport(source oauth2.TokenSource, base http.RoundTripper) http.RoundTripper {
	if source == nil {
		return base
	}
	return &oauth2.Transport{
		Source: source,
		Base:   base,
	}
}

package upstream

import (
	"context"
	"net/http"
)

// forwardedHeaders are copied from the browser request to upstream calls so
// the API sees the user's own session.
var forwardedHeaders = []string{"Cookie", "Authorization"}

type sessionKey struct{}

// WithSession returns a context carrying the session headers of in.
func WithSession(ctx context.Context, in http.Header) context.Context {
	h := http.Header{}
	for _, k := range forwardedHeaders {
		for _, v := range in.Values(k) {
			h.Add(k, v)
		}
	}
	return context.WithValue(ctx, sessionKey{}, h)
}

// SessionHeader returns the headers stored by WithSession (never nil).
func SessionHeader(ctx context.Context) http.Header {
	if h, ok := ctx.Value(sessionKey{}).(http.Header); ok {
		return h.Clone()
	}
	return http.Header{}
}

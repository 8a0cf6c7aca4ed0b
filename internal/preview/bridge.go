// Package preview adapts the framework's own development request handler to
// a plain middleware signature for local serving. No decision logic lives
// here.
package preview

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// Bridge wraps a framework dev-server handler. Requests route through the
// handler; with no handler configured they fall through to the
// continuation.
type Bridge struct {
	handler http.Handler
}

// New wraps an existing handler. A nil handler makes every request fall
// through.
func New(handler http.Handler) *Bridge {
	return &Bridge{handler: handler}
}

// NewProxy bridges to a dev server reachable over HTTP.
func NewProxy(devServerURL string) (*Bridge, error) {
	u, err := url.Parse(devServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid dev server URL %q: %w", devServerURL, err)
	}
	return &Bridge{handler: httputil.NewSingleHostReverseProxy(u)}, nil
}

// Handle routes the request through the framework handler, or invokes next
// when the bridge has nothing to route to.
func (b *Bridge) Handle(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if b.handler == nil {
		if next != nil {
			next(w, r)
		}
		return
	}
	b.handler.ServeHTTP(w, r)
}

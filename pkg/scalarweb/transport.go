package scalarweb

import (
	"context"
	"net/http"
	"net/url"
)

// Transport delivers request envelopes to a single service endpoint.
//
// Credential state lives on the transport. An authorization header set via
// SetAuthHeader is attached to every request. A device cookie set via
// SetAuthCookie is only attached while auto-auth is enabled; disabling
// auto-auth lets callers observe the device's raw unauthenticated behavior
// without discarding the stored cookie.
type Transport interface {
	// Execute sends a request and returns the device's result. A non-2xx
	// HTTP exchange is not an error; only transport-level failures are.
	Execute(ctx context.Context, req *Request) (*Result, error)

	// ExecuteWithBasicAuth sends a request with HTTP basic credentials
	// attached. Registration with a PIN authenticates this way.
	ExecuteWithBasicAuth(ctx context.Context, req *Request, username, password string) (*Result, error)

	// SetAutoAuth enables or disables automatic cookie attachment.
	SetAutoAuth(enabled bool)

	// SetAuthHeader sets a header attached to every request. An empty
	// value removes the header.
	SetAuthHeader(name, value string)

	// SetAuthCookie stores a device cookie and enables auto-auth.
	SetAuthCookie(cookie *http.Cookie)

	// Close releases the transport's resources.
	Close() error
}

// TransportFactory creates a Transport for one service endpoint. The cookie
// jar is shared between all transports of a device so that a cookie earned
// on one service authorizes the others.
type TransportFactory func(serviceURL *url.URL, jar http.CookieJar) (Transport, error)

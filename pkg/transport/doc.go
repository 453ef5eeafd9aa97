// Package transport implements the scalarweb.Transport interface over HTTP
// and WebSocket.
//
// Each transport serves one service endpoint. Credential state lives on the
// transport:
//   - an authorization header (e.g. X-Auth-PSK) attached to every request,
//   - a device cookie, attached only while auto-auth is enabled,
//   - one-shot HTTP basic credentials for PIN registration.
//
// All transports of a device share a cookie jar, so a cookie earned on the
// access control service authorizes the other services.
//
// # HTTP
//
// HTTP is the default transport: one POST per method call. Set-Cookie
// response headers are always captured into the jar; whether stored cookies
// are sent depends on auto-auth.
//
// # WebSocket
//
// WebSocket keeps one connection per service and correlates results to
// requests by envelope id. Credentials are carried by the dial handshake,
// so credential changes force a re-dial of an open connection.
//
// # Capture
//
// Both transports emit protocol capture events (pkg/log): the HTTP exchange
// at the transport layer, the decoded method call at the protocol layer,
// and errors. Each transport tags events with a generated connection ID.
package transport

package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/scalarweb/scalarweb-go/pkg/log"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// Transport errors.
var (
	ErrTransportClosed = errors.New("transport is closed")
	ErrRequestTimeout  = errors.New("request timed out")
	ErrConnectionLost  = errors.New("connection lost")
)

// DefaultTimeout is the per-request timeout applied when the caller's
// context carries no deadline.
const DefaultTimeout = 30 * time.Second

// DefaultMaxResponseSize bounds how much of a response body is read (1 MiB).
const DefaultMaxResponseSize = 1 << 20

// Config configures transports created by the factories.
type Config struct {
	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxResponseSize bounds response bodies (default: 1 MiB).
	MaxResponseSize int64

	// Logger receives operational log output. Defaults to slog.Default().
	Logger *slog.Logger

	// Capture receives protocol capture events. Defaults to discarding.
	Capture log.Logger

	// DeviceID tags capture events with a device identifier.
	DeviceID string
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseSize == 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Capture == nil {
		c.Capture = log.NoopLogger{}
	}
	return c
}

// HTTPFactory returns a factory producing HTTP transports.
func HTTPFactory(config Config) scalarweb.TransportFactory {
	return func(serviceURL *url.URL, jar http.CookieJar) (scalarweb.Transport, error) {
		return NewHTTP(serviceURL, jar, config), nil
	}
}

// WebSocketFactory returns a factory producing WebSocket transports.
func WebSocketFactory(config Config) scalarweb.TransportFactory {
	return func(serviceURL *url.URL, jar http.CookieJar) (scalarweb.Transport, error) {
		return NewWebSocket(serviceURL, jar, config)
	}
}

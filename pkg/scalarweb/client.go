package scalarweb

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// DefaultServices are the services a client constructs when the
// configuration does not name any.
var DefaultServices = []string{
	ServiceGuide,
	ServiceSystem,
	ServiceAccessControl,
	ServiceAVContent,
}

// ClientConfig configures a scalar web client.
type ClientConfig struct {
	// BaseURL is the device's API root, e.g. "http://192.168.1.45/sony".
	// Service endpoints live directly beneath it.
	BaseURL string

	// Services are the service names to construct. Defaults to
	// DefaultServices.
	Services []string

	// Factory creates the transport for each service endpoint.
	Factory TransportFactory

	// Logger receives operational log output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client holds the services of one device connection attempt. All service
// transports share a cookie jar, so a cookie earned during registration on
// the access control service authorizes every service.
type Client struct {
	config  ClientConfig
	baseURL *url.URL
	jar     http.CookieJar
	logger  *slog.Logger

	mu       sync.RWMutex
	services map[string]*Service
	order    []string
}

// NewClient creates a new client. Connect must be called before services
// are available.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if config.Factory == nil {
		return nil, fmt.Errorf("transport Factory is required")
	}
	if len(config.Services) == 0 {
		config.Services = DefaultServices
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: unsupported scheme", config.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		config:   config,
		baseURL:  baseURL,
		jar:      jar,
		logger:   config.Logger,
		services: make(map[string]*Service),
	}, nil
}

// Connect builds one service per configured service name and discovers the
// methods each advertises. Method discovery is best-effort: a service that
// fails discovery still exists, it just advertises no methods.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.services) > 0 {
		return fmt.Errorf("client already connected")
	}

	for _, name := range c.config.Services {
		serviceURL := c.baseURL.JoinPath(name)

		transport, err := c.config.Factory(serviceURL, c.jar)
		if err != nil {
			c.closeLocked()
			return fmt.Errorf("failed to create transport for %s: %w", name, err)
		}

		service := NewService(name, transport)
		service.SetLogger(c.logger)
		c.services[name] = service
		c.order = append(c.order, name)
	}

	for _, name := range c.order {
		service := c.services[name]
		if err := service.DiscoverMethods(ctx); err != nil {
			c.logger.Debug("method discovery failed",
				"service", name,
				"error", err)
		}
	}

	return nil
}

// Service returns the named service, or nil if the client does not have it.
func (c *Client) Service(name string) *Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.services[name]
}

// Services returns all services in configuration order.
func (c *Client) Services() []*Service {
	c.mu.RLock()
	defer c.mu.RUnlock()

	services := make([]*Service, 0, len(c.order))
	for _, name := range c.order {
		services = append(services, c.services[name])
	}
	return services
}

// SetAutoAuth enables or disables cookie attachment on every transport.
func (c *Client) SetAutoAuth(enabled bool) {
	for _, service := range c.Services() {
		service.Transport().SetAutoAuth(enabled)
	}
}

// SetAuthHeader sets an authorization header on every transport.
func (c *Client) SetAuthHeader(name, value string) {
	for _, service := range c.Services() {
		service.Transport().SetAuthHeader(name, value)
	}
}

// SetAuthCookie stores a device cookie on every transport and enables
// auto-auth.
func (c *Client) SetAuthCookie(cookie *http.Cookie) {
	for _, service := range c.Services() {
		service.Transport().SetAuthCookie(cookie)
	}
}

// BaseURL returns the device's API root.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// Close closes every service transport, returning the first error.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	var firstErr error
	for _, name := range c.order {
		if err := c.services[name].Transport().Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.services = make(map[string]*Service)
	c.order = nil
	return firstErr
}

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scalarweb/scalarweb-go/pkg/log"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// HTTP delivers request envelopes to a service endpoint with one POST per
// call. It is safe for concurrent use.
type HTTP struct {
	serviceURL *url.URL
	service    string
	jar        http.CookieJar
	client     *http.Client
	config     Config
	connID     string

	mu       sync.RWMutex
	autoAuth bool
	headers  http.Header
	closed   bool
}

// NewHTTP creates an HTTP transport for one service endpoint. The jar is
// shared between the transports of a device; cookies received from the
// device always land in it, but are only sent while auto-auth is enabled.
func NewHTTP(serviceURL *url.URL, jar http.CookieJar, config Config) *HTTP {
	return &HTTP{
		serviceURL: serviceURL,
		service:    path.Base(serviceURL.Path),
		jar:        jar,
		client:     &http.Client{},
		config:     config.withDefaults(),
		connID:     uuid.New().String(),
		autoAuth:   true,
		headers:    make(http.Header),
	}
}

// ConnectionID returns the capture connection ID of this transport.
func (t *HTTP) ConnectionID() string {
	return t.connID
}

// Execute sends a request and returns the device's result.
func (t *HTTP) Execute(ctx context.Context, req *scalarweb.Request) (*scalarweb.Result, error) {
	return t.execute(ctx, req, nil)
}

// ExecuteWithBasicAuth sends a request with HTTP basic credentials attached.
func (t *HTTP) ExecuteWithBasicAuth(ctx context.Context, req *scalarweb.Request, username, password string) (*scalarweb.Result, error) {
	return t.execute(ctx, req, func(httpReq *http.Request) {
		httpReq.SetBasicAuth(username, password)
	})
}

// execute performs the HTTP exchange. mutate, when non-nil, adjusts the
// outgoing request after common headers are set.
func (t *HTTP) execute(ctx context.Context, req *scalarweb.Request, mutate func(*http.Request)) (*scalarweb.Result, error) {
	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return nil, ErrTransportClosed
	}
	autoAuth := t.autoAuth
	headers := t.headers.Clone()
	t.mu.RUnlock()

	// Apply the default timeout when the caller brought no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	body, err := req.Encode()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.serviceURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for name, values := range headers {
		for _, value := range values {
			httpReq.Header.Set(name, value)
		}
	}
	if autoAuth {
		for _, cookie := range t.jar.Cookies(t.serviceURL) {
			httpReq.AddCookie(cookie)
		}
	}
	if mutate != nil {
		mutate(httpReq)
	}

	t.logRequest(req, len(body))
	start := time.Now()

	httpRes, err := t.client.Do(httpReq)
	if err != nil {
		t.logError(err, req.Method)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpRes.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(httpRes.Body, t.config.MaxResponseSize))
	if err != nil {
		t.logError(err, req.Method)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Cookies issued by the device are always captured; auto-auth only
	// controls whether they are sent back.
	if cookies := httpRes.Cookies(); len(cookies) > 0 {
		t.jar.SetCookies(t.serviceURL, cookies)
	}

	res, err := scalarweb.ParseResult(httpRes.StatusCode, resBody)
	if err != nil {
		if httpRes.StatusCode != http.StatusOK {
			// Plain HTTP failure body (e.g. an HTML error page).
			res = scalarweb.NewResult(httpRes.StatusCode)
		} else {
			t.logError(err, req.Method)
			return nil, err
		}
	}
	res.ID = req.ID

	t.logResult(req, res, len(resBody), time.Since(start))
	return res, nil
}

// SetAutoAuth enables or disables cookie attachment.
func (t *HTTP) SetAutoAuth(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoAuth = enabled
}

// SetAuthHeader sets a header attached to every request. An empty value
// removes the header.
func (t *HTTP) SetAuthHeader(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if value == "" {
		t.headers.Del(name)
		return
	}
	t.headers.Set(name, value)
}

// SetAuthCookie stores a device cookie and enables auto-auth.
func (t *HTTP) SetAuthCookie(cookie *http.Cookie) {
	t.jar.SetCookies(t.serviceURL, []*http.Cookie{cookie})

	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoAuth = true
}

// Close marks the transport closed. Subsequent Execute calls fail with
// ErrTransportClosed.
func (t *HTTP) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// logRequest emits capture events for an outgoing call.
func (t *HTTP) logRequest(req *scalarweb.Request, bodySize int) {
	now := time.Now()
	t.config.Capture.Log(log.Event{
		Timestamp:    now,
		ConnectionID: t.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   t.serviceURL.Host,
		DeviceID:     t.config.DeviceID,
		HTTP: &log.HTTPEvent{
			Method:      http.MethodPost,
			URL:         t.serviceURL.String(),
			RequestSize: bodySize,
		},
	})
	t.config.Capture.Log(log.Event{
		Timestamp:    now,
		ConnectionID: t.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerProtocol,
		Category:     log.CategoryMessage,
		RemoteAddr:   t.serviceURL.Host,
		DeviceID:     t.config.DeviceID,
		Method: &log.MethodEvent{
			Type:      log.CallTypeRequest,
			RequestID: req.ID,
			Service:   t.service,
			Method:    req.Method,
			Version:   req.Version,
		},
	})
}

// logResult emits capture events for an incoming result.
func (t *HTTP) logResult(req *scalarweb.Request, res *scalarweb.Result, bodySize int, duration time.Duration) {
	now := time.Now()
	t.config.Capture.Log(log.Event{
		Timestamp:    now,
		ConnectionID: t.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   t.serviceURL.Host,
		DeviceID:     t.config.DeviceID,
		HTTP: &log.HTTPEvent{
			Method:       http.MethodPost,
			URL:          t.serviceURL.String(),
			Status:       res.HTTPStatus,
			ResponseSize: bodySize,
		},
	})

	event := &log.MethodEvent{
		Type:       log.CallTypeResult,
		RequestID:  req.ID,
		Service:    t.service,
		Method:     req.Method,
		HTTPStatus: &res.HTTPStatus,
		Duration:   &duration,
	}
	if res.IsError() {
		code := res.Code
		event.ErrorCode = &code
	}
	t.config.Capture.Log(log.Event{
		Timestamp:    now,
		ConnectionID: t.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerProtocol,
		Category:     log.CategoryMessage,
		RemoteAddr:   t.serviceURL.Host,
		DeviceID:     t.config.DeviceID,
		Method:       event,
	})
}

// logError emits a capture event for a transport-level failure.
func (t *HTTP) logError(err error, method string) {
	t.config.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		RemoteAddr:   t.serviceURL.Host,
		DeviceID:     t.config.DeviceID,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: method,
		},
	})
}

// Compile-time interface satisfaction check.
var _ scalarweb.Transport = (*HTTP)(nil)

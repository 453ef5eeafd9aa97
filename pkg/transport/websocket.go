package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/scalarweb/scalarweb-go/pkg/log"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// Connection lifecycle states for capture events.
const (
	stateConnected = "connected"
	stateClosed    = "closed"
)

// WebSocket delivers request envelopes over a persistent WebSocket
// connection, correlating results to requests by envelope id. Devices
// that expose their services over WebSocket accept the same envelopes
// as over HTTP, one JSON document per text frame.
//
// Credentials ride on the upgrade handshake, so changing them drops the
// active connection; the next request re-dials with the new set.
type WebSocket struct {
	serviceURL *url.URL // http form, keys the cookie jar
	wsURL      *url.URL // ws form, used for dialing
	service    string
	jar        http.CookieJar
	config     Config
	connID     string

	mu       sync.Mutex
	conn     *websocket.Conn
	autoAuth bool
	headers  http.Header
	closed   bool

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int]chan *scalarweb.Result
}

// NewWebSocket creates a WebSocket transport for one service endpoint.
// The URL may use an http(s) or ws(s) scheme; it is normalized both
// ways so the jar stays shared with HTTP transports of the same device.
func NewWebSocket(serviceURL *url.URL, jar http.CookieJar, config Config) (*WebSocket, error) {
	wsURL := *serviceURL
	jarURL := *serviceURL
	switch serviceURL.Scheme {
	case "http":
		wsURL.Scheme = "ws"
	case "https":
		wsURL.Scheme = "wss"
	case "ws":
		jarURL.Scheme = "http"
	case "wss":
		jarURL.Scheme = "https"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", serviceURL.Scheme)
	}

	return &WebSocket{
		serviceURL: &jarURL,
		wsURL:      &wsURL,
		service:    path.Base(serviceURL.Path),
		jar:        jar,
		config:     config.withDefaults(),
		connID:     uuid.New().String(),
		autoAuth:   true,
		headers:    make(http.Header),
		pending:    make(map[int]chan *scalarweb.Result),
	}, nil
}

// ConnectionID returns the capture connection ID of this transport.
func (t *WebSocket) ConnectionID() string {
	return t.connID
}

// Execute sends a request over the persistent connection and waits for
// the result frame with the matching id.
func (t *WebSocket) Execute(ctx context.Context, req *scalarweb.Request) (*scalarweb.Result, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	conn, refused, err := t.connLocked()
	t.mu.Unlock()

	if refused != nil {
		refused.ID = req.ID
		return refused, nil
	}
	if err != nil {
		return nil, err
	}

	respCh := make(chan *scalarweb.Result, 1)
	t.pendingMu.Lock()
	t.pending[req.ID] = respCh
	t.pendingMu.Unlock()

	defer func() {
		t.pendingMu.Lock()
		delete(t.pending, req.ID)
		t.pendingMu.Unlock()
	}()

	body, err := req.Encode()
	if err != nil {
		return nil, err
	}

	t.logRequest(req)
	start := time.Now()

	t.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, body)
	t.writeMu.Unlock()
	if err != nil {
		t.logError(err, req.Method)
		return nil, fmt.Errorf("failed to send %s: %w", req.Method, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(t.config.Timeout):
		return nil, ErrRequestTimeout
	case res, ok := <-respCh:
		if !ok {
			return nil, ErrConnectionLost
		}
		t.logResult(req, res, time.Since(start))
		return res, nil
	}
}

// ExecuteWithBasicAuth sends a request with HTTP basic credentials on
// the handshake, over its own short-lived connection so the persistent
// one keeps its credential set.
func (t *WebSocket) ExecuteWithBasicAuth(ctx context.Context, req *scalarweb.Request, username, password string) (*scalarweb.Result, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	header := t.dialHeaderLocked()
	t.mu.Unlock()

	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	header.Set("Authorization", "Basic "+credentials)

	return t.oneShot(ctx, req, header)
}

// connLocked returns the active connection, dialing one if needed. When
// the device refuses the upgrade with an HTTP error the status comes
// back as a result, so callers see 401/403 the same way as over HTTP.
func (t *WebSocket) connLocked() (*websocket.Conn, *scalarweb.Result, error) {
	if t.conn != nil {
		return t.conn, nil, nil
	}

	conn, refused, err := t.dial(t.dialHeaderLocked())
	if refused != nil || err != nil {
		return nil, refused, err
	}

	t.conn = conn
	t.logState("", stateConnected, "")
	go t.readLoop(conn)
	return conn, nil, nil
}

// dialHeaderLocked builds the handshake headers from the configured
// auth headers plus jar cookies when auto-auth is enabled.
func (t *WebSocket) dialHeaderLocked() http.Header {
	header := make(http.Header)
	for name, values := range t.headers {
		for _, value := range values {
			header.Set(name, value)
		}
	}
	if t.autoAuth {
		if cookies := t.jar.Cookies(t.serviceURL); len(cookies) > 0 {
			pairs := make([]string, 0, len(cookies))
			for _, cookie := range cookies {
				pairs = append(pairs, cookie.Name+"="+cookie.Value)
			}
			header.Set("Cookie", strings.Join(pairs, "; "))
		}
	}
	return header
}

// dial opens one WebSocket connection. Cookies issued during the
// handshake are always captured into the jar.
func (t *WebSocket) dial(header http.Header) (*websocket.Conn, *scalarweb.Result, error) {
	now := time.Now()
	t.config.Capture.Log(log.Event{
		Timestamp:    now,
		ConnectionID: t.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   t.wsURL.Host,
		DeviceID:     t.config.DeviceID,
		HTTP: &log.HTTPEvent{
			Method: http.MethodGet,
			URL:    t.wsURL.String(),
		},
	})

	dialer := &websocket.Dialer{HandshakeTimeout: t.config.Timeout}
	conn, hsRes, err := dialer.Dial(t.wsURL.String(), header)

	if hsRes != nil {
		t.config.Capture.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: t.connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerTransport,
			Category:     log.CategoryMessage,
			RemoteAddr:   t.wsURL.Host,
			DeviceID:     t.config.DeviceID,
			HTTP: &log.HTTPEvent{
				Method: http.MethodGet,
				URL:    t.wsURL.String(),
				Status: hsRes.StatusCode,
			},
		})
		if cookies := hsRes.Cookies(); len(cookies) > 0 {
			t.jar.SetCookies(t.serviceURL, cookies)
		}
	}

	if err != nil {
		if hsRes != nil {
			hsRes.Body.Close()
		}
		if errors.Is(err, websocket.ErrBadHandshake) && hsRes != nil {
			return nil, scalarweb.NewResult(hsRes.StatusCode), nil
		}
		t.logError(err, "dial")
		return nil, nil, fmt.Errorf("failed to dial %s: %w", t.wsURL.Host, err)
	}

	conn.SetReadLimit(t.config.MaxResponseSize)
	return conn, nil, nil
}

// oneShot performs a single request over its own connection.
func (t *WebSocket) oneShot(ctx context.Context, req *scalarweb.Request, header http.Header) (*scalarweb.Result, error) {
	conn, refused, err := t.dial(header)
	if refused != nil {
		refused.ID = req.ID
		return refused, nil
	}
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	body, err := req.Encode()
	if err != nil {
		return nil, err
	}

	t.logRequest(req)
	start := time.Now()

	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		t.logError(err, req.Method)
		return nil, fmt.Errorf("failed to send %s: %w", req.Method, err)
	}

	deadline := time.Now().Add(t.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	// Frames with foreign ids can interleave; skip until ours arrives.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.logError(err, req.Method)
			return nil, fmt.Errorf("failed to read %s result: %w", req.Method, err)
		}
		res, perr := scalarweb.ParseResult(http.StatusOK, data)
		if perr != nil || res.ID != req.ID {
			continue
		}
		t.logResult(req, res, time.Since(start))
		return res, nil
	}
}

// readLoop routes incoming result frames to their pending requests.
// It exits when the connection drops, failing whatever is in flight.
func (t *WebSocket) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.dropConn(conn, err)
			return
		}

		res, err := scalarweb.ParseResult(http.StatusOK, data)
		if err != nil {
			t.config.Logger.Debug("discarding undecodable frame",
				"service", t.service, "error", err)
			continue
		}

		t.pendingMu.Lock()
		respCh, ok := t.pending[res.ID]
		if ok {
			delete(t.pending, res.ID)
		}
		t.pendingMu.Unlock()

		if !ok {
			t.config.Logger.Debug("discarding unsolicited result",
				"service", t.service, "id", res.ID)
			continue
		}
		respCh <- res
	}
}

// dropConn detaches a dead connection and fails its pending requests.
func (t *WebSocket) dropConn(conn *websocket.Conn, cause error) {
	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	closed := t.closed
	t.mu.Unlock()

	conn.Close()
	t.failPending()

	if !closed {
		reason := ""
		if cause != nil {
			reason = cause.Error()
		}
		t.logState(stateConnected, stateClosed, reason)
	}
}

// failPending closes all pending channels, waking their waiters.
func (t *WebSocket) failPending() {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	for _, respCh := range t.pending {
		close(respCh)
	}
	t.pending = make(map[int]chan *scalarweb.Result)
}

// resetConn drops the active connection so the next request re-dials
// with the current credential set.
func (t *WebSocket) resetConn() {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// SetAutoAuth enables or disables cookie attachment on the handshake.
func (t *WebSocket) SetAutoAuth(enabled bool) {
	t.mu.Lock()
	changed := t.autoAuth != enabled
	t.autoAuth = enabled
	t.mu.Unlock()

	if changed {
		t.resetConn()
	}
}

// SetAuthHeader sets a header attached to every handshake. An empty
// value removes the header.
func (t *WebSocket) SetAuthHeader(name, value string) {
	t.mu.Lock()
	if value == "" {
		t.headers.Del(name)
	} else {
		t.headers.Set(name, value)
	}
	t.mu.Unlock()

	t.resetConn()
}

// SetAuthCookie stores a device cookie and enables auto-auth.
func (t *WebSocket) SetAuthCookie(cookie *http.Cookie) {
	t.jar.SetCookies(t.serviceURL, []*http.Cookie{cookie})

	t.mu.Lock()
	t.autoAuth = true
	t.mu.Unlock()

	t.resetConn()
}

// Close closes the transport and the active connection.
func (t *WebSocket) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
		t.logState(stateConnected, stateClosed, "transport closed")
	}
	t.failPending()
	return nil
}

// logRequest emits a capture event for an outgoing call.
func (t *WebSocket) logRequest(req *scalarweb.Request) {
	t.config.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerProtocol,
		Category:     log.CategoryMessage,
		RemoteAddr:   t.wsURL.Host,
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

// logResult emits a capture event for an incoming result.
func (t *WebSocket) logResult(req *scalarweb.Request, res *scalarweb.Result, duration time.Duration) {
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
		Timestamp:    time.Now(),
		ConnectionID: t.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerProtocol,
		Category:     log.CategoryMessage,
		RemoteAddr:   t.wsURL.Host,
		DeviceID:     t.config.DeviceID,
		Method:       event,
	})
}

// logState emits a connection lifecycle capture event.
func (t *WebSocket) logState(oldState, newState, reason string) {
	t.config.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerSession,
		Category:     log.CategoryState,
		RemoteAddr:   t.wsURL.Host,
		DeviceID:     t.config.DeviceID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// logError emits a capture event for a transport-level failure.
func (t *WebSocket) logError(err error, method string) {
	t.config.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryError,
		RemoteAddr:   t.wsURL.Host,
		DeviceID:     t.config.DeviceID,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: method,
		},
	})
}

// Compile-time interface satisfaction check.
var _ scalarweb.Transport = (*WebSocket)(nil)

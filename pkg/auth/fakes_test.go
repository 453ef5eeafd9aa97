package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scalarweb/scalarweb-go/pkg/log"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// deviceCall is one method call as the fake device saw it, including the
// credential state the transport carried at call time.
type deviceCall struct {
	Service   string
	Method    string
	Params    []any
	AutoAuth  bool
	PSK       string
	BasicUser string
	BasicPass string
	HasBasic  bool
}

// fakeDevice scripts the answers of a device shared by every transport of
// a fake client.
type fakeDevice struct {
	mu     sync.Mutex
	answer func(call deviceCall) (*scalarweb.Result, error)
	calls  []deviceCall
}

func newFakeDevice(answer func(call deviceCall) (*scalarweb.Result, error)) *fakeDevice {
	return &fakeDevice{answer: answer}
}

func (d *fakeDevice) record(call deviceCall) (*scalarweb.Result, error) {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	answer := d.answer
	d.mu.Unlock()

	if answer == nil {
		return scalarweb.NewResult(http.StatusOK), nil
	}
	return answer(call)
}

// callsTo returns the recorded calls of one method.
func (d *fakeDevice) callsTo(method string) []deviceCall {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []deviceCall
	for _, call := range d.calls {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

// fakeTransport is a scripted scalarweb.Transport. Credential state is
// tracked so scripted answers can depend on it.
type fakeTransport struct {
	service string
	device  *fakeDevice

	mu       sync.Mutex
	autoAuth bool
	headers  map[string]string
	cookie   *http.Cookie
	closed   bool
}

func newFakeTransport(device *fakeDevice) *fakeTransport {
	if device == nil {
		device = newFakeDevice(nil)
	}
	return &fakeTransport{device: device, headers: make(map[string]string)}
}

func (f *fakeTransport) snapshot(req *scalarweb.Request) deviceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return deviceCall{
		Service:  f.service,
		Method:   req.Method,
		Params:   req.Params,
		AutoAuth: f.autoAuth,
		PSK:      f.headers[PSKHeader],
	}
}

func (f *fakeTransport) Execute(_ context.Context, req *scalarweb.Request) (*scalarweb.Result, error) {
	return f.device.record(f.snapshot(req))
}

func (f *fakeTransport) ExecuteWithBasicAuth(_ context.Context, req *scalarweb.Request, username, password string) (*scalarweb.Result, error) {
	call := f.snapshot(req)
	call.BasicUser = username
	call.BasicPass = password
	call.HasBasic = true
	return f.device.record(call)
}

func (f *fakeTransport) SetAutoAuth(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autoAuth = enabled
}

func (f *fakeTransport) SetAuthHeader(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value == "" {
		delete(f.headers, name)
		return
	}
	f.headers[name] = value
}

func (f *fakeTransport) SetAuthCookie(cookie *http.Cookie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cookie = cookie
	f.autoAuth = true
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) header(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers[name]
}

func (f *fakeTransport) autoAuthOn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.autoAuth
}

// fakeClient builds real services over fake transports that share one fake
// device, mirroring the production topology.
type fakeClient struct {
	services   map[string]*scalarweb.Service
	transports map[string]*fakeTransport
	order      []string
}

func newFakeClient(device *fakeDevice, services ...string) *fakeClient {
	c := &fakeClient{
		services:   make(map[string]*scalarweb.Service),
		transports: make(map[string]*fakeTransport),
	}
	for _, name := range services {
		ft := newFakeTransport(device)
		ft.service = name
		c.services[name] = scalarweb.NewService(name, ft)
		c.transports[name] = ft
		c.order = append(c.order, name)
	}
	return c
}

func (c *fakeClient) Service(name string) *scalarweb.Service {
	return c.services[name]
}

func (c *fakeClient) SetAutoAuth(enabled bool) {
	for _, name := range c.order {
		c.transports[name].SetAutoAuth(enabled)
	}
}

func (c *fakeClient) SetAuthHeader(name, value string) {
	for _, tname := range c.order {
		c.transports[tname].SetAuthHeader(name, value)
	}
}

// advertise registers methods on a service's registry so HasMethod passes.
func (c *fakeClient) advertise(service string, methods ...string) {
	for _, m := range methods {
		c.services[service].Registry().Add(m, scalarweb.DefaultVersion)
	}
}

// propertyRecorder collects provisioned properties.
type propertyRecorder struct {
	mu    sync.Mutex
	props map[string]string
	order []string
}

func newPropertyRecorder() *propertyRecorder {
	return &propertyRecorder{props: make(map[string]string)}
}

func (r *propertyRecorder) SetProperty(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props[key] = value
	r.order = append(r.order, key)
}

func (r *propertyRecorder) get(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.props[key]
}

func (r *propertyRecorder) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.props[key]
	return ok
}

// captureRecorder collects protocol capture events.
type captureRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *captureRecorder) Log(event log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *captureRecorder) stateChanges(entity log.StateEntity) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, e := range r.events {
		if e.StateChange != nil && e.StateChange.Entity == entity {
			out = append(out, e.StateChange.NewState)
		}
	}
	return out
}

func (r *captureRecorder) wakes() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.events {
		if e.Wake != nil {
			n++
		}
	}
	return n
}

// jsonResult parses an envelope body into a 200 result.
func jsonResult(t *testing.T, body string) *scalarweb.Result {
	t.Helper()
	res, err := scalarweb.ParseResult(http.StatusOK, []byte(body))
	require.NoError(t, err, "bad scripted result %q", body)
	return res
}

// errorResult builds a 200 result carrying an error tuple.
func errorResult(t *testing.T, code int) *scalarweb.Result {
	t.Helper()
	return jsonResult(t, fmt.Sprintf(`{"id":1,"error":[%d,"scripted"]}`, code))
}

// statusResult builds a bare result with only an HTTP status.
func statusResult(status int) *scalarweb.Result {
	return scalarweb.NewResult(status)
}

var (
	_ scalarweb.Transport = (*fakeTransport)(nil)
	_ Client              = (*fakeClient)(nil)
	_ PropertySink        = (*propertyRecorder)(nil)
	_ log.Logger          = (*captureRecorder)(nil)
)

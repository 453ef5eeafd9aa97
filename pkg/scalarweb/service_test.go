package scalarweb

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
)

// fakeTransport is a scripted Transport for service and client tests.
type fakeTransport struct {
	mu       sync.Mutex
	handler  func(req *Request) (*Result, error)
	requests []*Request
	autoAuth bool
	headers  map[string]string
	cookie   *http.Cookie
	closed   bool
}

func newFakeTransport(handler func(req *Request) (*Result, error)) *fakeTransport {
	return &fakeTransport{
		handler: handler,
		headers: make(map[string]string),
	}
}

func (f *fakeTransport) Execute(_ context.Context, req *Request) (*Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	handler := f.handler
	f.mu.Unlock()

	if handler == nil {
		return NewResult(http.StatusOK), nil
	}
	return handler(req)
}

func (f *fakeTransport) ExecuteWithBasicAuth(ctx context.Context, req *Request, _, _ string) (*Result, error) {
	return f.Execute(ctx, req)
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

func (f *fakeTransport) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeTransport) lastRequest() *Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

// scriptedResult builds a success result from envelope JSON for test handlers.
func scriptedResult(t *testing.T, body string) *Result {
	t.Helper()
	res, err := ParseResult(http.StatusOK, []byte(body))
	if err != nil {
		t.Fatalf("bad scripted result %q: %v", body, err)
	}
	return res
}

func TestService_Execute(t *testing.T) {
	ft := newFakeTransport(func(req *Request) (*Result, error) {
		return scriptedResult(t, `{"id":1,"result":[{"status":"active"}]}`), nil
	})
	s := NewService(ServiceSystem, ft)

	res, err := s.Execute(context.Background(), MethodGetPowerStatus)
	if err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
	if !res.Succeeded() {
		t.Errorf("result = %v, want success", res)
	}

	req := ft.lastRequest()
	if req.Method != MethodGetPowerStatus {
		t.Errorf("method = %q, want %q", req.Method, MethodGetPowerStatus)
	}
	if req.Version != DefaultVersion {
		t.Errorf("version = %q, want default %q for unregistered method", req.Version, DefaultVersion)
	}
	if req.ID == 0 {
		t.Error("request id must never be 0")
	}
}

func TestService_ExecuteUsesRegisteredVersion(t *testing.T) {
	ft := newFakeTransport(nil)
	s := NewService(ServiceSystem, ft)
	s.Registry().Add(MethodGetPowerStatus, "1.1")

	if _, err := s.Execute(context.Background(), MethodGetPowerStatus); err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
	if got := ft.lastRequest().Version; got != "1.1" {
		t.Errorf("version = %q, want registered %q", got, "1.1")
	}
}

func TestService_ExecuteTransportError(t *testing.T) {
	ft := newFakeTransport(func(req *Request) (*Result, error) {
		return nil, fmt.Errorf("connection refused")
	})
	s := NewService(ServiceSystem, ft)

	if _, err := s.Execute(context.Background(), MethodGetPowerStatus); err == nil {
		t.Error("Execute() should propagate transport errors")
	}
}

func TestService_RequestIDsIncrease(t *testing.T) {
	ft := newFakeTransport(nil)
	s := NewService(ServiceSystem, ft)

	var last int
	for i := 0; i < 5; i++ {
		if _, err := s.Execute(context.Background(), MethodGetPowerStatus); err != nil {
			t.Fatal(err)
		}
		id := ft.lastRequest().ID
		if id <= last {
			t.Fatalf("request id %d did not increase past %d", id, last)
		}
		last = id
	}
}

func TestService_DiscoverMethods(t *testing.T) {
	ft := newFakeTransport(func(req *Request) (*Result, error) {
		switch req.Method {
		case MethodGetVersions:
			return scriptedResult(t, `{"id":1,"result":[["1.0","1.1"]]}`), nil
		case MethodGetMethodTypes:
			version, _ := req.Params[0].(string)
			if version == "1.0" {
				return scriptedResult(t, `{"id":2,"results":[["getPowerStatus",[],[],"1.0"],["getSystemInformation",[],[],"1.0"]]}`), nil
			}
			return scriptedResult(t, `{"id":3,"results":[["getPowerStatus",[],[],"1.1"]]}`), nil
		default:
			return scriptedResult(t, `{"id":4,"error":[501,"Not Implemented"]}`), nil
		}
	})
	s := NewService(ServiceSystem, ft)

	if err := s.DiscoverMethods(context.Background()); err != nil {
		t.Fatalf("DiscoverMethods() returned error: %v", err)
	}

	if !s.HasMethod(MethodGetPowerStatus) {
		t.Error("getPowerStatus should be registered")
	}
	if !s.HasMethod(MethodGetSystemInformation) {
		t.Error("getSystemInformation should be registered")
	}
	if s.HasMethod(MethodGetDeviceMode) {
		t.Error("getDeviceMode should not be registered")
	}

	// The 1.1 signature wins for getPowerStatus.
	if v, _ := s.Registry().Version(MethodGetPowerStatus); v != "1.1" {
		t.Errorf("getPowerStatus version = %q, want %q", v, "1.1")
	}
}

func TestService_DiscoverMethodsRejected(t *testing.T) {
	ft := newFakeTransport(func(req *Request) (*Result, error) {
		return scriptedResult(t, `{"id":1,"error":[501,"Not Implemented"]}`), nil
	})
	s := NewService(ServiceSystem, ft)

	if err := s.DiscoverMethods(context.Background()); err == nil {
		t.Error("DiscoverMethods() should report rejection")
	}
	if s.HasMethod(MethodGetPowerStatus) {
		t.Error("no methods should be registered after rejected discovery")
	}
}

func TestService_DiscoverMethodsPartialFailure(t *testing.T) {
	ft := newFakeTransport(func(req *Request) (*Result, error) {
		switch req.Method {
		case MethodGetVersions:
			return scriptedResult(t, `{"id":1,"result":[["1.0","1.5"]]}`), nil
		case MethodGetMethodTypes:
			version, _ := req.Params[0].(string)
			if version == "1.5" {
				return scriptedResult(t, `{"id":2,"error":[14,"Unsupported Version"]}`), nil
			}
			return scriptedResult(t, `{"id":3,"results":[["getPowerStatus",[],[],"1.0"]]}`), nil
		default:
			return nil, fmt.Errorf("unexpected method %s", req.Method)
		}
	})
	s := NewService(ServiceSystem, ft)

	if err := s.DiscoverMethods(context.Background()); err != nil {
		t.Fatalf("DiscoverMethods() returned error: %v", err)
	}
	if !s.HasMethod(MethodGetPowerStatus) {
		t.Error("methods of the working version should be registered")
	}
}

var _ Transport = (*fakeTransport)(nil)

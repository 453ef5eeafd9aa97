// Package fakedevice runs an in-process scalar web device for tests.
//
// The device serves the usual service endpoints under a base URL and an
// IRCC descriptor chain next to them. Its personality is configured
// through exported fields before Start: open or protected, pre-shared
// key or PIN pairing, display off, with or without getDeviceMode.
package fakedevice

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/google/uuid"

	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// authCookieName is the cookie registration hands out.
const authCookieName = "auth"

// Call records one request received by the device.
type Call struct {
	// Service is the endpoint the call arrived on.
	Service string

	// Method is the requested method name.
	Method string

	// Params holds the raw request parameters.
	Params []json.RawMessage

	// Authorized reports whether the call carried working credentials.
	Authorized bool

	// PSK is the X-Auth-PSK header value, if any.
	PSK string

	// HasBasic reports whether HTTP basic credentials were attached.
	HasBasic bool

	// BasicUser and BasicPass are the basic credentials, if any.
	BasicUser string
	BasicPass string
}

// Device emulates one scalar web device. Configure the exported fields,
// call Start, and point a client at BaseURL. The zero value is an open
// device with no identity data.
type Device struct {
	// Protected requires credentials on guarded methods. An unset PSK and
	// PIN make a protected device unreachable.
	Protected bool

	// PSK, when set, authorizes any request carrying it in the X-Auth-PSK
	// header.
	PSK string

	// PIN, when set, is the pairing code actRegister demands through HTTP
	// basic authentication. Registration without it is answered with a
	// 401 challenge, the on-screen-PIN moment of a real device.
	PIN string

	// DisplayOff makes the authorization probes answer with the
	// display-is-off error regardless of credentials.
	DisplayOff bool

	// NoDeviceMode drops getDeviceMode from the device, forcing probes to
	// fall back to getPowerStatus.
	NoDeviceMode bool

	// RefuseOverHTTP reports refusals as a raw HTTP 403 instead of an
	// error tuple inside a 200 exchange. Firmwares differ here.
	RefuseOverHTTP bool

	// PowerStatus is the status getPowerStatus reports.
	PowerStatus string

	// SystemInfo is the getSystemInformation payload.
	SystemInfo scalarweb.SystemInformation

	// InterfaceInfo is the getInterfaceInformation payload.
	InterfaceInfo scalarweb.InterfaceInformation

	// Networks maps interface names to getNetworkSettings entries.
	// Interfaces not listed answer with an empty array.
	Networks map[string][]scalarweb.NetworkSettings

	// Commands is the command list of getRemoteControllerInfo.
	Commands []scalarweb.RemoteCommand

	// IRCCCommands is the command list served through the IRCC descriptor
	// chain.
	IRCCCommands []scalarweb.RemoteCommand

	server *httptest.Server

	mu         sync.Mutex
	calls      []Call
	cookies    map[string]bool
	registered []scalarweb.RegisterClient
}

// New creates an open device with a plausible identity. Adjust fields
// before Start to change its personality.
func New() *Device {
	return &Device{
		PowerStatus: "active",
		SystemInfo: scalarweb.SystemInformation{
			Product:    "TV",
			Name:       "BRAVIA",
			Model:      "XBR-65X900",
			Generation: "8.5.2",
			Serial:     "4001234",
			MACAddr:    "04:5d:4b:aa:bb:cc",
			Area:       "USA",
			Region:     "US",
		},
		InterfaceInfo: scalarweb.InterfaceInformation{
			InterfaceVersion: "5.1.0",
			ModelName:        "XBR-65X900",
			ProductCategory:  "tv",
			ProductName:      "BRAVIA",
			ServerName:       "BraviaServer",
		},
		Networks: map[string][]scalarweb.NetworkSettings{
			"eth0": {{
				NetIf:    "eth0",
				HWAddr:   "04:5d:4b:aa:bb:cc",
				IPAddrV4: "192.168.1.45",
				Netmask:  "255.255.255.0",
				Gateway:  "192.168.1.1",
			}},
		},
		Commands: []scalarweb.RemoteCommand{
			{Name: "PowerOff", Value: "AAAAAQAAAAEAAAAvAw=="},
			{Name: "Mute", Value: "AAAAAQAAAAEAAAAUAw=="},
			{Name: "Home", Value: "AAAAAQAAAAEAAABgAw=="},
		},
	}
}

// Start brings the device up on a local listener.
func (d *Device) Start() {
	if d.server != nil {
		panic("fakedevice: already started")
	}
	d.cookies = make(map[string]bool)

	mux := http.NewServeMux()
	for _, service := range []string{
		scalarweb.ServiceGuide,
		scalarweb.ServiceSystem,
		scalarweb.ServiceAccessControl,
		scalarweb.ServiceAVContent,
	} {
		mux.HandleFunc("/sony/"+service, d.handleService(service))
	}
	mux.HandleFunc("/ircc/descriptor.xml", d.handleIRCCDescriptor)
	mux.HandleFunc("/ircc/actionList.xml", d.handleIRCCActionList)
	mux.HandleFunc("/ircc/commandList.xml", d.handleIRCCCommandList)

	d.server = httptest.NewServer(mux)
}

// Close shuts the device down.
func (d *Device) Close() {
	if d.server != nil {
		d.server.Close()
	}
}

// BaseURL returns the device's API root, the BaseURL a client connects to.
func (d *Device) BaseURL() string {
	return d.server.URL + "/sony"
}

// IRCCURL returns the IRCC descriptor URL.
func (d *Device) IRCCURL() string {
	return d.server.URL + "/ircc/descriptor.xml"
}

// Calls returns a copy of every recorded call.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// CallsTo returns the recorded calls for one method.
func (d *Device) CallsTo(method string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Call
	for _, call := range d.calls {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

// RegisteredClients returns the clients actRegister has accepted.
func (d *Device) RegisteredClients() []scalarweb.RegisterClient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]scalarweb.RegisterClient(nil), d.registered...)
}

// requestEnvelope mirrors the request JSON with raw parameters.
type requestEnvelope struct {
	ID      int               `json:"id"`
	Method  string            `json:"method"`
	Version string            `json:"version"`
	Params  []json.RawMessage `json:"params"`
}

// handleService builds the handler of one service endpoint.
func (d *Device) handleService(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}

		var req requestEnvelope
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 0, 5, "Illegal Request")
			return
		}

		authorized := d.authorize(r)
		d.record(service, &req, r, authorized)

		switch req.Method {
		case scalarweb.MethodGetVersions:
			writeResult(w, req.ID, []string{"1.0"})
			return
		case scalarweb.MethodGetMethodTypes:
			d.writeMethodTypes(w, service, req.ID)
			return
		}

		switch service {
		case scalarweb.ServiceSystem:
			d.dispatchSystem(w, &req, authorized)
		case scalarweb.ServiceAccessControl:
			d.dispatchAccessControl(w, r, &req)
		default:
			writeError(w, req.ID, int(scalarweb.CodeNotImplemented), "Not Implemented")
		}
	}
}

// authorize checks the credentials of one request.
func (d *Device) authorize(r *http.Request) bool {
	if !d.Protected {
		return true
	}
	if d.PSK != "" && r.Header.Get("X-Auth-PSK") == d.PSK {
		return true
	}
	if cookie, err := r.Cookie(authCookieName); err == nil {
		d.mu.Lock()
		ok := d.cookies[cookie.Value]
		d.mu.Unlock()
		if ok {
			return true
		}
	}
	return false
}

// record appends one call to the log.
func (d *Device) record(service string, req *requestEnvelope, r *http.Request, authorized bool) {
	user, pass, hasBasic := r.BasicAuth()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{
		Service:    service,
		Method:     req.Method,
		Params:     req.Params,
		Authorized: authorized,
		PSK:        r.Header.Get("X-Auth-PSK"),
		HasBasic:   hasBasic,
		BasicUser:  user,
		BasicPass:  pass,
	})
}

// methods lists the methods one service advertises.
func (d *Device) methods(service string) []string {
	switch service {
	case scalarweb.ServiceSystem:
		methods := []string{
			scalarweb.MethodGetPowerStatus,
			scalarweb.MethodGetSystemInformation,
			scalarweb.MethodGetInterfaceInformation,
			scalarweb.MethodGetNetworkSettings,
			scalarweb.MethodGetRemoteControllerInfo,
		}
		if !d.NoDeviceMode {
			methods = append(methods, scalarweb.MethodGetDeviceMode)
		}
		return methods
	case scalarweb.ServiceAccessControl:
		return []string{scalarweb.MethodActRegister}
	default:
		return nil
	}
}

// writeMethodTypes answers getMethodTypes from the method table.
func (d *Device) writeMethodTypes(w http.ResponseWriter, service string, id int) {
	entries := make([]any, 0)
	for _, name := range d.methods(service) {
		entries = append(entries, []any{name, []string{}, []string{}, "1.0"})
	}
	writeEnvelope(w, map[string]any{"id": id, "results": entries})
}

// dispatchSystem serves the system service methods.
func (d *Device) dispatchSystem(w http.ResponseWriter, req *requestEnvelope, authorized bool) {
	switch req.Method {
	case scalarweb.MethodGetDeviceMode:
		if d.NoDeviceMode {
			writeError(w, req.ID, int(scalarweb.CodeNotImplemented), "Not Implemented")
			return
		}
		d.serveProbe(w, req, authorized, func() {
			writeResult(w, req.ID, map[string]bool{"isOn": true})
		})

	case scalarweb.MethodGetPowerStatus:
		d.serveProbe(w, req, authorized, func() {
			writeResult(w, req.ID, map[string]string{"status": d.PowerStatus})
		})

	case scalarweb.MethodGetSystemInformation:
		d.serveGuarded(w, req, authorized, func() {
			writeResult(w, req.ID, d.SystemInfo)
		})

	case scalarweb.MethodGetInterfaceInformation:
		d.serveGuarded(w, req, authorized, func() {
			writeResult(w, req.ID, d.InterfaceInfo)
		})

	case scalarweb.MethodGetNetworkSettings:
		d.serveGuarded(w, req, authorized, func() {
			var param scalarweb.NetIfParam
			if len(req.Params) > 0 {
				if err := json.Unmarshal(req.Params[0], &param); err != nil {
					writeError(w, req.ID, int(scalarweb.CodeIllegalArgument), "Illegal Argument")
					return
				}
			}
			entries := d.Networks[param.NetIf]
			if entries == nil {
				entries = []scalarweb.NetworkSettings{}
			}
			writeResult(w, req.ID, entries)
		})

	case scalarweb.MethodGetRemoteControllerInfo:
		d.serveGuarded(w, req, authorized, func() {
			info := scalarweb.RemoteControllerInfo{Bundled: true, Type: "RM-J1100"}
			commands := d.Commands
			if commands == nil {
				commands = []scalarweb.RemoteCommand{}
			}
			writeResult(w, req.ID, info, commands)
		})

	default:
		writeError(w, req.ID, int(scalarweb.CodeNotImplemented), "Not Implemented")
	}
}

// serveProbe answers an authorization probe: display-off first, then the
// credential check, then the real payload.
func (d *Device) serveProbe(w http.ResponseWriter, req *requestEnvelope, authorized bool, serve func()) {
	if d.DisplayOff {
		writeError(w, req.ID, int(scalarweb.CodeDisplayIsOff), "Display Is Turned off")
		return
	}
	d.serveGuarded(w, req, authorized, serve)
}

// serveGuarded answers a guarded method, refusing unauthorized callers.
func (d *Device) serveGuarded(w http.ResponseWriter, req *requestEnvelope, authorized bool, serve func()) {
	if !authorized {
		d.refuse(w, req.ID)
		return
	}
	serve()
}

// refuse reports a refusal in the configured style.
func (d *Device) refuse(w http.ResponseWriter, id int) {
	if d.RefuseOverHTTP {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	writeError(w, id, int(scalarweb.CodeForbidden), "Forbidden")
}

// dispatchAccessControl serves the access control service methods.
func (d *Device) dispatchAccessControl(w http.ResponseWriter, r *http.Request, req *requestEnvelope) {
	if req.Method != scalarweb.MethodActRegister {
		writeError(w, req.ID, int(scalarweb.CodeNotImplemented), "Not Implemented")
		return
	}

	if d.PIN != "" {
		_, pass, ok := r.BasicAuth()
		if !ok || pass != d.PIN {
			w.Header().Set("WWW-Authenticate", `Basic realm="requires basic authentication"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var client scalarweb.RegisterClient
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params[0], &client); err != nil {
			writeError(w, req.ID, int(scalarweb.CodeIllegalArgument), "Illegal Argument")
			return
		}
	}

	token := uuid.NewString()
	d.mu.Lock()
	d.cookies[token] = true
	d.registered = append(d.registered, client)
	d.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:  authCookieName,
		Value: token,
		Path:  "/sony",
	})
	writeResult(w, req.ID)
}

// writeResult writes a success envelope with the given payload elements.
func writeResult(w http.ResponseWriter, id int, payload ...any) {
	if payload == nil {
		payload = []any{}
	}
	writeEnvelope(w, map[string]any{"id": id, "result": payload})
}

// writeError writes an error envelope.
func writeError(w http.ResponseWriter, id, code int, message string) {
	writeEnvelope(w, map[string]any{"id": id, "error": []any{code, message}})
}

// writeEnvelope serializes one response envelope.
func writeEnvelope(w http.ResponseWriter, envelope map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		panic(fmt.Sprintf("fakedevice: failed to encode envelope: %v", err))
	}
}

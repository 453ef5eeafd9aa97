package log

import (
	"time"

	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// Event represents a protocol capture event from any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the device connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the device address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// DeviceID identifies the device across connections (configured name
	// or discovered model).
	DeviceID string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	HTTP        *HTTPEvent        `cbor:"8,keyasint,omitempty"`  // Transport layer
	Method      *MethodEvent      `cbor:"9,keyasint,omitempty"`  // Protocol layer (decoded)
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Session/authorization state
	Wake        *WakeEvent        `cbor:"11,keyasint,omitempty"` // Wake-on-LAN sends
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the HTTP exchange layer (raw requests).
	LayerTransport Layer = 0
	// LayerProtocol is the method call layer (decoded envelopes).
	LayerProtocol Layer = 1
	// LayerSession is the session negotiation layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerProtocol:
		return "PROTOCOL"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (request/result).
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryWake indicates a wake-on-LAN send.
	CategoryWake Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryWake:
		return "WAKE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// HTTPEvent captures one HTTP exchange at the transport layer.
type HTTPEvent struct {
	// Method is the HTTP method.
	Method string `cbor:"1,keyasint"`

	// URL is the service endpoint.
	URL string `cbor:"2,keyasint"`

	// Status is the HTTP status code (responses only).
	Status int `cbor:"3,keyasint,omitempty"`

	// RequestSize is the request body size in bytes.
	RequestSize int `cbor:"4,keyasint,omitempty"`

	// ResponseSize is the response body size in bytes.
	ResponseSize int `cbor:"5,keyasint,omitempty"`
}

// MethodEvent captures a decoded method call at the protocol layer.
type MethodEvent struct {
	// Type distinguishes request/result.
	Type CallType `cbor:"1,keyasint"`

	// RequestID correlates request/result pairs.
	RequestID int `cbor:"2,keyasint"`

	// Service is the scalar web service name.
	Service string `cbor:"3,keyasint,omitempty"`

	// Method is the method name (requests only).
	Method string `cbor:"4,keyasint,omitempty"`

	// Version is the method version (requests only).
	Version string `cbor:"5,keyasint,omitempty"`

	// HTTPStatus is the status of the exchange (results only).
	HTTPStatus *int `cbor:"6,keyasint,omitempty"`

	// ErrorCode is the device error code (results only, when reported).
	ErrorCode *scalarweb.Code `cbor:"7,keyasint,omitempty"`

	// Duration is the request round-trip time (results only).
	// Stored as nanoseconds.
	Duration *time.Duration `cbor:"8,keyasint,omitempty"`
}

// CallType distinguishes request/result.
type CallType uint8

const (
	// CallTypeRequest indicates an outgoing method call.
	CallTypeRequest CallType = 0
	// CallTypeResult indicates the device's answer.
	CallTypeResult CallType = 1
)

// String returns the call type name.
func (c CallType) String() string {
	switch c {
	case CallTypeRequest:
		return "REQUEST"
	case CallTypeResult:
		return "RESULT"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures session and authorization lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntitySession indicates a session state change.
	StateEntitySession StateEntity = 1
	// StateEntityAuthorization indicates an authorization state change.
	StateEntityAuthorization StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySession:
		return "SESSION"
	case StateEntityAuthorization:
		return "AUTHORIZATION"
	default:
		return "UNKNOWN"
	}
}

// WakeEvent captures a wake-on-LAN send.
type WakeEvent struct {
	// MAC is the target MAC address.
	MAC string `cbor:"1,keyasint"`

	// Target is the broadcast address the packet was sent to.
	Target string `cbor:"2,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the device error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}

package log

import (
	"testing"
	"time"

	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

func TestEventRoundTrip_Method(t *testing.T) {
	status := 200
	code := scalarweb.CodeIllegalArgument
	duration := 42 * time.Millisecond

	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerProtocol,
		Category:     CategoryMessage,
		DeviceID:     "living-room-tv",
		Method: &MethodEvent{
			Type:       CallTypeResult,
			RequestID:  7,
			Service:    scalarweb.ServiceSystem,
			HTTPStatus: &status,
			ErrorCode:  &code,
			Duration:   &duration,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.ConnectionID != "conn-123" {
		t.Errorf("ConnectionID = %q, want %q", decoded.ConnectionID, "conn-123")
	}
	if decoded.DeviceID != "living-room-tv" {
		t.Errorf("DeviceID = %q, want %q", decoded.DeviceID, "living-room-tv")
	}
	if decoded.Method == nil {
		t.Fatal("Method payload is nil")
	}
	if decoded.Method.RequestID != 7 {
		t.Errorf("RequestID = %d, want 7", decoded.Method.RequestID)
	}
	if decoded.Method.HTTPStatus == nil || *decoded.Method.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %v, want 200", decoded.Method.HTTPStatus)
	}
	if decoded.Method.ErrorCode == nil || !decoded.Method.ErrorCode.IsIllegalArgument() {
		t.Errorf("ErrorCode = %v, want illegal-argument", decoded.Method.ErrorCode)
	}
	if decoded.Method.Duration == nil || *decoded.Method.Duration != duration {
		t.Errorf("Duration = %v, want %v", decoded.Method.Duration, duration)
	}
}

func TestEventRoundTrip_HTTP(t *testing.T) {
	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Direction:    DirectionOut,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
		HTTP: &HTTPEvent{
			Method:      "POST",
			URL:         "http://192.168.1.45/sony/system",
			RequestSize: 64,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.HTTP == nil {
		t.Fatal("HTTP payload is nil")
	}
	if decoded.HTTP.URL != event.HTTP.URL {
		t.Errorf("URL = %q, want %q", decoded.HTTP.URL, event.HTTP.URL)
	}
	if decoded.HTTP.RequestSize != 64 {
		t.Errorf("RequestSize = %d, want 64", decoded.HTTP.RequestSize)
	}
}

func TestEventRoundTrip_StateChange(t *testing.T) {
	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Direction:    DirectionOut,
		Layer:        LayerSession,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityAuthorization,
			OldState: "probing",
			NewState: "needs-pairing",
			Reason:   "device returned 401",
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.StateChange == nil {
		t.Fatal("StateChange payload is nil")
	}
	if decoded.StateChange.Entity != StateEntityAuthorization {
		t.Errorf("Entity = %v, want authorization", decoded.StateChange.Entity)
	}
	if decoded.StateChange.NewState != "needs-pairing" {
		t.Errorf("NewState = %q, want %q", decoded.StateChange.NewState, "needs-pairing")
	}
}

func TestEventRoundTrip_Wake(t *testing.T) {
	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Direction:    DirectionOut,
		Layer:        LayerSession,
		Category:     CategoryWake,
		Wake: &WakeEvent{
			MAC:    "aa:bb:cc:dd:ee:ff",
			Target: "255.255.255.255:9",
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Wake == nil {
		t.Fatal("Wake payload is nil")
	}
	if decoded.Wake.MAC != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("MAC = %q, want %q", decoded.Wake.MAC, "aa:bb:cc:dd:ee:ff")
	}
}

func TestEventTimestampPrecision(t *testing.T) {
	// RFC3339Nano encoding must preserve sub-second precision.
	ts := time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)
	event := Event{
		Timestamp:    ts,
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, ts)
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{DirectionIn.String(), "IN"},
		{DirectionOut.String(), "OUT"},
		{Direction(9).String(), "UNKNOWN"},
		{LayerTransport.String(), "TRANSPORT"},
		{LayerProtocol.String(), "PROTOCOL"},
		{LayerSession.String(), "SESSION"},
		{CategoryMessage.String(), "MESSAGE"},
		{CategoryState.String(), "STATE"},
		{CategoryWake.String(), "WAKE"},
		{CategoryError.String(), "ERROR"},
		{CallTypeRequest.String(), "REQUEST"},
		{CallTypeResult.String(), "RESULT"},
		{StateEntityConnection.String(), "CONNECTION"},
		{StateEntitySession.String(), "SESSION"},
		{StateEntityAuthorization.String(), "AUTHORIZATION"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

package scalarweb

import (
	"net/http"
	"testing"
)

func TestParseResult_ResultKey(t *testing.T) {
	body := []byte(`{"id":3,"result":[{"status":"active"}]}`)

	res, err := ParseResult(http.StatusOK, body)
	if err != nil {
		t.Fatalf("ParseResult() returned error: %v", err)
	}

	if res.ID != 3 {
		t.Errorf("ID = %d, want 3", res.ID)
	}
	if res.IsError() {
		t.Errorf("IsError() = true, want false")
	}
	if !res.HasPayload() {
		t.Fatal("HasPayload() = false, want true")
	}
	if !res.Succeeded() {
		t.Error("Succeeded() = false, want true")
	}

	var status struct {
		Status string `json:"status"`
	}
	if err := res.Decode(&status); err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}
	if status.Status != "active" {
		t.Errorf("status = %q, want %q", status.Status, "active")
	}
}

func TestParseResult_ResultsKey(t *testing.T) {
	body := []byte(`{"id":9,"results":[["getPowerStatus",[],[],"1.0"],["getDeviceMode",[],[],"1.1"]]}`)

	res, err := ParseResult(http.StatusOK, body)
	if err != nil {
		t.Fatalf("ParseResult() returned error: %v", err)
	}
	if len(res.Payload) != 2 {
		t.Errorf("Payload has %d elements, want 2", len(res.Payload))
	}
}

func TestParseResult_ErrorTuple(t *testing.T) {
	body := []byte(`{"id":5,"error":[40005,"Display Is Turned off"]}`)

	res, err := ParseResult(http.StatusOK, body)
	if err != nil {
		t.Fatalf("ParseResult() returned error: %v", err)
	}

	if !res.IsError() {
		t.Fatal("IsError() = false, want true")
	}
	if !res.Code.IsDisplayOff() {
		t.Errorf("Code = %v, want display-off", res.Code)
	}
	if res.ErrorText != "Display Is Turned off" {
		t.Errorf("ErrorText = %q, want %q", res.ErrorText, "Display Is Turned off")
	}
	if res.Succeeded() {
		t.Error("Succeeded() = true, want false")
	}
	if res.ErrorMessage() != "Display Is Turned off" {
		t.Errorf("ErrorMessage() = %q, want error text", res.ErrorMessage())
	}
}

func TestParseResult_ErrorCodeOnly(t *testing.T) {
	body := []byte(`{"id":5,"error":[501]}`)

	res, err := ParseResult(http.StatusOK, body)
	if err != nil {
		t.Fatalf("ParseResult() returned error: %v", err)
	}

	if !res.Code.IsNotImplemented() {
		t.Errorf("Code = %v, want not-implemented", res.Code)
	}
	if res.ErrorMessage() != "NOT_IMPLEMENTED" {
		t.Errorf("ErrorMessage() = %q, want code name", res.ErrorMessage())
	}
}

func TestParseResult_EmptyBody(t *testing.T) {
	res, err := ParseResult(http.StatusForbidden, nil)
	if err != nil {
		t.Fatalf("ParseResult() returned error: %v", err)
	}

	if res.HTTPStatus != http.StatusForbidden {
		t.Errorf("HTTPStatus = %d, want 403", res.HTTPStatus)
	}
	if res.IsError() {
		t.Error("IsError() = true, want false (no device error tuple)")
	}
	if res.ErrorMessage() != "Forbidden" {
		t.Errorf("ErrorMessage() = %q, want HTTP status text", res.ErrorMessage())
	}
}

func TestParseResult_MalformedBody(t *testing.T) {
	if _, err := ParseResult(http.StatusOK, []byte("not json")); err == nil {
		t.Error("ParseResult() should return error for malformed body")
	}
}

func TestResult_DecodeAt(t *testing.T) {
	body := []byte(`{"id":1,"result":[{"bundled":true,"type":"RM-J1100"},[{"name":"Power","value":"AAAA"}]]}`)

	res, err := ParseResult(http.StatusOK, body)
	if err != nil {
		t.Fatalf("ParseResult() returned error: %v", err)
	}

	var info RemoteControllerInfo
	if err := res.DecodeAt(0, &info); err != nil {
		t.Fatalf("DecodeAt(0) returned error: %v", err)
	}
	if info.Type != "RM-J1100" {
		t.Errorf("Type = %q, want %q", info.Type, "RM-J1100")
	}

	var commands []RemoteCommand
	if err := res.DecodeAt(1, &commands); err != nil {
		t.Fatalf("DecodeAt(1) returned error: %v", err)
	}
	if len(commands) != 1 || commands[0].Name != "Power" {
		t.Errorf("commands = %+v, want one Power entry", commands)
	}

	if err := res.DecodeAt(2, &commands); err == nil {
		t.Error("DecodeAt(2) should return error for missing element")
	}
}

package scalarweb

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Result represents the outcome of one request: the HTTP status of the
// exchange, the device error tuple if one was returned, and the result
// payload elements if the call succeeded.
//
// A non-2xx HTTP exchange still produces a Result; only transport-level
// failures (connection refused, timeout) surface as Go errors.
type Result struct {
	// ID echoes the request id, 0 when the response carried none.
	ID int

	// HTTPStatus is the HTTP status code of the exchange.
	HTTPStatus int

	// Code is the device error code, CodeNone when the response carried
	// no error tuple.
	Code Code

	// ErrorText is the human-readable half of the error tuple, if any.
	ErrorText string

	// Payload holds the raw elements of the result array. Devices answer
	// under either a "result" or a "results" key; both land here.
	Payload []json.RawMessage
}

// resultEnvelope mirrors the response JSON. Exactly one of Result, Results
// or Error is populated by a conforming device.
type resultEnvelope struct {
	ID      int               `json:"id"`
	Result  []json.RawMessage `json:"result"`
	Results []json.RawMessage `json:"results"`
	Error   []json.RawMessage `json:"error"`
}

// NewResult creates a result carrying only an HTTP status. Used when the
// device answered without a decodable envelope.
func NewResult(httpStatus int) *Result {
	return &Result{HTTPStatus: httpStatus}
}

// ParseResult decodes a response body received with the given HTTP status.
// An empty body yields a bare status-only result.
func ParseResult(httpStatus int, body []byte) (*Result, error) {
	if len(body) == 0 {
		return NewResult(httpStatus), nil
	}

	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	res := &Result{
		ID:         env.ID,
		HTTPStatus: httpStatus,
	}

	switch {
	case env.Error != nil:
		code, text, err := parseErrorTuple(env.Error)
		if err != nil {
			return nil, err
		}
		res.Code = code
		res.ErrorText = text
	case env.Result != nil:
		res.Payload = env.Result
	case env.Results != nil:
		res.Payload = env.Results
	}

	return res, nil
}

// parseErrorTuple decodes the [code, message] error array. Devices always
// send the code first; the message is optional and tolerated in any type.
func parseErrorTuple(tuple []json.RawMessage) (Code, string, error) {
	if len(tuple) == 0 {
		return CodeNone, "", fmt.Errorf("empty error tuple")
	}

	var code int
	if err := json.Unmarshal(tuple[0], &code); err != nil {
		return CodeNone, "", fmt.Errorf("failed to decode error code: %w", err)
	}

	var text string
	if len(tuple) > 1 {
		if err := json.Unmarshal(tuple[1], &text); err != nil {
			// Non-string message; keep the raw form.
			text = string(tuple[1])
		}
	}

	return Code(code), text, nil
}

// IsError returns true if the device reported an error code.
func (r *Result) IsError() bool {
	return r.Code != CodeNone
}

// HasPayload returns true if the result carries at least one payload element.
func (r *Result) HasPayload() bool {
	return len(r.Payload) > 0
}

// Succeeded returns true for an HTTP 200 exchange with no device error.
func (r *Result) Succeeded() bool {
	return r.HTTPStatus == http.StatusOK && !r.IsError()
}

// Decode unmarshals the first payload element into v.
func (r *Result) Decode(v any) error {
	return r.DecodeAt(0, v)
}

// DecodeAt unmarshals the i-th payload element into v. Several methods
// answer with multi-element payloads (getRemoteControllerInfo places its
// command list second).
func (r *Result) DecodeAt(i int, v any) error {
	if i < 0 || i >= len(r.Payload) {
		return fmt.Errorf("no payload element at index %d", i)
	}
	if err := json.Unmarshal(r.Payload[i], v); err != nil {
		return fmt.Errorf("failed to decode payload element %d: %w", i, err)
	}
	return nil
}

// ErrorMessage returns a printable description of the failure: the device
// error text when present, the code name otherwise, or the HTTP status for
// plain HTTP failures.
func (r *Result) ErrorMessage() string {
	if r.IsError() {
		if r.ErrorText != "" {
			return r.ErrorText
		}
		return r.Code.String()
	}
	if r.HTTPStatus != http.StatusOK {
		return http.StatusText(r.HTTPStatus)
	}
	return ""
}

// String returns a compact description for logging.
func (r *Result) String() string {
	if r.IsError() {
		return fmt.Sprintf("http %d, error %s (%d): %s", r.HTTPStatus, r.Code, int(r.Code), r.ErrorText)
	}
	return fmt.Sprintf("http %d, %d payload elements", r.HTTPStatus, len(r.Payload))
}

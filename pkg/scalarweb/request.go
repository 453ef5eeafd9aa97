package scalarweb

import (
	"encoding/json"
	"fmt"
)

// Request represents a scalar web request envelope.
//
// JSON encoding:
//
//	{
//	  "id": messageId,     // int, unique per transport, never 0
//	  "method": method,    // string
//	  "version": version,  // string: "major.minor"
//	  "params": [...]      // method-specific, always present (may be empty)
//	}
type Request struct {
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Version string `json:"version"`
	Params  []any  `json:"params"`
}

// NewRequest creates a request envelope. A nil params slice is encoded as an
// empty array; devices reject envelopes with "params": null.
func NewRequest(id int, method, version string, params ...any) *Request {
	if params == nil {
		params = []any{}
	}
	return &Request{
		ID:      id,
		Method:  method,
		Version: version,
		Params:  params,
	}
}

// Validate checks if the request is valid.
func (r *Request) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("request id 0 is reserved")
	}
	if r.Method == "" {
		return fmt.Errorf("request method must not be empty")
	}
	if r.Version == "" {
		return fmt.Errorf("request version must not be empty")
	}
	return nil
}

// Encode serializes the request to JSON.
func (r *Request) Encode() ([]byte, error) {
	if r.Params == nil {
		r.Params = []any{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return data, nil
}

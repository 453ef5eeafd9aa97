// Package scalarweb implements the JSON-RPC request/response model used by
// Sony scalar web devices.
//
// A device exposes one HTTP endpoint per service (system, accessControl,
// guide, ...). Every call POSTs a JSON envelope:
//
//	{
//	  "id": 12,
//	  "method": "getSystemInformation",
//	  "version": "1.0",
//	  "params": []
//	}
//
// and every response carries either a result payload or an error tuple:
//
//	{"id": 12, "result": [{...}]}
//	{"id": 12, "error": [501, "Not Implemented"]}
//
// Result captures both shapes together with the HTTP status of the exchange,
// because authorization probing classifies device access from all three
// signals (HTTP status, device error code, payload).
//
// # Services
//
// Client builds one Service per configured service name, each backed by its
// own Transport sharing a device-wide cookie jar. A Service discovers the
// methods it supports at connect time via getVersions and getMethodTypes;
// HasMethod and version resolution consult that registry.
//
// # Transports
//
// The Transport interface is implemented by the transport package (HTTP and
// WebSocket). Credential state lives on the transport: an always-sent
// authorization header, and a device cookie that is only attached while
// auto-auth is enabled. Disabling auto-auth lets callers measure the
// device's raw unauthenticated behavior.
package scalarweb

// Package log provides structured protocol capture for scalar web sessions.
//
// This package defines the Logger interface and Event types for recording
// protocol-level events at multiple layers (HTTP transport, method calls,
// session state). It is separate from operational logging (slog) - protocol
// capture provides a complete machine-readable trace of a login attempt for
// debugging and analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	capture := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	capture, _ := log.NewFileLogger("/var/log/scalarweb/bravia.swlog")
//
//	// Both: use MultiLogger
//	capture := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: HTTP exchanges (HTTPEvent)
//   - Protocol: method calls and their results (MethodEvent)
//   - Session: authorization and session state changes (StateChangeEvent)
//
// Wake-on-LAN sends (WakeEvent) and errors (ErrorEventData) have dedicated
// event types.
//
// # File Format
//
// Capture files use CBOR encoding with .swlog extension. The scalar-log CLI
// tool provides viewing, filtering, and export capabilities.
package log

package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	// Add type-specific attributes
	switch {
	case event.HTTP != nil:
		attrs = append(attrs,
			slog.String("http_method", event.HTTP.Method),
			slog.String("url", event.HTTP.URL),
		)
		if event.HTTP.Status != 0 {
			attrs = append(attrs, slog.Int("status", event.HTTP.Status))
		}
	case event.Method != nil:
		attrs = append(attrs,
			slog.Int("request_id", event.Method.RequestID),
			slog.String("call_type", event.Method.Type.String()),
		)
		if event.Method.Service != "" {
			attrs = append(attrs, slog.String("service", event.Method.Service))
		}
		if event.Method.Method != "" {
			attrs = append(attrs, slog.String("method", event.Method.Method))
		}
		if event.Method.Version != "" {
			attrs = append(attrs, slog.String("version", event.Method.Version))
		}
		if event.Method.HTTPStatus != nil {
			attrs = append(attrs, slog.Int("http_status", *event.Method.HTTPStatus))
		}
		if event.Method.ErrorCode != nil {
			attrs = append(attrs, slog.String("error_code", event.Method.ErrorCode.String()))
		}
		if event.Method.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *event.Method.Duration))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Wake != nil:
		attrs = append(attrs,
			slog.String("mac", event.Wake.MAC),
			slog.String("target", event.Wake.Target),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)

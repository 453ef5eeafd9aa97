// Package commands implements the scalar-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/scalarweb/scalarweb-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)
	dir := event.Direction.String()

	// Determine event type label
	var typeLabel string
	switch {
	case event.HTTP != nil:
		typeLabel = "HTTP"
	case event.Method != nil:
		typeLabel = event.Method.Type.String()
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Wake != nil:
		typeLabel = "Wake"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, connID, dir, event.Layer, typeLabel)

	// Type-specific details
	switch {
	case event.HTTP != nil:
		formatHTTPDetails(w, event.HTTP)
	case event.Method != nil:
		formatMethodDetails(w, event.Method)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Wake != nil:
		formatWakeDetails(w, event.Wake)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatHTTPDetails writes transport exchange details.
func formatHTTPDetails(w io.Writer, h *log.HTTPEvent) {
	fmt.Fprintf(w, "  %s %s\n", h.Method, h.URL)
	if h.Status != 0 {
		fmt.Fprintf(w, "  Status: %d\n", h.Status)
	}
	if h.RequestSize > 0 {
		fmt.Fprintf(w, "  Request: %d bytes\n", h.RequestSize)
	}
	if h.ResponseSize > 0 {
		fmt.Fprintf(w, "  Response: %d bytes\n", h.ResponseSize)
	}
}

// formatMethodDetails writes method call details.
func formatMethodDetails(w io.Writer, m *log.MethodEvent) {
	fmt.Fprintf(w, "  RequestID: %d\n", m.RequestID)

	switch m.Type {
	case log.CallTypeRequest:
		fmt.Fprintf(w, "  Call: %s.%s", m.Service, m.Method)
		if m.Version != "" {
			fmt.Fprintf(w, " (v%s)", m.Version)
		}
		fmt.Fprintln(w)

	case log.CallTypeResult:
		if m.HTTPStatus != nil {
			fmt.Fprintf(w, "  Status: %d\n", *m.HTTPStatus)
		}
		if m.ErrorCode != nil {
			fmt.Fprintf(w, "  Error: %s (%d)\n", m.ErrorCode.String(), int(*m.ErrorCode))
		}
		if m.Duration != nil {
			fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*m.Duration))
		}
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatWakeDetails writes wake-on-LAN details.
func formatWakeDetails(w io.Writer, wake *log.WakeEvent) {
	fmt.Fprintf(w, "  MAC: %s\n", wake.MAC)
	if wake.Target != "" {
		fmt.Fprintf(w, "  Target: %s\n", wake.Target)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// filterEvents returns events matching the filter criteria.
func filterEvents(events []log.Event, filter ViewFilter) []log.Event {
	var result []log.Event
	for _, e := range events {
		if filter.Layer != nil && e.Layer != *filter.Layer {
			continue
		}
		if filter.Direction != nil && e.Direction != *filter.Direction {
			continue
		}
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		result = append(result, e)
	}
	return result
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "protocol":
		return log.LayerProtocol, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, protocol, or session)", s)
	}
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	return parseDirection(s)
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "wake":
		return log.CategoryWake, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, wake, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		// Apply filter
		if filter.Layer != nil && event.Layer != *filter.Layer {
			continue
		}
		if filter.Direction != nil && event.Direction != *filter.Direction {
			continue
		}
		if filter.Category != nil && event.Category != *filter.Category {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}

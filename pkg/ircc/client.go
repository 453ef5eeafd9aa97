package ircc

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ActionGetRemoteCommandList is the action list entry holding the
// command list URL.
const ActionGetRemoteCommandList = "getRemoteCommandList"

// DefaultTimeout is the per-fetch timeout of the default HTTP client.
const DefaultTimeout = 10 * time.Second

// maxDocumentSize bounds how much of an XML document is read (1 MiB).
const maxDocumentSize = 1 << 20

// RemoteCommand is one entry of the device's command list.
type RemoteCommand struct {
	// Name is the display name of the command.
	Name string

	// Type is the value interpretation, "ircc" for IR codes or "url"
	// for direct links.
	Type string

	// Value is the raw protocol value.
	Value string
}

// Config configures a Client.
type Config struct {
	// HTTPClient performs the fetches. Defaults to a client with
	// DefaultTimeout.
	HTTPClient *http.Client

	// Logger receives operational log output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client fetches remote command lists from IRCC endpoints.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates an IRCC client.
func NewClient(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{http: config.HTTPClient, logger: config.Logger}
}

// xml shapes; root element names vary between firmwares, so only the
// child structure is matched.
type actionListDocument struct {
	Actions []struct {
		Name string `xml:"name,attr"`
		URL  string `xml:"url,attr"`
	} `xml:"action"`
}

type commandListDocument struct {
	Commands []struct {
		Name  string `xml:"name,attr"`
		Type  string `xml:"type,attr"`
		Value string `xml:"value,attr"`
	} `xml:"command"`
}

// RemoteCommands fetches the command list behind a device descriptor
// URL, in document order. Entries with a blank name or value are
// skipped.
func (c *Client) RemoteCommands(ctx context.Context, descriptorURL string) ([]RemoteCommand, error) {
	base, err := url.Parse(descriptorURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse descriptor URL: %w", err)
	}

	descriptor, err := c.fetch(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch descriptor: %w", err)
	}

	actionListRef, ok := findElementText(descriptor, "X_CERS_ActionList_URL")
	if !ok || actionListRef == "" {
		return nil, fmt.Errorf("descriptor at %s has no action list URL", descriptorURL)
	}
	actionListURL, err := resolve(base, actionListRef)
	if err != nil {
		return nil, fmt.Errorf("failed to parse action list URL: %w", err)
	}

	actionsData, err := c.fetch(ctx, actionListURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch action list: %w", err)
	}
	var actions actionListDocument
	if err := xml.Unmarshal(actionsData, &actions); err != nil {
		return nil, fmt.Errorf("failed to decode action list: %w", err)
	}

	commandListRef := ""
	for _, action := range actions.Actions {
		if action.Name == ActionGetRemoteCommandList {
			commandListRef = action.URL
			break
		}
	}
	if commandListRef == "" {
		return nil, fmt.Errorf("action list at %s has no %s action", actionListURL, ActionGetRemoteCommandList)
	}
	commandListURL, err := resolve(actionListURL, commandListRef)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command list URL: %w", err)
	}

	commandsData, err := c.fetch(ctx, commandListURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch command list: %w", err)
	}
	var list commandListDocument
	if err := xml.Unmarshal(commandsData, &list); err != nil {
		return nil, fmt.Errorf("failed to decode command list: %w", err)
	}

	commands := make([]RemoteCommand, 0, len(list.Commands))
	for _, entry := range list.Commands {
		if entry.Name == "" || entry.Value == "" {
			continue
		}
		commands = append(commands, RemoteCommand{
			Name:  entry.Name,
			Type:  entry.Type,
			Value: entry.Value,
		})
	}
	c.logger.Debug("fetched remote command list",
		"url", commandListURL.String(), "commands", len(commands))
	return commands, nil
}

// fetch performs one GET and returns the body.
func (c *Client) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s answered %s", u.Host, res.Status)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxDocumentSize))
}

// resolve interprets ref relative to base, keeping absolute refs as-is.
func resolve(base *url.URL, ref string) (*url.URL, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(parsed), nil
}

// findElementText scans a document for the first element with the given
// local name, ignoring namespaces, and returns its trimmed text.
// Firmwares disagree on where the CERS extension elements live, so a
// scan beats a fixed path.
func findElementText(data []byte, local string) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			return "", false
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != local {
			continue
		}
		var text string
		if err := decoder.DecodeElement(&text, &start); err != nil {
			return "", false
		}
		return strings.TrimSpace(text), true
	}
}

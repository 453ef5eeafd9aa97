package auth

import (
	"context"

	"github.com/scalarweb/scalarweb-go/pkg/catalog"
	"github.com/scalarweb/scalarweb-go/pkg/ircc"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
	"github.com/scalarweb/scalarweb-go/pkg/wol"
)

// Client is the device-wide surface negotiation drives: service lookup plus
// the credential state shared by every transport. *scalarweb.Client
// satisfies it.
type Client interface {
	// Service returns the named service, or nil if the device connection
	// does not carry it.
	Service(name string) *scalarweb.Service

	// SetAutoAuth enables or disables cookie attachment on every transport.
	SetAutoAuth(enabled bool)

	// SetAuthHeader sets an authorization header on every transport. An
	// empty value removes it.
	SetAuthHeader(name, value string)
}

// Gateway executes named methods against one service. *scalarweb.Service
// satisfies it.
type Gateway interface {
	Execute(ctx context.Context, method string, params ...any) (*scalarweb.Result, error)
	ExecuteWithBasicAuth(ctx context.Context, username, password, method string, params ...any) (*scalarweb.Result, error)
	HasMethod(name string) bool
}

// PropertySink receives the device properties discovered during
// provisioning, one key at a time. Implementations decide what to keep.
type PropertySink interface {
	SetProperty(key, value string)
}

// PropertySinkFunc adapts a function to PropertySink.
type PropertySinkFunc func(key, value string)

// SetProperty calls f.
func (f PropertySinkFunc) SetProperty(key, value string) {
	f(key, value)
}

// WakeSignaler wakes a sleeping device ahead of probing. Wake must not
// block; send failures are the signaler's to log.
type WakeSignaler interface {
	Wake()
}

// CommandSource fetches remote commands from a secondary endpoint. Entries
// merge into the catalog behind the device's own command list.
type CommandSource interface {
	FetchCommands(ctx context.Context, endpointURL string) ([]catalog.Command, error)
}

// IRCCSource adapts the legacy IRCC lookup to CommandSource.
type IRCCSource struct {
	Client *ircc.Client
}

// FetchCommands chases the IRCC descriptor and converts its entries.
func (s IRCCSource) FetchCommands(ctx context.Context, endpointURL string) ([]catalog.Command, error) {
	cmds, err := s.Client.RemoteCommands(ctx, endpointURL)
	if err != nil {
		return nil, err
	}

	out := make([]catalog.Command, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, catalog.Command{Name: cmd.Name, Value: cmd.Value})
	}
	return out, nil
}

// Compile-time interface satisfaction checks.
var (
	_ Client        = (*scalarweb.Client)(nil)
	_ Gateway       = (*scalarweb.Service)(nil)
	_ WakeSignaler  = (*wol.Signaler)(nil)
	_ CommandSource = IRCCSource{}
	_ PropertySink  = (PropertySinkFunc)(nil)
)

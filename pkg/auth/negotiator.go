package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/scalarweb/scalarweb-go/pkg/catalog"
	"github.com/scalarweb/scalarweb-go/pkg/log"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// Device property keys pushed into the PropertySink during provisioning.
const (
	PropProduct          = "product"
	PropName             = "name"
	PropModel            = "model"
	PropGeneration       = "generation"
	PropSerial           = "serial"
	PropMACAddress       = "macAddress"
	PropArea             = "area"
	PropRegion           = "region"
	PropInterfaceVersion = "interfaceVersion"
	PropProductCategory  = "productCategory"
	PropServerName       = "serverName"
	PropNetIf            = "netIf"
	PropHWAddress        = "hwAddress"
	PropIPV4             = "ipV4"
	PropIPV6             = "ipV6"
	PropNetmask          = "netmask"
	PropGateway          = "gateway"
)

// netIfProbeOrder is the interface probe order of network provisioning.
// Probing stops at the first interface that answers with data.
var netIfProbeOrder = []string{"eth0", "wlan0", "eth1", "wlan1"}

// NegotiatorConfig configures a Negotiator.
type NegotiatorConfig struct {
	// Client is the connected device client. Required.
	Client Client

	// Config holds the device settings. Required. The negotiator reads it
	// and never writes it.
	Config *scalarweb.Config

	// Sink receives the properties discovered during provisioning. Required.
	Sink PropertySink

	// Wake wakes the device ahead of probing. Optional.
	Wake WakeSignaler

	// Commands is the secondary remote command source. Optional.
	Commands CommandSource

	// Store persists the command catalog. Optional; without it the catalog
	// step is skipped.
	Store *catalog.FileStore

	// DeviceID tags capture events. Optional.
	DeviceID string

	// Logger receives operational log output. Defaults to slog.Default().
	Logger *slog.Logger

	// Capture receives protocol capture events. Defaults to no capture.
	Capture log.Logger
}

// Negotiator drives the access negotiation of one device: wake, credential
// check, authorization or pairing, and post-login provisioning.
type Negotiator struct {
	client   Client
	config   *scalarweb.Config
	sink     PropertySink
	wake     WakeSignaler
	commands CommandSource
	store    *catalog.FileStore
	deviceID string
	logger   *slog.Logger
	capture  log.Logger

	auth *Authenticator
}

// NewNegotiator creates a negotiator. The client must be connected before
// Login is called.
func NewNegotiator(config NegotiatorConfig) (*Negotiator, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("Client is required")
	}
	if config.Config == nil {
		return nil, fmt.Errorf("Config is required")
	}
	if config.Sink == nil {
		return nil, fmt.Errorf("Sink is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Capture == nil {
		config.Capture = log.NoopLogger{}
	}

	return &Negotiator{
		client:   config.Client,
		config:   config.Config,
		sink:     config.Sink,
		wake:     config.Wake,
		commands: config.Commands,
		store:    config.Store,
		deviceID: config.DeviceID,
		logger:   config.Logger,
		capture:  config.Capture,
		auth: NewAuthenticator(config.Client, AuthenticatorConfig{
			Nickname: config.Config.Nickname,
			DeviceID: config.DeviceID,
			Logger:   config.Logger,
			Capture:  config.Capture,
		}),
	}, nil
}

// Authenticator returns the authenticator negotiation registers through.
func (n *Negotiator) Authenticator() *Authenticator {
	return n.auth
}

// Login negotiates access to the device:
//
//  1. Resolve the system and access control services; either missing ends
//     the attempt.
//  2. Disable ambient cookie attachment so probes observe the device's raw
//     behavior, and send a wake signal if one is configured.
//  3. Probe which credential mode the device accepts.
//  4. Install the working credentials, or register when the device asks
//     for pairing.
//  5. Provision device properties and the remote command catalog.
//
// Outcomes other than OK report why access was not granted. The error
// return covers failures outside the protocol, like an undecodable
// provisioning payload.
func (n *Negotiator) Login(ctx context.Context) (Outcome, error) {
	system := n.client.Service(scalarweb.ServiceSystem)
	accessControl := n.client.Service(scalarweb.ServiceAccessControl)
	if system == nil || accessControl == nil {
		n.logger.Warn("cannot negotiate access",
			"have_system", system != nil,
			"have_access_control", accessControl != nil)
		return OutcomeServiceMissing, nil
	}

	n.captureSession("negotiating", "")
	n.client.SetAutoAuth(false)

	if n.wake != nil {
		n.logger.Debug("waking device", "mac", n.config.MACAddress())
		n.wake.Wake()
		n.captureWake()
	}

	accessCode := strings.TrimSpace(n.config.AccessCode)
	checker := NewChecker(system.Transport(), accessCode)
	check := checker.Check(ctx, func(ctx context.Context) Outcome {
		return n.probe(ctx, system)
	})

	n.logger.Debug("credential check finished",
		"mode", check.Mode.String(),
		"outcome", check.Outcome.String())

	switch {
	case check.Mode == CheckModeHeader:
		if accessCode == "" {
			// The checker never selects header mode without a code.
			n.captureSession("failed", MessageBlankAccessCode)
			return BlankAccessCode(), nil
		}
		n.auth.SetupHeader(accessCode)

	case check.Mode == CheckModeCookie:
		n.auth.SetupCookie()

	case check.Outcome.Is(KindNeedsPairing):
		if accessCode == "" {
			n.captureSession("failed", MessageBlankAccessCode)
			return BlankAccessCode(), nil
		}
		if outcome := n.register(ctx, accessCode); !outcome.IsOK() {
			n.captureSession("failed", outcome.String())
			return outcome, nil
		}
		n.auth.SetupCookie()

	case check.Outcome.IsOK():
		// Open device: probes succeed without credentials.
		n.logger.Debug("device grants access without credentials")

	default:
		n.captureSession("failed", check.Outcome.String())
		return check.Outcome, nil
	}

	if err := n.provision(ctx, system); err != nil {
		n.captureSession("failed", err.Error())
		return Outcome{}, fmt.Errorf("provisioning failed: %w", err)
	}

	n.refreshCommandCatalog(ctx, system)

	n.captureSession("established", "")
	n.logger.Info("access negotiated", "device", n.config.Address)
	return OutcomeOK, nil
}

// register runs the pairing sub-negotiation. The sentinel access code asks
// the device to start a fresh registration without a PIN; any other value
// is used as the PIN.
func (n *Negotiator) register(ctx context.Context, accessCode string) Outcome {
	pin := accessCode
	if strings.EqualFold(accessCode, RegistrationRequestCode) {
		pin = ""
	}
	return n.auth.Register(ctx, pin)
}

// probe asks the device a guarded question and classifies the answer. The
// primary probe is getDeviceMode; devices that do not implement it are
// probed via getPowerStatus instead.
func (n *Negotiator) probe(ctx context.Context, system Gateway) Outcome {
	res, err := system.Execute(ctx, scalarweb.MethodGetDeviceMode)
	if err != nil {
		return Otherf("probe failed: %s", err)
	}

	if res.Code.IsNotImplemented() {
		res, err = system.Execute(ctx, scalarweb.MethodGetPowerStatus)
		if err != nil {
			return Otherf("probe failed: %s", err)
		}
	}

	return Classify(res)
}

// provision reads the device's descriptive data and pushes each value into
// the property sink. Every fetch is best-effort; only an undecodable
// payload aborts.
func (n *Negotiator) provision(ctx context.Context, system Gateway) error {
	if err := n.provisionSystemInformation(ctx, system); err != nil {
		return err
	}
	if err := n.provisionInterfaceInformation(ctx, system); err != nil {
		return err
	}
	return n.provisionNetworkSettings(ctx, system)
}

func (n *Negotiator) provisionSystemInformation(ctx context.Context, system Gateway) error {
	if !system.HasMethod(scalarweb.MethodGetSystemInformation) {
		return nil
	}

	res, err := system.Execute(ctx, scalarweb.MethodGetSystemInformation)
	if err != nil {
		n.logger.Debug("system information fetch failed", "error", err)
		return nil
	}
	if !res.Succeeded() || !res.HasPayload() {
		n.logger.Debug("system information unavailable", "result", res.String())
		return nil
	}

	var info scalarweb.SystemInformation
	if err := res.Decode(&info); err != nil {
		return fmt.Errorf("failed to decode system information: %w", err)
	}

	n.setProperty(PropProduct, info.Product)
	n.setProperty(PropName, info.Name)
	if info.ModelValid() {
		n.setProperty(PropModel, info.Model)
	}
	n.setProperty(PropGeneration, info.Generation)
	n.setProperty(PropSerial, info.Serial)
	n.setProperty(PropMACAddress, info.MACAddr)
	n.setProperty(PropArea, info.Area)
	n.setProperty(PropRegion, info.Region)
	return nil
}

func (n *Negotiator) provisionInterfaceInformation(ctx context.Context, system Gateway) error {
	if !system.HasMethod(scalarweb.MethodGetInterfaceInformation) {
		return nil
	}

	res, err := system.Execute(ctx, scalarweb.MethodGetInterfaceInformation)
	if err != nil {
		n.logger.Debug("interface information fetch failed", "error", err)
		return nil
	}
	if !res.Succeeded() || !res.HasPayload() {
		n.logger.Debug("interface information unavailable", "result", res.String())
		return nil
	}

	var info scalarweb.InterfaceInformation
	if err := res.Decode(&info); err != nil {
		return fmt.Errorf("failed to decode interface information: %w", err)
	}

	n.setProperty(PropInterfaceVersion, info.InterfaceVersion)
	n.setProperty(PropProductCategory, info.ProductCategory)
	n.setProperty(PropServerName, info.ServerName)
	return nil
}

func (n *Negotiator) provisionNetworkSettings(ctx context.Context, system Gateway) error {
	if !system.HasMethod(scalarweb.MethodGetNetworkSettings) {
		return nil
	}

	for _, netif := range netIfProbeOrder {
		res, err := system.Execute(ctx, scalarweb.MethodGetNetworkSettings,
			scalarweb.NetIfParam{NetIf: netif})
		if err != nil {
			n.logger.Debug("network settings fetch failed",
				"netif", netif,
				"error", err)
			continue
		}
		if !res.Succeeded() || !res.HasPayload() {
			continue
		}

		var settings []scalarweb.NetworkSettings
		if err := res.Decode(&settings); err != nil {
			return fmt.Errorf("failed to decode network settings: %w", err)
		}
		if len(settings) == 0 {
			continue
		}

		net := settings[0]
		n.setProperty(PropNetIf, net.NetIf)
		n.setProperty(PropHWAddress, net.HWAddr)
		n.setProperty(PropIPV4, net.IPAddrV4)
		n.setProperty(PropIPV6, net.IPAddrV6)
		n.setProperty(PropNetmask, net.Netmask)
		n.setProperty(PropGateway, net.Gateway)
		return nil
	}

	return nil
}

// setProperty pushes one discovered property, dropping blank values.
func (n *Negotiator) setProperty(key, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	n.sink.SetProperty(key, value)
}

// refreshCommandCatalog builds and writes the remote command file. The
// catalog is ancillary: every failure here is logged and the negotiation
// result stays unaffected.
func (n *Negotiator) refreshCommandCatalog(ctx context.Context, system Gateway) {
	if n.store == nil {
		return
	}
	name := strings.TrimSpace(n.config.CommandsFile)
	if name == "" {
		return
	}
	if n.store.Exists(name) {
		n.logger.Info("command catalog already defined, leaving it untouched",
			"path", n.store.Path(name))
		return
	}

	cat := catalog.New()

	if system.HasMethod(scalarweb.MethodGetRemoteControllerInfo) {
		res, err := system.Execute(ctx, scalarweb.MethodGetRemoteControllerInfo)
		switch {
		case err != nil:
			n.logger.Debug("remote controller info fetch failed", "error", err)
		case !res.Succeeded() || len(res.Payload) < 2:
			n.logger.Debug("remote controller info unavailable", "result", res.String())
		default:
			// The command list is the second payload element.
			var commands []scalarweb.RemoteCommand
			if err := res.DecodeAt(1, &commands); err != nil {
				n.logger.Debug("failed to decode remote controller info", "error", err)
			} else {
				for _, cmd := range commands {
					cat.Add(catalog.Command{Name: cmd.Name, Value: cmd.Value})
				}
			}
		}
	} else {
		n.logger.Info("device does not list getRemoteControllerInfo")
	}

	if n.commands != nil && strings.TrimSpace(n.config.IRCCURL) != "" {
		cmds, err := n.commands.FetchCommands(ctx, n.config.IRCCURL)
		if err != nil {
			n.logger.Debug("secondary command source failed",
				"url", n.config.IRCCURL,
				"error", err)
		} else {
			cat.AddAll(cmds)
		}
	}

	if cat.Len() == 0 {
		n.logger.Info("no remote commands discovered, nothing to write")
		return
	}

	if err := n.store.Write(name, cat.Lines()); err != nil {
		n.logger.Warn("failed to write command catalog",
			"path", n.store.Path(name),
			"error", err)
		return
	}
	n.logger.Info("command catalog written",
		"path", n.store.Path(name),
		"commands", cat.Len())
}

// captureSession emits a session-layer state change.
func (n *Negotiator) captureSession(newState, reason string) {
	n.capture.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		DeviceID:  n.deviceID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// captureWake emits a wake send event.
func (n *Negotiator) captureWake() {
	n.capture.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Layer:     log.LayerSession,
		Category:  log.CategoryWake,
		DeviceID:  n.deviceID,
		Wake: &log.WakeEvent{
			MAC: n.config.MACAddress(),
		},
	})
}

// Command scalar-controller is a reference client for scalar web devices.
//
// This command demonstrates a complete access negotiation against a device:
//   - CLI argument parsing
//   - Configuration file support
//   - Credential probing, pairing, and provisioning
//   - Remote command catalog retrieval
//   - Interactive command interface
//   - Protocol capture logging
//
// Usage:
//
//	scalar-controller [flags]
//
// Flags:
//
//	-config string         Device description file (YAML)
//	-device string         Device name from the config file, or the API root URL
//	-access-code string    Access code: pre-shared key, pairing PIN, or RQST
//	-nickname string       Client name shown on the device during pairing
//	-mac string            Device MAC address for wake-on-LAN
//	-ircc string           IRCC descriptor URL, the secondary command source
//	-commands-file string  Command catalog file name under -state-dir
//	-transport string      Transport: http, websocket (default "http")
//	-log-level string      Log level: debug, info, warn, error (default "info")
//	-interactive           Enable interactive command mode
//	-protocol-log string   File path for protocol event logging (CBOR format)
//	-state-dir string      Directory for the command catalog
//	-timeout duration      Per-request timeout (default 15s)
//
// Examples:
//
//	# Log in to an open device and print its properties
//	scalar-controller -device http://192.168.1.45/sony
//
//	# Log in with a pre-shared key
//	scalar-controller -device http://192.168.1.45/sony -access-code 1234
//
//	# Ask the device to display a pairing PIN, then pair with it
//	scalar-controller -device http://192.168.1.45/sony -access-code RQST
//	scalar-controller -device http://192.168.1.45/sony -access-code 7017
//
//	# Drive a device described in a YAML file, with protocol capture
//	scalar-controller -config devices.yaml -device living-room -protocol-log session.swlog
//
//	# Interactive session with a persistent command catalog
//	scalar-controller -config devices.yaml -state-dir ~/.scalar -interactive
//
// Configuration File:
//
// The -config file is YAML and may describe several devices. Per-device keys
// override the defaults section, and flags override both:
//
//	defaults:
//	  nickname: scalar-controller    # client name shown during pairing
//	  transport: http                # http or websocket
//	devices:
//	  - name: living-room            # device name used in logs and captures
//	    address: http://tv/sony      # device API root URL
//	    mac: "aa:bb:cc:dd:ee:ff"     # wake-on-LAN target
//	    access_code: "1234"          # pre-shared key, PIN, or RQST
//	    ircc_url: http://tv/Ircc.xml # secondary command source
//	    commands_file: tv.map        # catalog file name under -state-dir
//	    services: [guide, system]    # service names (default: all)
//
// With a single device the -device flag may be omitted; with several it
// selects a device by name.
//
// Interactive Commands:
//
//	login              - Negotiate access to the device
//	pair <pin|request> - Request pairing, or complete it with the displayed PIN
//	props              - Show properties discovered during provisioning
//	services           - List services and their method counts
//	methods <service>  - List the methods a service advertises
//	invoke <service> <method> [params...] - Call a method with JSON parameters
//	commands           - Show the remote command catalog
//	wake               - Send a wake-on-LAN signal
//	status             - Show session status
//	quit               - Exit the controller
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/scalarweb/scalarweb-go/cmd/scalar-controller/interactive"
	"github.com/scalarweb/scalarweb-go/pkg/auth"
	"github.com/scalarweb/scalarweb-go/pkg/catalog"
	"github.com/scalarweb/scalarweb-go/pkg/ircc"
	swlog "github.com/scalarweb/scalarweb-go/pkg/log"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
	"github.com/scalarweb/scalarweb-go/pkg/transport"
	"github.com/scalarweb/scalarweb-go/pkg/wol"
)

// Config holds the controller configuration.
type Config struct {
	ConfigFile   string
	Device       string
	AccessCode   string
	Nickname     string
	MAC          string
	IRCCURL      string
	CommandsFile string
	Transport    string
	LogLevel     string
	Interactive  bool
	ProtocolLog  string
	StateDir     string
	Timeout      time.Duration
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Device description file (YAML)")
	flag.StringVar(&config.Device, "device", "", "Device name from the config file, or the API root URL")
	flag.StringVar(&config.AccessCode, "access-code", "", "Access code: pre-shared key, pairing PIN, or RQST")
	flag.StringVar(&config.Nickname, "nickname", "", "Client name shown on the device during pairing")
	flag.StringVar(&config.MAC, "mac", "", "Device MAC address for wake-on-LAN")
	flag.StringVar(&config.IRCCURL, "ircc", "", "IRCC descriptor URL, the secondary command source")
	flag.StringVar(&config.CommandsFile, "commands-file", "", "Command catalog file name under -state-dir")
	flag.StringVar(&config.Transport, "transport", "", "Transport: http, websocket")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.Interactive, "interactive", false, "Enable interactive command mode")
	flag.StringVar(&config.ProtocolLog, "protocol-log", "", "File path for protocol event logging (CBOR format)")
	flag.StringVar(&config.StateDir, "state-dir", "", "Directory for the command catalog")
	flag.DurationVar(&config.Timeout, "timeout", 15*time.Second, "Per-request timeout")
}

func main() {
	flag.Parse()

	logger := setupLogging(config.LogLevel)

	log.Println("Scalar Web Controller")
	log.Println("=====================")

	file := &configFile{}
	entry := &deviceEntry{Address: config.Device}
	if config.ConfigFile != "" {
		loaded, err := loadConfigFile(config.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
		file = loaded

		selected, err := file.selectDevice(config.Device)
		if err != nil {
			log.Fatalf("Failed to select device: %v", err)
		}
		entry = selected
	}

	device := buildDeviceConfig(entry, &file.Defaults)
	if _, err := device.DeviceURL(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	deviceID := entry.Name
	if deviceID == "" {
		deviceID, _ = device.DeviceHostname()
	}

	log.Printf("Device: %s", device.Address)
	if device.WOLEligible() {
		log.Printf("Wake-on-LAN target: %s", device.MACAddress())
	}

	// Set up protocol logging if requested
	var captureFile *swlog.FileLogger
	if config.ProtocolLog != "" {
		fl, err := swlog.NewFileLogger(config.ProtocolLog)
		if err != nil {
			log.Fatalf("Failed to create protocol log: %v", err)
		}
		captureFile = fl
		log.Printf("Protocol logging to: %s", config.ProtocolLog)
	}

	transportConfig := transport.Config{
		Timeout:  config.Timeout,
		Logger:   logger,
		DeviceID: deviceID,
	}
	// Only set capture when non-nil to avoid typed-nil interface issue.
	if captureFile != nil {
		transportConfig.Capture = captureFile
	}

	var factory scalarweb.TransportFactory
	transportName := resolveTransport(entry, &file.Defaults)
	switch strings.ToLower(transportName) {
	case "", "http":
		factory = transport.HTTPFactory(transportConfig)
	case "websocket", "ws":
		factory = transport.WebSocketFactory(transportConfig)
	default:
		log.Fatalf("Unknown transport: %s (use: http, websocket)", transportName)
	}

	client, err := scalarweb.NewClient(scalarweb.ClientConfig{
		BaseURL:  device.Address,
		Services: entry.Services,
		Factory:  factory,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, config.Timeout)
	err = client.Connect(connectCtx)
	connectCancel()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	for _, svc := range client.Services() {
		log.Printf("Service %s: %d methods", svc.Name(), svc.Registry().Len())
	}

	props := newPropertyTable(device)

	negotiatorConfig := auth.NegotiatorConfig{
		Client:   client,
		Config:   device,
		Sink:     props,
		DeviceID: deviceID,
		Logger:   logger,
	}
	if captureFile != nil {
		negotiatorConfig.Capture = captureFile
	}
	if device.WOLEligible() {
		signaler, err := wol.NewSignaler(device.MACAddress())
		if err != nil {
			log.Printf("Warning: wake-on-LAN disabled: %v", err)
		} else {
			signaler.SetLogger(logger)
			negotiatorConfig.Wake = signaler
		}
	}
	if device.IRCCURL != "" {
		negotiatorConfig.Commands = auth.IRCCSource{
			Client: ircc.NewClient(ircc.Config{Logger: logger}),
		}
	}
	if config.StateDir != "" {
		negotiatorConfig.Store = catalog.NewFileStore(config.StateDir)
		log.Printf("Using state directory: %s", config.StateDir)
	}

	negotiator, err := auth.NewNegotiator(negotiatorConfig)
	if err != nil {
		log.Fatalf("Failed to create negotiator: %v", err)
	}

	if config.Interactive {
		ic, err := interactive.New(interactive.Config{
			Client:     client,
			Negotiator: negotiator,
			Device:     device,
			Properties: props.Snapshot,
			Store:      negotiatorConfig.Store,
			Timeout:    config.Timeout,
		})
		if err != nil {
			log.Fatalf("Failed to create interactive controller: %v", err)
		}
		// Redirect log output through readline to avoid interfering with input
		log.SetOutput(ic.Stdout())
		go ic.Run(ctx, cancel)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
		case <-ctx.Done():
			// Context was cancelled (e.g., by the quit command)
		}

		log.Println("Shutting down...")
		shutdown(client, captureFile)
		log.Println("Goodbye!")
		return
	}

	// One-shot mode: negotiate once, report, exit.
	outcome, err := negotiator.Login(ctx)
	if err != nil {
		shutdown(client, captureFile)
		log.Fatalf("Login failed: %v", err)
	}

	log.Printf("Login outcome: %s", outcome)
	switch {
	case outcome.IsOK():
		printProperties(props.Snapshot())
	case outcome.Is(auth.KindNeedsPairing):
		log.Println("The device is displaying a PIN. Re-run with -access-code <pin> to finish pairing.")
	}

	shutdown(client, captureFile)
	if !outcome.IsOK() {
		os.Exit(1)
	}
}

func setupLogging(level string) *slog.Logger {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		slogLevel = slog.LevelDebug
	case "warn":
		log.SetFlags(log.Ltime)
		slogLevel = slog.LevelWarn
	case "error":
		log.SetFlags(log.Ltime)
		slogLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)
	return logger
}

func shutdown(client *scalarweb.Client, captureFile *swlog.FileLogger) {
	if err := client.Close(); err != nil {
		log.Printf("Error closing client: %v", err)
	}
	if captureFile != nil {
		if err := captureFile.Close(); err != nil {
			log.Printf("Error closing protocol log: %v", err)
		}
	}
}

func printProperties(values map[string]string) {
	if len(values) == 0 {
		log.Println("No properties reported")
		return
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	log.Println("Device properties:")
	for _, k := range keys {
		log.Printf("  %-18s %s", k, values[k])
	}
}

// propertyTable collects the properties reported during provisioning. The
// reported MAC address is mirrored into the device configuration so
// wake-on-LAN works without one being configured.
type propertyTable struct {
	device *scalarweb.Config

	mu     sync.Mutex
	values map[string]string
}

func newPropertyTable(device *scalarweb.Config) *propertyTable {
	return &propertyTable{device: device, values: make(map[string]string)}
}

// SetProperty implements auth.PropertySink.
func (p *propertyTable) SetProperty(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[key] = value
	switch key {
	case auth.PropMACAddress:
		p.device.DiscoveredMAC = value
	case auth.PropHWAddress:
		if p.device.DiscoveredMAC == "" {
			p.device.DiscoveredMAC = value
		}
	}
}

// Snapshot returns a copy of the collected properties.
func (p *propertyTable) Snapshot() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

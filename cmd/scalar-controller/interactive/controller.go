// Package interactive provides the interactive command-line interface
// for the scalar web controller.
package interactive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/scalarweb/scalarweb-go/pkg/auth"
	"github.com/scalarweb/scalarweb-go/pkg/catalog"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
	"github.com/scalarweb/scalarweb-go/pkg/wol"
)

// Config wires the interactive controller to the session collaborators
// built by the main package.
type Config struct {
	// Client is the connected device client. Required.
	Client *scalarweb.Client

	// Negotiator drives access negotiation. Required.
	Negotiator *auth.Negotiator

	// Device holds the device settings. Required. The pair command
	// rewrites its access code before re-negotiating.
	Device *scalarweb.Config

	// Properties returns a snapshot of the properties discovered so far.
	// Required.
	Properties func() map[string]string

	// Store persists the command catalog. Optional.
	Store *catalog.FileStore

	// Timeout bounds individual method invocations (default 15s).
	Timeout time.Duration
}

// Controller handles interactive mode for scalar-controller.
type Controller struct {
	config Config
	rl     *readline.Instance

	// Last login outcome, nil before the first attempt.
	last *auth.Outcome
}

// New creates a new interactive controller handler.
func New(config Config) (*Controller, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("Client is required")
	}
	if config.Negotiator == nil {
		return nil, fmt.Errorf("Negotiator is required")
	}
	if config.Device == nil {
		return nil, fmt.Errorf("Device is required")
	}
	if config.Properties == nil {
		return nil, fmt.Errorf("Properties is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "scalar> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Controller{config: config, rl: rl}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Controller) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Controller) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Controller) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "login", "l":
			c.cmdLogin(ctx)

		case "pair":
			c.cmdPair(ctx, args)

		case "props", "p":
			c.cmdProps()

		case "services":
			c.cmdServices()

		case "methods", "m":
			c.cmdMethods(args)

		case "invoke", "call":
			c.cmdInvoke(ctx, args)

		case "commands":
			c.cmdCommands()

		case "wake":
			c.cmdWake()

		case "status":
			c.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Controller) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Scalar Web Controller Commands:
  Session:
    login              - Negotiate access to the device
    pair <pin|request> - Pair: 'pair request' asks the device to display a
                         PIN, 'pair 1234' completes with the displayed PIN
    status             - Show session status

  Inspection:
    props              - Show properties discovered during provisioning
    services           - List services and their method counts
    methods <service>  - List the methods a service advertises
    invoke <service> <method> [params...]
                       - Call a method; parameters are JSON values, bare
                         words are taken as strings

  Device:
    wake               - Send a wake-on-LAN signal
    commands           - Show the remote command catalog

  General:
    help               - Show this help
    quit               - Exit the controller`)
}

// cmdLogin handles the login command.
func (c *Controller) cmdLogin(ctx context.Context) {
	fmt.Fprintln(c.rl.Stdout(), "Negotiating access...")

	outcome, err := c.config.Negotiator.Login(ctx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Login failed: %v\n", err)
		return
	}
	c.last = &outcome

	fmt.Fprintf(c.rl.Stdout(), "Outcome: %s\n", outcome)
	switch {
	case outcome.IsOK():
		props := c.config.Properties()
		if name := props[auth.PropName]; name != "" {
			fmt.Fprintf(c.rl.Stdout(), "Authorized by %s (model %s)\n", name, props[auth.PropModel])
		}
		fmt.Fprintln(c.rl.Stdout(), "Type 'props' for the discovered properties.")
	case outcome.Is(auth.KindNeedsPairing):
		fmt.Fprintln(c.rl.Stdout(), "The device is displaying a PIN. Complete with: pair <pin>")
	}
}

// cmdPair handles the pair command. It rewrites the configured access code
// and re-runs the negotiation with it.
func (c *Controller) cmdPair(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: pair <pin|request>")
		return
	}

	code := args[0]
	if strings.EqualFold(code, "request") {
		code = auth.RegistrationRequestCode
	}
	c.config.Device.AccessCode = code

	c.cmdLogin(ctx)
}

// cmdProps handles the props command.
func (c *Controller) cmdProps() {
	props := c.config.Properties()
	if len(props) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No properties discovered yet. Run 'login' first.")
		return
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(c.rl.Stdout(), "%-18s %s\n", k, props[k])
	}
}

// cmdServices handles the services command.
func (c *Controller) cmdServices() {
	for _, svc := range c.config.Client.Services() {
		fmt.Fprintf(c.rl.Stdout(), "%-16s %d methods\n", svc.Name(), svc.Registry().Len())
	}
}

// cmdMethods handles the methods command.
func (c *Controller) cmdMethods(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: methods <service>")
		return
	}

	svc := c.config.Client.Service(args[0])
	if svc == nil {
		fmt.Fprintf(c.rl.Stdout(), "Unknown service: %s (see 'services')\n", args[0])
		return
	}

	names := svc.Registry().Names()
	if len(names) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Service advertises no methods")
		return
	}
	for _, name := range names {
		version, _ := svc.Registry().Version(name)
		fmt.Fprintf(c.rl.Stdout(), "%-36s v%s\n", name, version)
	}
}

// cmdInvoke handles the invoke command.
func (c *Controller) cmdInvoke(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: invoke <service> <method> [params...]")
		return
	}

	svc := c.config.Client.Service(args[0])
	if svc == nil {
		fmt.Fprintf(c.rl.Stdout(), "Unknown service: %s (see 'services')\n", args[0])
		return
	}
	method := args[1]

	// Parse parameters as JSON; a bare word becomes a string.
	params := make([]any, 0, len(args)-2)
	for _, arg := range args[2:] {
		var value any
		if err := json.Unmarshal([]byte(arg), &value); err != nil {
			value = arg
		}
		params = append(params, value)
	}

	invokeCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	res, err := svc.Execute(invokeCtx, method, params...)
	cancel()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}

	if res.IsError() {
		fmt.Fprintf(c.rl.Stdout(), "Device error %d: %s\n", int(res.Code), res.ErrorMessage())
		return
	}
	if len(res.Payload) == 0 {
		fmt.Fprintf(c.rl.Stdout(), "OK (HTTP %d)\n", res.HTTPStatus)
		return
	}
	for _, elem := range res.Payload {
		fmt.Fprintln(c.rl.Stdout(), prettyJSON(elem))
	}
}

// cmdCommands handles the commands command.
func (c *Controller) cmdCommands() {
	if c.config.Store == nil || c.config.Device.CommandsFile == "" {
		fmt.Fprintln(c.rl.Stdout(), "No command catalog configured (start with -state-dir)")
		return
	}

	path := c.config.Store.Path(c.config.Device.CommandsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(c.rl.Stdout(), "No catalog written yet. Run 'login' first.")
		return
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	fmt.Fprintf(c.rl.Stdout(), "%s (%d commands):\n", path, len(lines))
	for _, line := range lines {
		fmt.Fprintf(c.rl.Stdout(), "  %s\n", line)
	}
}

// cmdWake handles the wake command. The signaler is built per call so a
// MAC address discovered during provisioning is picked up.
func (c *Controller) cmdWake() {
	if !c.config.Device.WOLEligible() {
		fmt.Fprintln(c.rl.Stdout(), "No MAC address known (configure one, or login to discover it)")
		return
	}

	signaler, err := wol.NewSignaler(c.config.Device.MACAddress())
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if err := signaler.Send(); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Wake signal sent to %s\n", c.config.Device.MACAddress())
}

// cmdStatus handles the status command.
func (c *Controller) cmdStatus() {
	out := c.rl.Stdout()
	device := c.config.Device

	fmt.Fprintf(out, "%-14s %s\n", "Device:", device.Address)
	fmt.Fprintf(out, "%-14s %s\n", "Nickname:", device.Nickname)
	fmt.Fprintf(out, "%-14s %s\n", "Access code:", describeAccessCode(device.AccessCode))
	fmt.Fprintf(out, "%-14s %s\n", "MAC:", describeMAC(device))
	if c.last != nil {
		fmt.Fprintf(out, "%-14s %s\n", "Last login:", c.last.String())
	} else {
		fmt.Fprintf(out, "%-14s none\n", "Last login:")
	}
	if c.config.Store != nil && device.CommandsFile != "" {
		path := c.config.Store.Path(device.CommandsFile)
		state := "not written"
		if c.config.Store.Exists(device.CommandsFile) {
			state = "written"
		}
		fmt.Fprintf(out, "%-14s %s (%s)\n", "Catalog:", path, state)
	}
}

func describeAccessCode(code string) string {
	switch {
	case code == "":
		return "none"
	case strings.EqualFold(code, auth.RegistrationRequestCode):
		return "pairing requested"
	default:
		return "configured"
	}
}

func describeMAC(device *scalarweb.Config) string {
	switch {
	case strings.TrimSpace(device.MAC) != "":
		return device.MAC + " (configured)"
	case strings.TrimSpace(device.DiscoveredMAC) != "":
		return device.DiscoveredMAC + " (discovered)"
	default:
		return "unknown"
	}
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

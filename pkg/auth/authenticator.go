package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/scalarweb/scalarweb-go/pkg/log"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// DefaultNickname identifies this client during registration when the
// configuration does not set one.
const DefaultNickname = "scalarweb-go"

// AuthenticatorConfig configures an Authenticator.
type AuthenticatorConfig struct {
	// Nickname is shown on the device's registered client list. Defaults
	// to DefaultNickname.
	Nickname string

	// DeviceID tags capture events. Optional.
	DeviceID string

	// Logger receives operational log output. Defaults to slog.Default().
	Logger *slog.Logger

	// Capture receives protocol capture events. Defaults to no capture.
	Capture log.Logger
}

// Authenticator owns the credential side of negotiation: registering this
// client with the device and installing working credentials on every
// transport.
type Authenticator struct {
	client   Client
	clientID string
	nickname string
	deviceID string
	logger   *slog.Logger
	capture  log.Logger
}

// NewAuthenticator creates an authenticator for the given device client.
// Each authenticator identifies itself under a fresh client id; once
// paired, the device lists that id until it is unregistered on the device.
func NewAuthenticator(client Client, config AuthenticatorConfig) *Authenticator {
	if config.Nickname == "" {
		config.Nickname = DefaultNickname
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Capture == nil {
		config.Capture = log.NoopLogger{}
	}

	return &Authenticator{
		client:   client,
		clientID: uuid.NewString() + ":" + config.Nickname,
		nickname: config.Nickname,
		deviceID: config.DeviceID,
		logger:   config.Logger,
		capture:  config.Capture,
	}
}

// ClientID returns the identity presented during registration.
func (a *Authenticator) ClientID() string {
	return a.clientID
}

// SetupHeader installs the access code as a pre-shared key header on every
// transport.
func (a *Authenticator) SetupHeader(accessCode string) {
	a.client.SetAuthHeader(PSKHeader, accessCode)
	a.logger.Debug("authorizing via pre-shared key header")
	a.captureAuthState("header", "pre-shared key accepted")
}

// SetupCookie enables device cookie attachment on every transport. The
// cookie itself lives in the shared jar, captured from the device during
// probing or registration.
func (a *Authenticator) SetupCookie() {
	a.client.SetAutoAuth(true)
	a.logger.Debug("authorizing via device cookie")
	a.captureAuthState("cookie", "device cookie accepted")
}

// Register pairs this client with the device by calling actRegister on the
// access control service. An empty pin requests a new registration, which
// prompts PIN-capable devices to display one. With a pin, a 401 challenge
// is answered once with HTTP basic credentials (blank user, pin password).
//
// A successful registration makes the device issue its auth cookie in the
// same exchange; callers follow up with SetupCookie to start sending it.
func (a *Authenticator) Register(ctx context.Context, pin string) Outcome {
	accessControl := a.client.Service(scalarweb.ServiceAccessControl)
	if accessControl == nil {
		return OutcomeServiceMissing
	}

	a.logger.Info("registering with device",
		"client_id", a.clientID,
		"pin", pin != "")

	regClient := scalarweb.RegisterClient{
		ClientID: a.clientID,
		Nickname: a.nickname,
		Level:    scalarweb.RegisterLevelPrivate,
	}
	functions := []scalarweb.RegisterFunction{
		{Value: "yes", Function: scalarweb.FunctionWOL},
	}

	res, err := accessControl.Execute(ctx, scalarweb.MethodActRegister, regClient, functions)
	if err != nil {
		return Otherf("registration failed: %s", err)
	}

	if pin != "" && effectiveStatus(res) == http.StatusUnauthorized {
		a.logger.Debug("registration challenged, answering with pin")
		res, err = accessControl.ExecuteWithBasicAuth(ctx, "", pin,
			scalarweb.MethodActRegister, regClient, functions)
		if err != nil {
			return Otherf("registration failed: %s", err)
		}
	}

	outcome := Classify(res)
	if outcome.IsOK() {
		a.logger.Info("registration accepted", "client_id", a.clientID)
		a.captureAuthState("registered", "actRegister accepted")
	} else {
		a.logger.Warn("registration refused", "outcome", outcome.String())
	}
	return outcome
}

// captureAuthState emits a session-layer authorization state change.
func (a *Authenticator) captureAuthState(newState, reason string) {
	a.capture.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		DeviceID:  a.deviceID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityAuthorization,
			OldState: "none",
			NewState: newState,
			Reason:   reason,
		},
	})
}

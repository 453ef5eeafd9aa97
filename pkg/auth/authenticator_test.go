package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalarweb/scalarweb-go/pkg/log"
	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthenticatorClientID(t *testing.T) {
	client := newFakeClient(nil, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Nickname: "livingroom", Logger: quietLogger()})

	assert.Regexp(t, `^[0-9a-f-]{36}:livingroom$`, auth.ClientID())

	other := NewAuthenticator(client, AuthenticatorConfig{Nickname: "livingroom", Logger: quietLogger()})
	assert.NotEqual(t, auth.ClientID(), other.ClientID(), "client ids must be unique per authenticator")
}

func TestAuthenticatorDefaultNickname(t *testing.T) {
	client := newFakeClient(nil, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	assert.Regexp(t, `:`+DefaultNickname+`$`, auth.ClientID())
}

func TestAuthenticatorRegisterFreshRequest(t *testing.T) {
	device := newFakeDevice(func(call deviceCall) (*scalarweb.Result, error) {
		return jsonResult(t, `{"id":1,"result":[]}`), nil
	})
	client := newFakeClient(device, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Nickname: "livingroom", Logger: quietLogger()})

	outcome := auth.Register(context.Background(), "")
	assert.True(t, outcome.IsOK())

	calls := device.callsTo(scalarweb.MethodActRegister)
	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, scalarweb.ServiceAccessControl, call.Service)
	assert.False(t, call.HasBasic, "a fresh registration request carries no credentials")

	require.Len(t, call.Params, 2)
	regClient, ok := call.Params[0].(scalarweb.RegisterClient)
	require.True(t, ok, "first actRegister param must identify the client")
	assert.Equal(t, auth.ClientID(), regClient.ClientID)
	assert.Equal(t, "livingroom", regClient.Nickname)
	assert.Equal(t, scalarweb.RegisterLevelPrivate, regClient.Level)

	functions, ok := call.Params[1].([]scalarweb.RegisterFunction)
	require.True(t, ok, "second actRegister param must list function opt-ins")
	require.Len(t, functions, 1)
	assert.Equal(t, scalarweb.FunctionWOL, functions[0].Function)
	assert.Equal(t, "yes", functions[0].Value)
}

func TestAuthenticatorRegisterAnswersPINChallenge(t *testing.T) {
	device := newFakeDevice(func(call deviceCall) (*scalarweb.Result, error) {
		if call.HasBasic {
			return jsonResult(t, `{"id":2,"result":[]}`), nil
		}
		return statusResult(http.StatusUnauthorized), nil
	})
	client := newFakeClient(device, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	outcome := auth.Register(context.Background(), "2170")
	assert.True(t, outcome.IsOK())

	calls := device.callsTo(scalarweb.MethodActRegister)
	require.Len(t, calls, 2)
	assert.False(t, calls[0].HasBasic)
	assert.True(t, calls[1].HasBasic)
	assert.Equal(t, "", calls[1].BasicUser, "the basic user is blank, only the PIN matters")
	assert.Equal(t, "2170", calls[1].BasicPass)
}

func TestAuthenticatorRegisterChallengeViaErrorTuple(t *testing.T) {
	// Some firmware answers the challenge inside a 200 exchange.
	device := newFakeDevice(func(call deviceCall) (*scalarweb.Result, error) {
		if call.HasBasic {
			return jsonResult(t, `{"id":2,"result":[]}`), nil
		}
		return errorResult(t, 401), nil
	})
	client := newFakeClient(device, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	outcome := auth.Register(context.Background(), "2170")
	assert.True(t, outcome.IsOK())
	assert.Len(t, device.callsTo(scalarweb.MethodActRegister), 2)
}

func TestAuthenticatorRegisterWrongPIN(t *testing.T) {
	device := newFakeDevice(func(call deviceCall) (*scalarweb.Result, error) {
		return statusResult(http.StatusUnauthorized), nil
	})
	client := newFakeClient(device, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	outcome := auth.Register(context.Background(), "0000")
	assert.True(t, outcome.Is(KindNeedsPairing), "a refused PIN keeps the device in pairing state")
	// One challenge, one basic-auth retry, no further attempts.
	assert.Len(t, device.callsTo(scalarweb.MethodActRegister), 2)
}

func TestAuthenticatorRegisterWithoutPINDoesNotRetry(t *testing.T) {
	device := newFakeDevice(func(call deviceCall) (*scalarweb.Result, error) {
		return statusResult(http.StatusUnauthorized), nil
	})
	client := newFakeClient(device, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	outcome := auth.Register(context.Background(), "")
	assert.True(t, outcome.Is(KindNeedsPairing))
	assert.Len(t, device.callsTo(scalarweb.MethodActRegister), 1)
}

func TestAuthenticatorRegisterServiceMissing(t *testing.T) {
	client := newFakeClient(nil, scalarweb.ServiceSystem)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	outcome := auth.Register(context.Background(), "")
	assert.True(t, outcome.Is(KindServiceMissing))
}

func TestAuthenticatorRegisterRefusalPropagates(t *testing.T) {
	device := newFakeDevice(func(call deviceCall) (*scalarweb.Result, error) {
		return errorResult(t, 7), nil
	})
	client := newFakeClient(device, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	outcome := auth.Register(context.Background(), "")
	assert.True(t, outcome.Is(KindOther))
}

func TestAuthenticatorSetupHeaderCoversAllTransports(t *testing.T) {
	client := newFakeClient(nil,
		scalarweb.ServiceGuide,
		scalarweb.ServiceSystem,
		scalarweb.ServiceAccessControl,
		scalarweb.ServiceAVContent)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	auth.SetupHeader("1234")

	for name, tr := range client.transports {
		assert.Equal(t, "1234", tr.header(PSKHeader), "transport %s", name)
	}
}

func TestAuthenticatorSetupCookieCoversAllTransports(t *testing.T) {
	client := newFakeClient(nil, scalarweb.ServiceSystem, scalarweb.ServiceAccessControl)
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger()})

	auth.SetupCookie()

	for name, tr := range client.transports {
		assert.True(t, tr.autoAuthOn(), "transport %s", name)
	}
}

func TestAuthenticatorCapturesAuthStateChanges(t *testing.T) {
	device := newFakeDevice(nil)
	client := newFakeClient(device, scalarweb.ServiceAccessControl)
	capture := &captureRecorder{}
	auth := NewAuthenticator(client, AuthenticatorConfig{Logger: quietLogger(), Capture: capture})

	outcome := auth.Register(context.Background(), "")
	require.True(t, outcome.IsOK())
	auth.SetupCookie()

	states := capture.stateChanges(log.StateEntityAuthorization)
	assert.Equal(t, []string{"registered", "cookie"}, states)
}

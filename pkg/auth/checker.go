package auth

import (
	"context"
	"strings"

	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// PSKHeader is the request header that carries a pre-shared access code.
const PSKHeader = "X-Auth-PSK"

// RegistrationRequestCode is the access code sentinel that asks for a new
// registration instead of supplying a credential. PIN-capable devices are
// paired with this value first, before the user has a PIN to enter.
const RegistrationRequestCode = "RQST"

// ProbeFunc runs one authorization probe against the device and classifies
// the answer. The checker calls it under different credential regimes.
type ProbeFunc func(ctx context.Context) Outcome

// CheckMode identifies the credential mode a probe validated.
type CheckMode uint8

const (
	// CheckModeNone means no credential mode was validated; the Outcome
	// field carries the raw probe result for routing.
	CheckModeNone CheckMode = iota

	// CheckModeHeader means the access code works as a pre-shared key
	// header.
	CheckModeHeader

	// CheckModeCookie means device cookies authorize requests.
	CheckModeCookie
)

// String returns the mode name.
func (m CheckMode) String() string {
	switch m {
	case CheckModeNone:
		return "NONE"
	case CheckModeHeader:
		return "HEADER"
	case CheckModeCookie:
		return "COOKIE"
	default:
		return "UNKNOWN"
	}
}

// CheckResult is the answer of the credential check: a validated credential
// mode, or the raw probe outcome passed through.
type CheckResult struct {
	Mode    CheckMode
	Outcome Outcome
}

// Checker determines which credential mode a device accepts by probing it
// under each regime in turn. Credential changes are confined to the given
// transport and undone before Check returns; only the selected mode
// survives.
type Checker struct {
	transport  scalarweb.Transport
	accessCode string
}

// NewChecker creates a checker driving the given transport. The access code
// may be blank or the registration sentinel; the header regime is skipped
// for both.
func NewChecker(transport scalarweb.Transport, accessCode string) *Checker {
	return &Checker{
		transport:  transport,
		accessCode: strings.TrimSpace(accessCode),
	}
}

// Check probes the device under each credential regime:
//
//  1. With a usable access code, attach it as a pre-shared key header and
//     probe; success selects header mode.
//  2. Enable cookie attachment and probe; success selects cookie mode.
//  3. Probe bare and pass the raw outcome through for routing.
func (c *Checker) Check(ctx context.Context, probe ProbeFunc) CheckResult {
	if c.accessCode != "" && !strings.EqualFold(c.accessCode, RegistrationRequestCode) {
		c.transport.SetAuthHeader(PSKHeader, c.accessCode)
		outcome := probe(ctx)
		c.transport.SetAuthHeader(PSKHeader, "")
		if outcome.IsOK() {
			return CheckResult{Mode: CheckModeHeader, Outcome: outcome}
		}
	}

	c.transport.SetAutoAuth(true)
	outcome := probe(ctx)
	c.transport.SetAutoAuth(false)
	if outcome.IsOK() {
		return CheckResult{Mode: CheckModeCookie, Outcome: outcome}
	}

	return CheckResult{Outcome: probe(ctx)}
}

package auth

import (
	"fmt"
	"net/http"

	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// Kind classifies the result of an access negotiation stage.
type Kind uint8

const (
	// KindOK means the device accepted the access attempt.
	KindOK Kind = iota

	// KindServiceMissing means a service required for negotiation is absent
	// from the device connection.
	KindServiceMissing

	// KindDisplayOff means the display is off and the device refuses to
	// answer until it is turned on.
	KindDisplayOff

	// KindNeedsPairing means the device wants the client to register before
	// granting access.
	KindNeedsPairing

	// KindOther carries any result outside the recognized set.
	KindOther
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "OK"
	case KindServiceMissing:
		return "SERVICE_MISSING"
	case KindDisplayOff:
		return "DISPLAY_OFF"
	case KindNeedsPairing:
		return "NEEDS_PAIRING"
	case KindOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the result of one access negotiation stage. Every stage
// produces one; terminal outcomes end the attempt, NeedsPairing triggers
// the registration sub-negotiation.
type Outcome struct {
	kind    Kind
	message string
}

// Predefined outcomes. OutcomeOK is the only one that lets negotiation
// proceed.
var (
	OutcomeOK             = Outcome{kind: KindOK, message: "OK"}
	OutcomeServiceMissing = Outcome{kind: KindServiceMissing, message: "required service is missing"}
	OutcomeDisplayOff     = Outcome{kind: KindDisplayOff, message: "display is off"}
	OutcomeNeedsPairing   = Outcome{kind: KindNeedsPairing, message: "device needs pairing"}
)

// MessageBlankAccessCode is the message of the outcome returned when header
// authorization or pairing needs an access code and the configuration
// carries none.
const MessageBlankAccessCode = "access code cannot be blank"

// Other creates an outcome for a result outside the recognized set. The
// message carries the device's raw answer for diagnosis.
func Other(message string) Outcome {
	return Outcome{kind: KindOther, message: message}
}

// Otherf creates an Other outcome from a format string.
func Otherf(format string, args ...any) Outcome {
	return Other(fmt.Sprintf(format, args...))
}

// BlankAccessCode returns the outcome for a missing access code.
func BlankAccessCode() Outcome {
	return Other(MessageBlankAccessCode)
}

// Kind returns the outcome's classification.
func (o Outcome) Kind() Kind {
	return o.kind
}

// Is returns true if the outcome has the given kind.
func (o Outcome) Is(kind Kind) bool {
	return o.kind == kind
}

// IsOK returns true for the success outcome.
func (o Outcome) IsOK() bool {
	return o.kind == KindOK
}

// Terminal returns true for outcomes that end a negotiation attempt. Only
// NeedsPairing is non-terminal.
func (o Outcome) Terminal() bool {
	return o.kind != KindNeedsPairing
}

// Message returns the human-readable description.
func (o Outcome) Message() string {
	return o.message
}

// String formats the outcome for logging.
func (o Outcome) String() string {
	if o.kind == KindOther {
		return fmt.Sprintf("%s: %s", o.kind, o.message)
	}
	return o.kind.String()
}

// Classify maps one method result onto the outcome set. The checks are
// ordered: display-off wins over any simultaneous status, then success,
// then the pairing signals.
//
// Firmware generations disagree on whether a refusal arrives as a raw HTTP
// status or as an error tuple inside a 200 exchange, and error codes reuse
// HTTP numbers (403, 501). Classification therefore runs on an effective
// status: the error code when an error tuple is present, the transport
// status otherwise.
func Classify(res *scalarweb.Result) Outcome {
	status := effectiveStatus(res)

	switch {
	case res.Code.IsDisplayOff():
		return OutcomeDisplayOff
	case status == http.StatusOK || res.Code.IsIllegalArgument():
		// Illegal argument counts as success: arguments are validated only
		// after authorization, so the rejection proves access.
		return OutcomeOK
	case res.Code.IsNotImplemented() || res.Code.IsForbidden() ||
		status == http.StatusUnauthorized || status == http.StatusForbidden:
		return OutcomeNeedsPairing
	default:
		return Otherf("unexpected device response: %s", res)
	}
}

// effectiveStatus folds a result's two status channels into one: the error
// code when an error tuple is present, the transport status otherwise.
func effectiveStatus(res *scalarweb.Result) int {
	if res.IsError() {
		return int(res.Code)
	}
	return res.HTTPStatus
}

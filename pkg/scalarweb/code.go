package scalarweb

import "fmt"

// Code represents a device error code carried in the error tuple of a
// response envelope. The values are fixed by the device firmware.
type Code int

const (
	// CodeNone indicates the response carried no error tuple.
	CodeNone Code = 0

	// CodeIllegalArgument indicates the method exists but rejected its
	// arguments. Devices validate arguments only after authorization, so
	// this code doubles as proof of access.
	CodeIllegalArgument Code = 3

	// CodeIllegalState indicates the device cannot perform the method in
	// its current state.
	CodeIllegalState Code = 7

	// CodeForbidden indicates the caller is not authorized.
	CodeForbidden Code = 403

	// CodeNotImplemented indicates the device does not implement the method.
	CodeNotImplemented Code = 501

	// CodeDisplayIsOff indicates the display is turned off and the method
	// cannot be served until it is turned on.
	CodeDisplayIsOff Code = 40005
)

// String returns the error code name.
func (c Code) String() string {
	switch c {
	case CodeNone:
		return "NONE"
	case CodeIllegalArgument:
		return "ILLEGAL_ARGUMENT"
	case CodeIllegalState:
		return "ILLEGAL_STATE"
	case CodeForbidden:
		return "FORBIDDEN"
	case CodeNotImplemented:
		return "NOT_IMPLEMENTED"
	case CodeDisplayIsOff:
		return "DISPLAY_IS_OFF"
	default:
		return fmt.Sprintf("ERROR_%d", int(c))
	}
}

// IsNone returns true if no device error was reported.
func (c Code) IsNone() bool {
	return c == CodeNone
}

// IsNotImplemented returns true for the not-implemented error code.
func (c Code) IsNotImplemented() bool {
	return c == CodeNotImplemented
}

// IsIllegalArgument returns true for the illegal-argument error code.
func (c Code) IsIllegalArgument() bool {
	return c == CodeIllegalArgument
}

// IsForbidden returns true for the forbidden error code.
func (c Code) IsForbidden() bool {
	return c == CodeForbidden
}

// IsDisplayOff returns true for the display-is-off error code.
func (c Code) IsDisplayOff() bool {
	return c == CodeDisplayIsOff
}

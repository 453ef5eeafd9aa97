package scalarweb

import "testing"

func TestCode_String(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeNone, "NONE"},
		{CodeIllegalArgument, "ILLEGAL_ARGUMENT"},
		{CodeIllegalState, "ILLEGAL_STATE"},
		{CodeForbidden, "FORBIDDEN"},
		{CodeNotImplemented, "NOT_IMPLEMENTED"},
		{CodeDisplayIsOff, "DISPLAY_IS_OFF"},
		{Code(12), "ERROR_12"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCode_Classifiers(t *testing.T) {
	if !CodeNone.IsNone() {
		t.Error("CodeNone should report IsNone")
	}
	if CodeForbidden.IsNone() {
		t.Error("CodeForbidden should not report IsNone")
	}
	if !CodeNotImplemented.IsNotImplemented() {
		t.Error("CodeNotImplemented should report IsNotImplemented")
	}
	if !CodeIllegalArgument.IsIllegalArgument() {
		t.Error("CodeIllegalArgument should report IsIllegalArgument")
	}
	if !CodeForbidden.IsForbidden() {
		t.Error("CodeForbidden should report IsForbidden")
	}
	if !CodeDisplayIsOff.IsDisplayOff() {
		t.Error("CodeDisplayIsOff should report IsDisplayOff")
	}
	if CodeIllegalState.IsDisplayOff() {
		t.Error("CodeIllegalState should not report IsDisplayOff")
	}
}

func TestCode_WireValues(t *testing.T) {
	// The integer values are fixed by device firmware and must not drift.
	tests := []struct {
		code Code
		want int
	}{
		{CodeIllegalArgument, 3},
		{CodeIllegalState, 7},
		{CodeForbidden, 403},
		{CodeNotImplemented, 501},
		{CodeDisplayIsOff, 40005},
	}

	for _, tt := range tests {
		if int(tt.code) != tt.want {
			t.Errorf("%s = %d, want %d", tt.code, int(tt.code), tt.want)
		}
	}
}

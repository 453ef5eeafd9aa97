package scalarweb

import (
	"reflect"
	"testing"
)

func TestMethodRegistry_Add(t *testing.T) {
	r := NewMethodRegistry()

	r.Add(MethodGetPowerStatus, "1.0")
	if !r.Has(MethodGetPowerStatus) {
		t.Fatal("Has() = false after Add")
	}
	if v, _ := r.Version(MethodGetPowerStatus); v != "1.0" {
		t.Errorf("Version() = %q, want %q", v, "1.0")
	}
}

func TestMethodRegistry_LatestVersionWins(t *testing.T) {
	r := NewMethodRegistry()

	r.Add(MethodGetPowerStatus, "1.0")
	r.Add(MethodGetPowerStatus, "1.1")
	if v, _ := r.Version(MethodGetPowerStatus); v != "1.1" {
		t.Errorf("Version() = %q, want %q after upgrade", v, "1.1")
	}

	// A lower version never displaces a higher one.
	r.Add(MethodGetPowerStatus, "1.0")
	if v, _ := r.Version(MethodGetPowerStatus); v != "1.1" {
		t.Errorf("Version() = %q, want %q after downgrade attempt", v, "1.1")
	}
}

func TestMethodRegistry_UnparseableVersions(t *testing.T) {
	r := NewMethodRegistry()

	// An unparseable version is kept when it is all we have.
	r.Add("oddMethod", "beta")
	if v, _ := r.Version("oddMethod"); v != "beta" {
		t.Errorf("Version() = %q, want %q", v, "beta")
	}

	// A parseable version displaces it.
	r.Add("oddMethod", "1.0")
	if v, _ := r.Version("oddMethod"); v != "1.0" {
		t.Errorf("Version() = %q, want %q", v, "1.0")
	}

	// An unparseable version never displaces a parseable one.
	r.Add("oddMethod", "beta")
	if v, _ := r.Version("oddMethod"); v != "1.0" {
		t.Errorf("Version() = %q, want %q", v, "1.0")
	}
}

func TestMethodRegistry_EmptyName(t *testing.T) {
	r := NewMethodRegistry()
	r.Add("", "1.0")
	if r.Len() != 0 {
		t.Error("empty method name should not be registered")
	}
}

func TestMethodRegistry_Names(t *testing.T) {
	r := NewMethodRegistry()
	r.Add("zMethod", "1.0")
	r.Add("aMethod", "1.0")
	r.Add("mMethod", "1.0")

	want := []string{"aMethod", "mMethod", "zMethod"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestMethodRegistry_Unknown(t *testing.T) {
	r := NewMethodRegistry()
	if r.Has(MethodGetDeviceMode) {
		t.Error("Has() = true for unknown method")
	}
	if _, ok := r.Version(MethodGetDeviceMode); ok {
		t.Error("Version() ok = true for unknown method")
	}
}

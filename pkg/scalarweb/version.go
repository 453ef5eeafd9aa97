package scalarweb

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultVersion is the method version used when a service's registry has no
// entry for a method. Every device supports "1.0" for the core methods.
const DefaultVersion = "1.0"

// Version represents a parsed "major.minor" method version.
type Version struct {
	Major uint16
	Minor uint16
}

// ParseVersion parses a "major.minor" version string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return Version{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less returns true if v orders before other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

// Compare returns -1, 0 or 1 depending on how v orders against other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Less(other):
		return -1
	case other.Less(v):
		return 1
	default:
		return 0
	}
}

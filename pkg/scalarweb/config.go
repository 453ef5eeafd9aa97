package scalarweb

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Config holds the settings of one device. Session negotiation reads it and
// never writes it; discovered values (like the MAC address) live in their
// own fields so the configured values stay authoritative.
type Config struct {
	// Address is the device's API root URL.
	Address string

	// MAC is the configured MAC address used for wake-on-LAN.
	MAC string

	// DiscoveredMAC is the MAC address learned from the device itself,
	// used when no MAC is configured.
	DiscoveredMAC string

	// AccessCode authenticates the client: a pre-shared key sent as a
	// header, a registration PIN, or the sentinel requesting a new
	// registration.
	AccessCode string

	// IRCCURL locates the device's IRCC descriptor, the secondary source
	// of remote commands.
	IRCCURL string

	// CommandsFile is the file the command catalog is written to. Empty
	// disables catalog writing.
	CommandsFile string

	// Nickname identifies this client during registration.
	Nickname string
}

// DeviceURL parses the configured address.
func (c *Config) DeviceURL() (*url.URL, error) {
	if strings.TrimSpace(c.Address) == "" {
		return nil, fmt.Errorf("device address is not configured")
	}

	u, err := url.Parse(c.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid device address %q: %w", c.Address, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid device address %q: unsupported scheme", c.Address)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("invalid device address %q: missing host", c.Address)
	}

	return u, nil
}

// DeviceHostname returns the host part of the configured address.
func (c *Config) DeviceHostname() (string, error) {
	u, err := c.DeviceURL()
	if err != nil {
		return "", err
	}
	return u.Hostname(), nil
}

// DevicePort returns the port of the configured address, defaulting by
// scheme when none is present.
func (c *Config) DevicePort() (int, error) {
	u, err := c.DeviceURL()
	if err != nil {
		return 0, err
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid device port %q: %w", p, err)
		}
		return port, nil
	}

	if u.Scheme == "https" {
		return 443, nil
	}
	return 80, nil
}

// MACAddress returns the configured MAC address, falling back to the
// discovered one.
func (c *Config) MACAddress() string {
	if strings.TrimSpace(c.MAC) != "" {
		return c.MAC
	}
	return c.DiscoveredMAC
}

// WOLEligible returns true if the device can be woken: a MAC address is
// known from configuration or discovery.
func (c *Config) WOLEligible() bool {
	return strings.TrimSpace(c.MACAddress()) != ""
}

// Package wol sends wake-on-LAN magic packets.
//
// Session negotiation wakes a sleeping device before probing it so the probe
// measures the device, not its power state. Waking is fire-and-forget: a
// device that cannot be woken still answers the probe with its display-off
// error, which the session layer understands.
package wol

import (
	"fmt"
	"log/slog"
	"net"
)

// DefaultPort is the UDP port magic packets are broadcast to.
const DefaultPort = 9

// magic packet layout: 6 bytes of 0xFF followed by the MAC 16 times.
const (
	headerLen  = 6
	macRepeats = 16
)

// Signaler wakes one device by MAC address.
type Signaler struct {
	mac    net.HardwareAddr
	addr   string
	logger *slog.Logger
}

// NewSignaler creates a signaler for the given MAC address, broadcasting to
// the default wake port.
func NewSignaler(mac string) (*Signaler, error) {
	return NewSignalerAddr(mac, fmt.Sprintf("255.255.255.255:%d", DefaultPort))
}

// NewSignalerAddr creates a signaler with an explicit target address, for
// directed broadcasts and tests.
func NewSignalerAddr(mac, addr string) (*Signaler, error) {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return nil, fmt.Errorf("invalid MAC address %q: %w", mac, err)
	}
	if len(hw) != 6 {
		return nil, fmt.Errorf("invalid MAC address %q: expected 6 octets, got %d", mac, len(hw))
	}

	return &Signaler{
		mac:    hw,
		addr:   addr,
		logger: slog.Default(),
	}, nil
}

// SetLogger sets the logger for this signaler.
func (s *Signaler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// MAC returns the target MAC address.
func (s *Signaler) MAC() net.HardwareAddr {
	return s.mac
}

// Wake broadcasts a magic packet, logging failures instead of returning
// them. The caller never depends on the wake having worked.
func (s *Signaler) Wake() {
	if err := s.Send(); err != nil {
		s.logger.Debug("wake-on-LAN send failed",
			"mac", s.mac.String(),
			"target", s.addr,
			"error", err)
	}
}

// Send broadcasts a magic packet and reports failures.
func (s *Signaler) Send() error {
	conn, err := net.Dial("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", s.addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(MagicPacket(s.mac)); err != nil {
		return fmt.Errorf("failed to send magic packet: %w", err)
	}
	return nil
}

// MagicPacket builds the wake-on-LAN payload for a MAC address.
func MagicPacket(mac net.HardwareAddr) []byte {
	packet := make([]byte, 0, headerLen+macRepeats*len(mac))
	for i := 0; i < headerLen; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < macRepeats; i++ {
		packet = append(packet, mac...)
	}
	return packet
}

// Package auth negotiates access to a scalar web device.
//
// Devices guard their APIs in firmware-specific ways: some expect a
// pre-shared key header, some hand out session cookies, some require a
// one-time PIN pairing, and some are open. The negotiator discovers which
// regime a device runs by probing a guarded method under each credential
// mode, installs working credentials on every service transport, and
// finishes by reading the device's descriptive data.
//
// # Probing
//
// The probe calls getDeviceMode, falling back to getPowerStatus on devices
// that do not implement it, and classifies the answer. An illegal-argument
// error counts as success: devices validate arguments only after
// authorization, so the rejection proves the call passed the access check.
//
// # Pairing
//
// When the device asks for pairing, the negotiator registers this client
// via actRegister on the access control service. The sentinel access code
// "RQST" requests a fresh registration, prompting PIN-capable devices to
// display a PIN; with a PIN configured, a 401 challenge is answered once
// with HTTP basic credentials (blank user, PIN password).
//
// # Provisioning
//
// After access is granted, the negotiator reads system, interface and
// network information into a PropertySink and writes the remote command
// catalog, merged from the device's own command list and an optional
// legacy IRCC source. The catalog is written once per device; provisioning
// failures of individual values are logged and skipped.
package auth

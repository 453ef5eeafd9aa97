package scalarweb

import "testing"

func TestConfig_DeviceURL(t *testing.T) {
	c := &Config{Address: "http://192.168.1.45/sony"}

	u, err := c.DeviceURL()
	if err != nil {
		t.Fatalf("DeviceURL() returned error: %v", err)
	}
	if u.Hostname() != "192.168.1.45" {
		t.Errorf("hostname = %q, want %q", u.Hostname(), "192.168.1.45")
	}
	if u.Path != "/sony" {
		t.Errorf("path = %q, want %q", u.Path, "/sony")
	}
}

func TestConfig_DeviceURLInvalid(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"no scheme", "192.168.1.45/sony"},
		{"bad scheme", "ftp://192.168.1.45/sony"},
		{"no host", "http:///sony"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Address: tt.address}
			if _, err := c.DeviceURL(); err == nil {
				t.Errorf("DeviceURL() should return error for %q", tt.address)
			}
		})
	}
}

func TestConfig_DevicePort(t *testing.T) {
	tests := []struct {
		address string
		want    int
	}{
		{"http://192.168.1.45/sony", 80},
		{"https://192.168.1.45/sony", 443},
		{"http://192.168.1.45:8080/sony", 8080},
		{"https://192.168.1.45:10443/sony", 10443},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			c := &Config{Address: tt.address}
			port, err := c.DevicePort()
			if err != nil {
				t.Fatalf("DevicePort() returned error: %v", err)
			}
			if port != tt.want {
				t.Errorf("DevicePort() = %d, want %d", port, tt.want)
			}
		})
	}
}

func TestConfig_MACAddressFallback(t *testing.T) {
	c := &Config{MAC: "AA:BB:CC:DD:EE:FF", DiscoveredMAC: "11:22:33:44:55:66"}
	if got := c.MACAddress(); got != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("MACAddress() = %q, want configured value", got)
	}

	c.MAC = ""
	if got := c.MACAddress(); got != "11:22:33:44:55:66" {
		t.Errorf("MACAddress() = %q, want discovered value", got)
	}

	c.MAC = "   "
	if got := c.MACAddress(); got != "11:22:33:44:55:66" {
		t.Errorf("MACAddress() = %q, blank configured value should fall back", got)
	}
}

func TestConfig_WOLEligible(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   bool
	}{
		{"configured MAC", Config{MAC: "AA:BB:CC:DD:EE:FF"}, true},
		{"discovered MAC", Config{DiscoveredMAC: "AA:BB:CC:DD:EE:FF"}, true},
		{"no MAC", Config{}, false},
		{"blank MAC", Config{MAC: "  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.WOLEligible(); got != tt.want {
				t.Errorf("WOLEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSystemInformation_ModelValid(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"KDL-55W805B", true},
		{"", false},
		{NotAvailable, false},
	}

	for _, tt := range tests {
		info := &SystemInformation{Model: tt.model}
		if got := info.ModelValid(); got != tt.want {
			t.Errorf("ModelValid(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

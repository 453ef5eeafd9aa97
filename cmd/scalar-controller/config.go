package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

// configFile mirrors the YAML file given with -config. It describes one or
// more devices plus defaults applied to all of them.
type configFile struct {
	Defaults deviceDefaults `yaml:"defaults"`
	Devices  []deviceEntry  `yaml:"devices"`
}

// deviceDefaults are settings shared by every device in the file.
type deviceDefaults struct {
	Nickname  string `yaml:"nickname"`
	Transport string `yaml:"transport"`
}

// deviceEntry describes one device.
type deviceEntry struct {
	Name         string   `yaml:"name"`
	Address      string   `yaml:"address"`
	MAC          string   `yaml:"mac"`
	AccessCode   string   `yaml:"access_code"`
	Nickname     string   `yaml:"nickname"`
	IRCCURL      string   `yaml:"ircc_url"`
	CommandsFile string   `yaml:"commands_file"`
	Services     []string `yaml:"services"`
	Transport    string   `yaml:"transport"`
}

func loadConfigFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &file, nil
}

// selectDevice resolves the -device flag against the file: a matching device
// name wins, a URL stands alone, and with a single-device file the flag may
// be omitted entirely.
func (f *configFile) selectDevice(nameOrURL string) (*deviceEntry, error) {
	if nameOrURL != "" {
		for i := range f.Devices {
			if strings.EqualFold(f.Devices[i].Name, nameOrURL) {
				return &f.Devices[i], nil
			}
		}
		if strings.Contains(nameOrURL, "://") {
			return &deviceEntry{Address: nameOrURL}, nil
		}
		return nil, fmt.Errorf("device %q is not listed in the config file", nameOrURL)
	}

	switch len(f.Devices) {
	case 0:
		return nil, fmt.Errorf("config file lists no devices")
	case 1:
		return &f.Devices[0], nil
	default:
		return nil, fmt.Errorf("config file lists %d devices; select one with -device", len(f.Devices))
	}
}

// buildDeviceConfig merges a device entry, the file defaults, and the flags.
// Flags win; defaults fill what neither provides.
func buildDeviceConfig(entry *deviceEntry, defaults *deviceDefaults) *scalarweb.Config {
	device := &scalarweb.Config{
		Address:      entry.Address,
		MAC:          entry.MAC,
		AccessCode:   entry.AccessCode,
		IRCCURL:      entry.IRCCURL,
		CommandsFile: entry.CommandsFile,
		Nickname:     entry.Nickname,
	}

	if config.MAC != "" {
		device.MAC = config.MAC
	}
	if config.AccessCode != "" {
		device.AccessCode = config.AccessCode
	}
	if config.IRCCURL != "" {
		device.IRCCURL = config.IRCCURL
	}
	if config.CommandsFile != "" {
		device.CommandsFile = config.CommandsFile
	}
	if config.Nickname != "" {
		device.Nickname = config.Nickname
	}

	if device.Nickname == "" {
		device.Nickname = defaults.Nickname
	}
	if device.Nickname == "" {
		device.Nickname = "scalar-controller"
	}
	if device.CommandsFile == "" && config.StateDir != "" {
		device.CommandsFile = "commands.map"
	}
	return device
}

// resolveTransport picks the transport name: flag, then device entry, then
// file defaults.
func resolveTransport(entry *deviceEntry, defaults *deviceDefaults) string {
	if config.Transport != "" {
		return config.Transport
	}
	if entry.Transport != "" {
		return entry.Transport
	}
	return defaults.Transport
}

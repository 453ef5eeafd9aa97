package catalog

import (
	"net/url"
	"sort"
	"strings"
)

// Command pairs a remote command name with its raw protocol value,
// an IRCC code on most devices.
type Command struct {
	Name  string
	Value string
}

// Catalog accumulates commands by name, first writer wins. Merge order
// matters: entries added from the device's own command list shadow
// duplicates added later from a secondary source.
type Catalog struct {
	names    map[string]struct{}
	commands []Command
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{names: make(map[string]struct{})}
}

// Add records a command. Returns false without recording when the name
// is already present or when name or value is blank.
func (c *Catalog) Add(cmd Command) bool {
	if cmd.Name == "" || cmd.Value == "" {
		return false
	}
	if _, exists := c.names[cmd.Name]; exists {
		return false
	}
	c.names[cmd.Name] = struct{}{}
	c.commands = append(c.commands, cmd)
	return true
}

// AddAll records commands in order under the first-wins rule.
func (c *Catalog) AddAll(cmds []Command) {
	for _, cmd := range cmds {
		c.Add(cmd)
	}
}

// Len returns the number of distinct commands.
func (c *Catalog) Len() int {
	return len(c.commands)
}

// Commands returns the commands in insertion order.
func (c *Catalog) Commands() []Command {
	return append([]Command(nil), c.commands...)
}

// Lines renders the catalog as "name=value" lines with percent-encoded
// values, sorted case-insensitively by name. An empty catalog yields an
// empty slice.
func (c *Catalog) Lines() []string {
	sorted := append([]Command(nil), c.commands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	lines := make([]string, 0, len(sorted))
	for _, cmd := range sorted {
		lines = append(lines, cmd.Name+"="+url.QueryEscape(cmd.Value))
	}
	return lines
}

package deploystand

import (
	"fmt"
	"strconv"
	"strings"
)

// VLAN tag bounds. Tags must fit the usable 802.1Q range.
const (
	MinVLANTag = 1
	MaxVLANTag = 4094
)

// DefaultNICModel is used when a network reference does not name a model and
// the device type has no opinion of its own.
const DefaultNICModel = "virtio"

// ReservedBridges are literal bridge names that pass through resolution
// untouched. They are operator-managed uplinks, never synthetic bridges.
var ReservedBridges = []string{"vmbr0"}

type (
	// DeviceType identifies the kind of appliance a machine is cloned as.
	// Resolution is device-type agnostic; only NIC parameter layout
	// consults it.
	DeviceType int

	// NetworkReference is a single network attachment request on a machine.
	// Exactly one of Alias or Bridge is set; Bridge is only set for
	// reserved passthrough names.
	NetworkReference struct {
		Alias    string `json:"alias,omitempty"`
		Bridge   string `json:"bridge,omitempty"`
		Tag      int    `json:"tag,omitempty"`
		Model    string `json:"model,omitempty"`
		Firewall bool   `json:"firewall"`
	}

	// Machine is a single virtual machine in a stand definition
	Machine struct {
		Name         string             `json:"name"`
		Type         DeviceType         `json:"device_type"`
		Linked       bool               `json:"linked"`
		TemplateNode string             `json:"template_node"`
		TemplateID   int                `json:"template_vmid"`
		Networks     []NetworkReference `json:"networks"`
	}
)

// Device types
const (
	DeviceGenericLinux DeviceType = iota
	DeviceEcoRouter
)

var deviceTypeNames = map[DeviceType]string{
	DeviceGenericLinux: "linux",
	DeviceEcoRouter:    "ecorouter",
}

// ParseDeviceType parses a device type name. An empty name means a generic
// linux guest.
func ParseDeviceType(name string) (DeviceType, error) {
	switch name {
	case "", "linux", "generic-linux":
		return DeviceGenericLinux, nil
	case "ecorouter", "eco-router":
		return DeviceEcoRouter, nil
	}
	return 0, fmt.Errorf("unknown device type %q", name)
}

func (d DeviceType) String() string {
	return deviceTypeNames[d]
}

// MarshalText makes device types round-trip through json and yaml as names
func (d DeviceType) MarshalText() ([]byte, error) {
	name, ok := deviceTypeNames[d]
	if !ok {
		return nil, fmt.Errorf("unknown device type %d", int(d))
	}
	return []byte(name), nil
}

// UnmarshalText parses a device type name
func (d *DeviceType) UnmarshalText(text []byte) error {
	parsed, err := ParseDeviceType(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NICModel is the default NIC model for guests of this device type.
func (d DeviceType) NICModel() string {
	if d == DeviceEcoRouter {
		return "vmxnet3"
	}
	return DefaultNICModel
}

// dataNICIndex is the interface index the first data NIC is placed at.
// EcoRouter appliances reserve net0 for their management interface and skip
// net1.
func (d DeviceType) dataNICIndex() int {
	if d == DeviceEcoRouter {
		return 2
	}
	return 0
}

// IsReservedBridge reports whether name is a literal passthrough bridge.
func IsReservedBridge(name string) bool {
	for _, reserved := range ReservedBridges {
		if name == reserved {
			return true
		}
	}
	return false
}

// Passthrough reports whether the reference names a reserved literal bridge
// instead of an alias.
func (r NetworkReference) Passthrough() bool {
	return r.Bridge != ""
}

// ParseNetworkEntry parses a stand definition network entry. An entry is
// either a reserved literal bridge name or an `alias[.tag]` string, e.g.
// `hq.100` for alias "hq" with VLAN tag 100. A dotted suffix that is not a
// number is kept as part of the alias name.
func ParseNetworkEntry(entry string) (NetworkReference, error) {
	ref := NetworkReference{Firewall: true}

	if entry == "" {
		return ref, &InvalidTopologyError{Entry: entry, Reason: "network entry has neither bridge nor alias"}
	}

	if IsReservedBridge(entry) {
		ref.Bridge = entry
		return ref, nil
	}

	alias := entry
	tag := 0
	if parts := strings.Split(entry, "."); len(parts) == 2 {
		if t, err := strconv.Atoi(parts[1]); err == nil {
			if t < MinVLANTag || t > MaxVLANTag {
				return ref, &InvalidTopologyError{Entry: entry, Reason: fmt.Sprintf("vlan tag %d out of range %d-%d", t, MinVLANTag, MaxVLANTag)}
			}
			alias = parts[0]
			tag = t
		}
	}

	if IsReservedBridge(alias) {
		return ref, &InvalidTopologyError{Entry: entry, Reason: "alias collides with reserved bridge " + alias}
	}

	ref.Alias = alias
	ref.Tag = tag
	return ref, nil
}

// validate checks a single reference, accepting ones built directly rather
// than parsed from an entry string.
func (r NetworkReference) validate(machine string) error {
	switch {
	case r.Alias == "" && r.Bridge == "":
		return &InvalidTopologyError{Machine: machine, Reason: "network entry has neither bridge nor alias"}
	case r.Alias != "" && r.Bridge != "":
		return &InvalidTopologyError{Machine: machine, Entry: r.Alias, Reason: "network entry has both bridge and alias"}
	case r.Bridge != "" && !IsReservedBridge(r.Bridge):
		return &InvalidTopologyError{Machine: machine, Entry: r.Bridge, Reason: "literal bridge is not in the reserved list"}
	case r.Bridge != "" && r.Tag != 0:
		return &InvalidTopologyError{Machine: machine, Entry: r.Bridge, Reason: "reserved bridge cannot carry a vlan tag"}
	case r.Alias != "" && IsReservedBridge(r.Alias):
		return &InvalidTopologyError{Machine: machine, Entry: r.Alias, Reason: "alias collides with reserved bridge " + r.Alias}
	case r.Tag != 0 && (r.Tag < MinVLANTag || r.Tag > MaxVLANTag):
		return &InvalidTopologyError{Machine: machine, Entry: r.Alias, Reason: fmt.Sprintf("vlan tag %d out of range %d-%d", r.Tag, MinVLANTag, MaxVLANTag)}
	}
	return nil
}

// Validate ensures a machine record has reasonable data
func (m *Machine) Validate() error {
	if m.Name == "" {
		return &InvalidTopologyError{Reason: "machine name is required"}
	}
	if _, ok := deviceTypeNames[m.Type]; !ok {
		return &InvalidTopologyError{Machine: m.Name, Reason: "unknown device type"}
	}
	for _, ref := range m.Networks {
		if err := ref.validate(m.Name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMachines validates every machine of a stand and checks name
// uniqueness across the set.
func ValidateMachines(machines []Machine) error {
	seen := make(map[string]bool, len(machines))
	for i := range machines {
		m := &machines[i]
		if err := m.Validate(); err != nil {
			return err
		}
		if seen[m.Name] {
			return &InvalidTopologyError{Machine: m.Name, Reason: "duplicate machine name"}
		}
		seen[m.Name] = true
	}
	return nil
}

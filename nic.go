package deploystand

import (
	"fmt"
	"strconv"
)

type (
	// NIC is one resolved network interface for a guest, ready to be turned
	// into a hypervisor config string.
	NIC struct {
		Bridge   string `json:"bridge"`
		Tag      int    `json:"tag,omitempty"`
		Model    string `json:"model"`
		Firewall bool   `json:"firewall"`
		LinkDown bool   `json:"link_down,omitempty"`
	}

	// NICs is an alias to a slice of NIC
	NICs []NIC
)

// ConfigString renders the NIC in the key=value form the hypervisor config
// API expects, e.g. "model=virtio,bridge=vmbr1000,tag=100,firewall=1".
func (n *NIC) ConfigString() string {
	s := "model=" + n.Model + ",bridge=" + n.Bridge
	if n.Tag != 0 {
		s += ",tag=" + strconv.Itoa(n.Tag)
	}
	if n.Firewall {
		s += ",firewall=1"
	}
	if n.LinkDown {
		s += ",link_down=1"
	}
	return s
}

// NICs builds the resolved interface list for one machine. Each reference
// keeps its own tag; a tag on one reference to an alias never leaks onto
// other references of the same alias. The reference order of the definition
// is preserved.
func (r *Resolution) NICs(name string) (NICs, error) {
	m, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("no machine %s in resolution", name)
	}

	nics := make(NICs, 0, len(m.Networks))
	for _, ref := range m.Networks {
		nic := NIC{
			Tag:      ref.Tag,
			Model:    ref.Model,
			Firewall: ref.Firewall,
		}
		if nic.Model == "" {
			nic.Model = m.Type.NICModel()
		}
		if ref.Passthrough() {
			nic.Bridge = ref.Bridge
		} else {
			nic.Bridge = r.aliases[ref.Alias].BridgeName()
		}
		nics = append(nics, nic)
	}
	return nics, nil
}

// NICParams maps the machine's interfaces to hypervisor config parameters
// keyed by interface name. Generic guests start at net0. EcoRouter
// appliances get a fixed management interface on net0, brought up link down
// on the default uplink, and their data interfaces from net2 onward.
func (r *Resolution) NICParams(name string) (map[string]string, error) {
	m, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("no machine %s in resolution", name)
	}

	nics, err := r.NICs(name)
	if err != nil {
		return nil, err
	}

	params := make(map[string]string, len(nics)+1)
	if m.Type == DeviceEcoRouter {
		mgmt := NIC{
			Bridge:   ReservedBridges[0],
			Model:    m.Type.NICModel(),
			LinkDown: true,
		}
		params["net0"] = mgmt.ConfigString()
	}

	index := m.Type.dataNICIndex()
	for i := range nics {
		params[fmt.Sprintf("net%d", index+i)] = nics[i].ConfigString()
	}
	return params, nil
}

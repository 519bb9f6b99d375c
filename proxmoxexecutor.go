package deploystand

import (
	"github.com/aleti000/deploy-stand/pkg/proxmox"
)

type (
	// ProxmoxExecutor is an Executor that communicates with a Proxmox VE
	// cluster API to perform actions relating to stand machines
	ProxmoxExecutor struct {
		client *proxmox.Client
	}
)

// NewProxmoxExecutor creates a ProxmoxExecutor over an established cluster
// API client
func NewProxmoxExecutor(client *proxmox.Client) *ProxmoxExecutor {
	return &ProxmoxExecutor{
		client: client,
	}
}

// Nodes lists the cluster node names
func (e *ProxmoxExecutor) Nodes() ([]string, error) {
	nodes, err := e.client.Nodes()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(nodes))
	for i, node := range nodes {
		names[i] = node.Name
	}
	return names, nil
}

// Bridges lists the bridges currently present on a node
func (e *ProxmoxExecutor) Bridges(node string) ([]BridgeState, error) {
	ifaces, err := e.client.Bridges(node)
	if err != nil {
		return nil, err
	}
	states := make([]BridgeState, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Type != "bridge" {
			continue
		}
		states = append(states, BridgeState{
			Name:      iface.Iface,
			VLANAware: bool(iface.VLANAware),
		})
	}
	return states, nil
}

// CreateBridge creates the planned bridge on its node
func (e *ProxmoxExecutor) CreateBridge(plan BridgePlan) error {
	return e.client.CreateBridge(plan.Node, plan.Bridge, plan.VLANAware)
}

// ReloadNetwork applies pending network changes on a node
func (e *ProxmoxExecutor) ReloadNetwork(node string) error {
	return e.client.ReloadNetwork(node)
}

// NextVMID reserves the next free vm identifier
func (e *ProxmoxExecutor) NextVMID() (int, error) {
	return e.client.NextVMID()
}

// Clone clones the machine's template to a new vm on the target node
func (e *ProxmoxExecutor) Clone(target string, m *Machine, vmid int, name, pool string) error {
	return e.client.CloneVM(m.TemplateNode, m.TemplateID, vmid, target, name, pool, m.Linked)
}

// ConfigureNICs sets the vm network interface config parameters
func (e *ProxmoxExecutor) ConfigureNICs(node string, vmid int, params map[string]string) error {
	return e.client.SetVMConfig(node, vmid, params)
}

// EnsurePool makes sure the resource pool exists
func (e *ProxmoxExecutor) EnsurePool(pool string) error {
	pools, err := e.client.Pools()
	if err != nil {
		return err
	}
	for _, p := range pools {
		if p.ID == pool {
			return nil
		}
	}
	return e.client.CreatePool(pool, "")
}

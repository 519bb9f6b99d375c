package deploystand

type (
	// Executor is an interface that allows for communication with a
	// hypervisor cluster. The deployer drives it; implementations talk to a
	// real cluster API or stub it out for testing.
	Executor interface {
		// Nodes lists the cluster node names
		Nodes() ([]string, error)
		// Bridges lists the bridges currently present on a node
		Bridges(node string) ([]BridgeState, error)
		// CreateBridge creates the planned bridge on its node
		CreateBridge(plan BridgePlan) error
		// ReloadNetwork applies pending network changes on a node
		ReloadNetwork(node string) error
		// NextVMID reserves the next free vm identifier
		NextVMID() (int, error)
		// Clone clones the machine's template to a new vm on the target node
		Clone(target string, m *Machine, vmid int, name, pool string) error
		// ConfigureNICs sets the vm network interface config parameters
		ConfigureNICs(node string, vmid int, params map[string]string) error
		// EnsurePool makes sure the resource pool exists
		EnsurePool(pool string) error
	}
)

package deploystand

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

type (
	// StubExecutor is an Executor with an in-memory cluster for testing
	StubExecutor struct {
		mutex       sync.Mutex
		rand        *rand.Rand
		failPercent int
		nodes       []string
		bridges     map[string][]BridgeState
		reloads     map[string]int
		nextVMID    int
		Clones      []StubClone
		NICConfigs  map[int]map[string]string
		Pools       []string
	}

	// StubClone records one clone call made against the stub
	StubClone struct {
		Target string
		Name   string
		VMID   int
		Pool   string
		Source *Machine
	}
)

// NewStubExecutor creates a StubExecutor over the given node names and
// initializes the random number generator for failures
func NewStubExecutor(failPercent int, nodes ...string) *StubExecutor {
	return &StubExecutor{
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		failPercent: failPercent,
		nodes:       nodes,
		bridges:     make(map[string][]BridgeState),
		reloads:     make(map[string]int),
		nextVMID:    100,
		NICConfigs:  make(map[int]map[string]string),
	}
}

// randomError simulates failure for a given percent of the time
func (e *StubExecutor) randomError() error {
	if e.rand.Intn(100) < e.failPercent {
		return errors.New("Random Error")
	}
	return nil
}

// SeedBridge places an existing bridge on a node before a test run
func (e *StubExecutor) SeedBridge(node string, state BridgeState) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.bridges[node] = append(e.bridges[node], state)
}

// Reloads returns how many times network changes were applied on a node
func (e *StubExecutor) Reloads(node string) int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.reloads[node]
}

// Nodes lists the stub cluster node names
func (e *StubExecutor) Nodes() ([]string, error) {
	if err := e.randomError(); err != nil {
		return nil, err
	}
	return e.nodes, nil
}

// Bridges lists the bridges currently present on a node
func (e *StubExecutor) Bridges(node string) ([]BridgeState, error) {
	if err := e.randomError(); err != nil {
		return nil, err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return append([]BridgeState(nil), e.bridges[node]...), nil
}

// CreateBridge creates the planned bridge on its node
func (e *StubExecutor) CreateBridge(plan BridgePlan) error {
	if err := e.randomError(); err != nil {
		return err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for _, b := range e.bridges[plan.Node] {
		if b.Name == plan.Bridge {
			return fmt.Errorf("bridge %s already exists on %s", plan.Bridge, plan.Node)
		}
	}
	e.bridges[plan.Node] = append(e.bridges[plan.Node], BridgeState{
		Name:      plan.Bridge,
		VLANAware: plan.VLANAware,
	})
	return nil
}

// ReloadNetwork applies pending network changes on a node
func (e *StubExecutor) ReloadNetwork(node string) error {
	if err := e.randomError(); err != nil {
		return err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.reloads[node]++
	return nil
}

// NextVMID reserves the next free vm identifier
func (e *StubExecutor) NextVMID() (int, error) {
	if err := e.randomError(); err != nil {
		return 0, err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	vmid := e.nextVMID
	e.nextVMID++
	return vmid, nil
}

// Clone clones the machine's template to a new vm on the target node
func (e *StubExecutor) Clone(target string, m *Machine, vmid int, name, pool string) error {
	if err := e.randomError(); err != nil {
		return err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.Clones = append(e.Clones, StubClone{
		Target: target,
		Name:   name,
		VMID:   vmid,
		Pool:   pool,
		Source: m,
	})
	return nil
}

// ConfigureNICs sets the vm network interface config parameters
func (e *StubExecutor) ConfigureNICs(node string, vmid int, params map[string]string) error {
	if err := e.randomError(); err != nil {
		return err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.NICConfigs[vmid] = params
	return nil
}

// EnsurePool makes sure the resource pool exists
func (e *StubExecutor) EnsurePool(pool string) error {
	if err := e.randomError(); err != nil {
		return err
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for _, p := range e.Pools {
		if p == pool {
			return nil
		}
	}
	e.Pools = append(e.Pools, pool)
	return nil
}

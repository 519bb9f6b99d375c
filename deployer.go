package deploystand

import (
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"
)

// DefaultDeployRetries is how many times a transient executor failure is
// retried before the deployment gives up.
const DefaultDeployRetries = 3

type (
	// Deployer drives an Executor to realize a resolved stand on the
	// cluster. Bridge provisioning runs in parallel across nodes and
	// serialized within a node; the network config of one node is a single
	// shared file.
	Deployer struct {
		executor Executor
		retries  uint64
	}
)

// NewDeployer creates a Deployer over an executor
func NewDeployer(executor Executor) *Deployer {
	return &Deployer{
		executor: executor,
		retries:  DefaultDeployRetries,
	}
}

// newBackOff builds the retry schedule for one executor operation
func (d *Deployer) newBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), d.retries)
}

// ensureBridges brings one node up to the plan. Bridges are checked against
// a single listing taken up front; an existing bridge whose vlan_aware flag
// disagrees aborts the node without touching it. The network config is
// reloaded once at the end, only if something was created.
func (d *Deployer) ensureBridges(node string, plans BridgePlans) error {
	existing := make(map[string]BridgeState)
	err := backoff.Retry(func() error {
		states, err := d.executor.Bridges(node)
		if err != nil {
			return err
		}
		for _, state := range states {
			existing[state.Name] = state
		}
		return nil
	}, d.newBackOff())
	if err != nil {
		return err
	}

	created := 0
	for _, plan := range plans {
		plan := plan
		if state, ok := existing[plan.Bridge]; ok {
			if err := plan.Check(state); err != nil {
				return err
			}
			continue
		}

		err := backoff.Retry(func() error {
			return d.executor.CreateBridge(plan)
		}, d.newBackOff())
		if err != nil {
			return err
		}
		created++
	}

	if created == 0 {
		return nil
	}
	return backoff.Retry(func() error {
		return d.executor.ReloadNetwork(node)
	}, d.newBackOff())
}

// ApplyBridgePlans ensures every planned bridge exists with the planned
// vlan_aware flag. Nodes are provisioned concurrently; plans for one node
// run in order. The first error per node is reported; other nodes still run
// to completion.
func (d *Deployer) ApplyBridgePlans(plans BridgePlans) error {
	byNode := make(map[string]BridgePlans)
	var nodes []string
	for _, plan := range plans {
		if _, ok := byNode[plan.Node]; !ok {
			nodes = append(nodes, plan.Node)
		}
		byNode[plan.Node] = append(byNode[plan.Node], plan)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(nodes))
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node string) {
			defer wg.Done()
			errs[i] = d.ensureBridges(node, byNode[node])
		}(i, node)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Deploy realizes a resolved stand: bridges first, then one clone and NIC
// configuration per machine in definition order. The returned map holds the
// vm identifier assigned to each machine that was created, including the
// ones created before a failure; nothing is rolled back.
func (d *Deployer) Deploy(stand *Stand, r *Resolution, placements map[string]string, pool string) (map[string]int, error) {
	plans, err := r.BridgePlans(placements)
	if err != nil {
		return nil, err
	}

	if pool != "" {
		err := backoff.Retry(func() error {
			return d.executor.EnsurePool(pool)
		}, d.newBackOff())
		if err != nil {
			return nil, err
		}
	}

	if err := d.ApplyBridgePlans(plans); err != nil {
		return nil, err
	}

	vmids := make(map[string]int, len(r.Machines()))
	for _, m := range r.Machines() {
		m := m
		target, ok := placements[m.Name]
		if !ok {
			return vmids, fmt.Errorf("no placement for machine %s", m.Name)
		}

		vmid, err := d.executor.NextVMID()
		if err != nil {
			return vmids, err
		}

		name := m.Name
		if stand.Name != "" {
			name = stand.Name + "-" + m.Name
		}
		err = backoff.Retry(func() error {
			return d.executor.Clone(target, &m, vmid, name, pool)
		}, d.newBackOff())
		if err != nil {
			return vmids, err
		}
		vmids[m.Name] = vmid

		params, err := r.NICParams(m.Name)
		if err != nil {
			return vmids, err
		}
		err = backoff.Retry(func() error {
			return d.executor.ConfigureNICs(target, vmid, params)
		}, d.newBackOff())
		if err != nil {
			return vmids, err
		}
	}

	return vmids, nil
}

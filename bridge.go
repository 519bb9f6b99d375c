package deploystand

import "fmt"

type (
	// BridgePlan is one bridge that must exist on one node before the
	// machines placed there can attach. A bridge is a per-node physical
	// object even though the alias it realizes is cluster-wide, so one
	// alias yields one plan per hosting node, all sharing the same name and
	// vlan_aware flag.
	BridgePlan struct {
		Node      string `json:"node"`
		Bridge    string `json:"bridge"`
		VLANAware bool   `json:"vlan_aware"`
	}

	// BridgeState is an existing bridge on a node, as reported by the
	// cluster.
	BridgeState struct {
		Name      string `json:"name"`
		VLANAware bool   `json:"vlan_aware"`
	}

	// BridgePlans is an alias to a slice of BridgePlan
	BridgePlans []BridgePlan
)

// BridgePlans derives the set of bridges to ensure per node, given the
// machine name to node placements chosen by the deployment orchestrator.
// Exactly one plan is emitted per (node, bridge) pair, in the deterministic
// order the pair is first needed by the machine list. Reserved passthrough
// bridges never generate a plan.
func (r *Resolution) BridgePlans(placements map[string]string) (BridgePlans, error) {
	seen := make(map[string]bool)
	var plans BridgePlans

	for i := range r.machines {
		m := &r.machines[i]
		for _, ref := range m.Networks {
			if ref.Passthrough() {
				continue
			}
			node, ok := placements[m.Name]
			if !ok {
				return nil, fmt.Errorf("no placement for machine %s", m.Name)
			}
			alias := r.aliases[ref.Alias]
			key := node + "/" + alias.BridgeName()
			if seen[key] {
				continue
			}
			seen[key] = true
			plans = append(plans, BridgePlan{
				Node:      node,
				Bridge:    alias.BridgeName(),
				VLANAware: alias.VLANAware,
			})
		}
	}

	return plans, nil
}

// Check verifies an existing bridge against the plan. Ensure semantics:
// creating is safe when the bridge is absent, but an existing bridge whose
// vlan_aware flag disagrees must not be silently reconfigured.
func (p *BridgePlan) Check(existing BridgeState) error {
	if existing.VLANAware != p.VLANAware {
		return &BridgeAwarenessMismatchError{
			Node:    p.Node,
			Bridge:  p.Bridge,
			Planned: p.VLANAware,
			Actual:  existing.VLANAware,
		}
	}
	return nil
}

package deploystand

import "fmt"

// PlaceMachines assigns each machine of a stand to a cluster node, round
// robin over the node list in definition order. The caller decides the node
// list and its order; passing the same list twice yields the same
// placements.
func PlaceMachines(machines []Machine, nodes []string) (map[string]string, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no nodes to place machines on")
	}

	placements := make(map[string]string, len(machines))
	for i := range machines {
		placements[machines[i].Name] = nodes[i%len(nodes)]
	}
	return placements, nil
}

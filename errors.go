package deploystand

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// InvalidTopologyError indicates a stand definition that cannot be
	// resolved: a malformed network entry, a bad VLAN tag, or a machine
	// record missing required fields. It is always fatal to the resolution
	// pass and is detected before any cluster mutation.
	InvalidTopologyError struct {
		Machine string
		Entry   string
		Reason  string
	}

	// ConflictingVlanUsageError indicates that more than one distinct VLAN
	// tag was observed for the same alias while the single-tag policy is in
	// effect.
	ConflictingVlanUsageError struct {
		Alias string
		Tags  []int
	}

	// BridgeAwarenessMismatchError indicates that a bridge already present
	// on a node disagrees with the planned vlan_aware flag. Reconfiguring a
	// live bridge is unsafe, so this is fatal for the node.
	BridgeAwarenessMismatchError struct {
		Node    string
		Bridge  string
		Planned bool
		Actual  bool
	}
)

func (e *InvalidTopologyError) Error() string {
	msg := "invalid topology"
	if e.Machine != "" {
		msg += ": machine " + e.Machine
	}
	if e.Entry != "" {
		msg += ": network entry " + strconv.Quote(e.Entry)
	}
	return msg + ": " + e.Reason
}

func (e *ConflictingVlanUsageError) Error() string {
	tags := make([]string, len(e.Tags))
	for i, tag := range e.Tags {
		tags[i] = strconv.Itoa(tag)
	}
	return fmt.Sprintf("conflicting vlan usage on alias %s: tags %s", e.Alias, strings.Join(tags, ", "))
}

func (e *BridgeAwarenessMismatchError) Error() string {
	return fmt.Sprintf("bridge %s on node %s: vlan_aware is %t, plan requires %t", e.Bridge, e.Node, e.Actual, e.Planned)
}

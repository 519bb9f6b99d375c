package deploystand

import "fmt"

// Synthetic bridge naming. Identifiers are allocated from BridgeIDBase up,
// which keeps them clear of operator-defined bridges below the reserved
// range.
const (
	BridgePrefix = "vmbr"
	BridgeIDBase = 1000
)

type (
	// TagPolicy decides how many distinct VLAN tags a single alias may
	// carry across a stand.
	TagPolicy int

	// NetworkAlias is a user-chosen name standing for a synthetic bridge,
	// independent of any specific node. Derived fields are populated during
	// resolution and immutable afterwards.
	NetworkAlias struct {
		Name      string `json:"name"`
		BridgeID  int    `json:"bridge_id"`
		Tags      []int  `json:"tags,omitempty"`
		VLANAware bool   `json:"vlan_aware"`
	}

	// Resolution owns the alias map and the bridge identifier counter for
	// the duration of one resolution pass. There is no ambient global
	// state; resolving the same stand twice yields identical results.
	Resolution struct {
		machines []Machine
		byName   map[string]*Machine
		aliases  map[string]*NetworkAlias
		order    []string
		nextID   int
	}
)

// Tag policies. TagPolicyTrunk is the default: a VLAN-aware bridge trunks
// every tag, so distinct tags on one alias are fine. TagPolicySingleTag
// restricts each alias to a single distinct tag for deployments whose
// switching model cannot trunk.
const (
	TagPolicyTrunk TagPolicy = iota
	TagPolicySingleTag
)

// BridgeName is the per-node name of the synthetic bridge realizing this
// alias.
func (a *NetworkAlias) BridgeName() string {
	return fmt.Sprintf("%s%d", BridgePrefix, a.BridgeID)
}

// Resolve validates the stand topology and groups its network references by
// alias. Bridge identifiers are assigned from a counter seeded at
// BridgeIDBase, in the order aliases are first encountered during a single
// left-to-right scan of the machine list. An alias is VLAN-aware iff at
// least one reference to it anywhere in the stand carries a tag; mixed
// tagged/untagged use of one alias is expected and valid.
func (s *Stand) Resolve(policy TagPolicy) (*Resolution, error) {
	if err := ValidateMachines(s.Machines); err != nil {
		return nil, err
	}

	r := &Resolution{
		machines: s.Machines,
		byName:   make(map[string]*Machine, len(s.Machines)),
		aliases:  make(map[string]*NetworkAlias),
		nextID:   BridgeIDBase,
	}

	for i := range r.machines {
		m := &r.machines[i]
		r.byName[m.Name] = m
		for _, ref := range m.Networks {
			if ref.Passthrough() {
				continue
			}
			alias, ok := r.aliases[ref.Alias]
			if !ok {
				alias = &NetworkAlias{Name: ref.Alias, BridgeID: r.nextID}
				r.nextID++
				r.aliases[ref.Alias] = alias
				r.order = append(r.order, ref.Alias)
			}
			if ref.Tag == 0 {
				continue
			}
			alias.VLANAware = true
			if !containsTag(alias.Tags, ref.Tag) {
				alias.Tags = append(alias.Tags, ref.Tag)
			}
		}
	}

	if policy == TagPolicySingleTag {
		for _, name := range r.order {
			if alias := r.aliases[name]; len(alias.Tags) > 1 {
				return nil, &ConflictingVlanUsageError{Alias: name, Tags: alias.Tags}
			}
		}
	}

	return r, nil
}

// Alias looks up a resolved alias by name.
func (r *Resolution) Alias(name string) (*NetworkAlias, bool) {
	alias, ok := r.aliases[name]
	return alias, ok
}

// Aliases returns the resolved aliases in first-seen order.
func (r *Resolution) Aliases() []*NetworkAlias {
	aliases := make([]*NetworkAlias, len(r.order))
	for i, name := range r.order {
		aliases[i] = r.aliases[name]
	}
	return aliases
}

// Machine looks up a machine of the resolved stand by name.
func (r *Resolution) Machine(name string) (*Machine, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// Machines returns the machines of the resolved stand in definition order.
func (r *Resolution) Machines() []Machine {
	return r.machines
}

func containsTag(tags []int, tag int) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

package deploystand_test

import (
	"testing"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ResolutionSuite struct {
	suite.Suite
}

func TestResolution(t *testing.T) {
	suite.Run(t, new(ResolutionSuite))
}

func (s *ResolutionSuite) TestAliasAllocation() {
	stand := newStand(
		newMachine("r1", deploystand.DeviceEcoRouter, "hq.100", "branch.200"),
		newMachine("pc1", deploystand.DeviceGenericLinux, "hq.100"),
		newMachine("pc2", deploystand.DeviceGenericLinux, "dmz"),
	)

	r, err := stand.Resolve(deploystand.TagPolicyTrunk)
	s.Require().NoError(err)

	aliases := r.Aliases()
	s.Require().Len(aliases, 3)
	s.Equal("hq", aliases[0].Name, "first seen alias gets first id")
	s.Equal(1000, aliases[0].BridgeID)
	s.Equal("vmbr1000", aliases[0].BridgeName())
	s.Equal("branch", aliases[1].Name)
	s.Equal("vmbr1001", aliases[1].BridgeName())
	s.Equal("dmz", aliases[2].Name)
	s.Equal("vmbr1002", aliases[2].BridgeName())
}

func (s *ResolutionSuite) TestSharedAliasGetsOneBridge() {
	stand := newStand(
		newMachine("pc1", deploystand.DeviceGenericLinux, "hq"),
		newMachine("pc2", deploystand.DeviceGenericLinux, "hq"),
		newMachine("pc3", deploystand.DeviceGenericLinux, "hq"),
	)

	r, err := stand.Resolve(deploystand.TagPolicyTrunk)
	s.Require().NoError(err)
	s.Len(r.Aliases(), 1, "one alias however many references")
}

func (s *ResolutionSuite) TestVLANAwareness() {
	stand := newStand(
		newMachine("r1", deploystand.DeviceGenericLinux, "hq.100", "flat"),
		newMachine("pc1", deploystand.DeviceGenericLinux, "hq"),
	)

	r, err := stand.Resolve(deploystand.TagPolicyTrunk)
	s.Require().NoError(err)

	hq, ok := r.Alias("hq")
	s.Require().True(ok)
	s.True(hq.VLANAware, "any tagged reference makes the alias vlan aware")
	s.Equal([]int{100}, hq.Tags)

	flat, ok := r.Alias("flat")
	s.Require().True(ok)
	s.False(flat.VLANAware, "untagged only alias stays plain")
	s.Empty(flat.Tags)
}

func (s *ResolutionSuite) TestTagUnion() {
	stand := newStand(
		newMachine("r1", deploystand.DeviceGenericLinux, "hq.200", "hq.100"),
		newMachine("r2", deploystand.DeviceGenericLinux, "hq.100", "hq.300"),
	)

	r, err := stand.Resolve(deploystand.TagPolicyTrunk)
	s.Require().NoError(err)

	hq, ok := r.Alias("hq")
	s.Require().True(ok)
	s.Equal([]int{200, 100, 300}, hq.Tags, "distinct tags in first observed order")
}

func (s *ResolutionSuite) TestSingleTagPolicy() {
	conflicted := newStand(
		newMachine("r1", deploystand.DeviceGenericLinux, "hq.100"),
		newMachine("r2", deploystand.DeviceGenericLinux, "hq.200"),
	)

	_, err := conflicted.Resolve(deploystand.TagPolicyTrunk)
	s.NoError(err, "trunk policy allows multiple tags")

	_, err = conflicted.Resolve(deploystand.TagPolicySingleTag)
	s.Error(err, "single tag policy rejects multiple tags")
	var conflictErr *deploystand.ConflictingVlanUsageError
	s.Require().ErrorAs(err, &conflictErr)
	s.Equal("hq", conflictErr.Alias)
	s.Equal([]int{100, 200}, conflictErr.Tags)

	repeated := newStand(
		newMachine("r1", deploystand.DeviceGenericLinux, "hq.100"),
		newMachine("r2", deploystand.DeviceGenericLinux, "hq.100"),
	)
	_, err = repeated.Resolve(deploystand.TagPolicySingleTag)
	s.NoError(err, "same tag twice is not a conflict")
}

func (s *ResolutionSuite) TestReservedPassthrough() {
	stand := newStand(
		newMachine("r1", deploystand.DeviceGenericLinux, "vmbr0", "hq"),
	)

	r, err := stand.Resolve(deploystand.TagPolicyTrunk)
	s.Require().NoError(err)
	s.Len(r.Aliases(), 1, "reserved bridges never become aliases")
	_, ok := r.Alias("vmbr0")
	s.False(ok)
}

func (s *ResolutionSuite) TestDeterminism() {
	build := func() *deploystand.Stand {
		return newStand(
			newMachine("r1", deploystand.DeviceEcoRouter, "hq.100", "branch.200", "dmz"),
			newMachine("pc1", deploystand.DeviceGenericLinux, "branch"),
			newMachine("pc2", deploystand.DeviceGenericLinux, "dmz", "hq.300"),
		)
	}

	first, err := build().Resolve(deploystand.TagPolicyTrunk)
	s.Require().NoError(err)
	second, err := build().Resolve(deploystand.TagPolicyTrunk)
	s.Require().NoError(err)

	s.True(assert.ObjectsAreEqual(first.Aliases(), second.Aliases()),
		"same definition resolves identically")
}

func (s *ResolutionSuite) TestInvalidTopology() {
	stand := newStand(
		newMachine("pc1", deploystand.DeviceGenericLinux, "hq"),
		newMachine("pc1", deploystand.DeviceGenericLinux, "hq"),
	)

	_, err := stand.Resolve(deploystand.TagPolicyTrunk)
	s.Error(err, "duplicate machine names should fail resolution")
	var topoErr *deploystand.InvalidTopologyError
	s.ErrorAs(err, &topoErr)
}

func (s *ResolutionSuite) TestMachineLookup() {
	stand := newStand(
		newMachine("pc1", deploystand.DeviceGenericLinux, "hq"),
	)

	r, err := stand.Resolve(deploystand.TagPolicyTrunk)
	s.Require().NoError(err)

	m, ok := r.Machine("pc1")
	s.True(ok)
	s.Equal("pc1", m.Name)

	_, ok = r.Machine("nope")
	s.False(ok)

	s.Len(r.Machines(), 1)
}

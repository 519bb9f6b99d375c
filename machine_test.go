package deploystand_test

import (
	"testing"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/stretchr/testify/suite"
)

type MachineSuite struct {
	suite.Suite
}

func TestMachine(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) TestParseNetworkEntry() {
	tests := []struct {
		description string
		entry       string
		alias       string
		bridge      string
		tag         int
		expectedErr bool
	}{
		{"empty entry", "", "", "", 0, true},
		{"reserved bridge", "vmbr0", "", "vmbr0", 0, false},
		{"plain alias", "hq", "hq", "", 0, false},
		{"alias with tag", "hq.100", "hq", "", 100, false},
		{"non numeric suffix", "hq.edge", "hq.edge", "", 0, false},
		{"tag zero", "hq.0", "hq", "", 0, true},
		{"tag above range", "hq.4095", "hq", "", 0, true},
		{"tag at max", "hq.4094", "hq", "", 4094, false},
		{"tag at min", "hq.1", "hq", "", 1, false},
		{"reserved name as alias", "vmbr0.100", "", "", 0, true},
	}

	for _, test := range tests {
		msg := testMsgFunc(test.description)
		ref, err := deploystand.ParseNetworkEntry(test.entry)
		if test.expectedErr {
			s.Error(err, msg("should be invalid"))
			var topoErr *deploystand.InvalidTopologyError
			s.ErrorAs(err, &topoErr, msg("should be a topology error"))
		} else {
			s.NoError(err, msg("should be valid"))
			s.Equal(test.alias, ref.Alias, msg("alias should match"))
			s.Equal(test.bridge, ref.Bridge, msg("bridge should match"))
			s.Equal(test.tag, ref.Tag, msg("tag should match"))
			s.True(ref.Firewall, msg("firewall should default on"))
		}
	}
}

func (s *MachineSuite) TestParseDeviceType() {
	tests := []struct {
		description string
		name        string
		expected    deploystand.DeviceType
		expectedErr bool
	}{
		{"empty name", "", deploystand.DeviceGenericLinux, false},
		{"linux", "linux", deploystand.DeviceGenericLinux, false},
		{"generic-linux", "generic-linux", deploystand.DeviceGenericLinux, false},
		{"ecorouter", "ecorouter", deploystand.DeviceEcoRouter, false},
		{"eco-router", "eco-router", deploystand.DeviceEcoRouter, false},
		{"unknown", "cisco", 0, true},
	}

	for _, test := range tests {
		msg := testMsgFunc(test.description)
		d, err := deploystand.ParseDeviceType(test.name)
		if test.expectedErr {
			s.Error(err, msg("should be invalid"))
		} else {
			s.NoError(err, msg("should be valid"))
			s.Equal(test.expected, d, msg("type should match"))
		}
	}
}

func (s *MachineSuite) TestDeviceTypeNICModel() {
	s.Equal("virtio", deploystand.DeviceGenericLinux.NICModel())
	s.Equal("vmxnet3", deploystand.DeviceEcoRouter.NICModel())
}

func (s *MachineSuite) TestDeviceTypeMarshalText() {
	buf, err := deploystand.DeviceEcoRouter.MarshalText()
	s.NoError(err)
	s.Equal("ecorouter", string(buf))

	var d deploystand.DeviceType
	s.NoError(d.UnmarshalText([]byte("ecorouter")))
	s.Equal(deploystand.DeviceEcoRouter, d)
	s.Error(d.UnmarshalText([]byte("cisco")))
}

func (s *MachineSuite) TestValidate() {
	tests := []struct {
		description string
		machine     deploystand.Machine
		expectedErr bool
	}{
		{"missing name", deploystand.Machine{}, true},
		{"valid machine", newMachine("pc1", deploystand.DeviceGenericLinux, "hq"), false},
		{"unknown device type", deploystand.Machine{Name: "pc1", Type: deploystand.DeviceType(42)}, true},
		{"reference without alias or bridge", deploystand.Machine{
			Name:     "pc1",
			Networks: []deploystand.NetworkReference{{}},
		}, true},
		{"reference with alias and bridge", deploystand.Machine{
			Name:     "pc1",
			Networks: []deploystand.NetworkReference{{Alias: "hq", Bridge: "vmbr0"}},
		}, true},
		{"non reserved literal bridge", deploystand.Machine{
			Name:     "pc1",
			Networks: []deploystand.NetworkReference{{Bridge: "vmbr5"}},
		}, true},
		{"tag on reserved bridge", deploystand.Machine{
			Name:     "pc1",
			Networks: []deploystand.NetworkReference{{Bridge: "vmbr0", Tag: 100}},
		}, true},
		{"tag out of range", deploystand.Machine{
			Name:     "pc1",
			Networks: []deploystand.NetworkReference{{Alias: "hq", Tag: 5000}},
		}, true},
	}

	for _, test := range tests {
		msg := testMsgFunc(test.description)
		err := test.machine.Validate()
		if test.expectedErr {
			s.Error(err, msg("should be invalid"))
		} else {
			s.NoError(err, msg("should be valid"))
		}
	}
}

func (s *MachineSuite) TestParseStandDefinition() {
	machines, err := deploystand.ParseStandDefinition([]byte(`
- name: r1
  device_type: ecorouter
  template_node: node1
  template_vmid: 9000
  networks: [vmbr0, hq.100]
- name: pc1
  template_node: node1
  template_vmid: 9001
  linked: true
  networks: [hq.100]
`))
	s.Require().NoError(err)
	s.Require().Len(machines, 2)

	s.Equal("r1", machines[0].Name)
	s.Equal(deploystand.DeviceEcoRouter, machines[0].Type)
	s.Equal("node1", machines[0].TemplateNode)
	s.Equal(9000, machines[0].TemplateID)
	s.Require().Len(machines[0].Networks, 2)
	s.Equal("vmbr0", machines[0].Networks[0].Bridge)
	s.Equal("hq", machines[0].Networks[1].Alias)
	s.Equal(100, machines[0].Networks[1].Tag)

	s.Equal(deploystand.DeviceGenericLinux, machines[1].Type)
	s.True(machines[1].Linked)

	_, err = deploystand.ParseStandDefinition([]byte(`not a list`))
	s.Error(err, "non list definition should fail")

	_, err = deploystand.ParseStandDefinition([]byte(`
- name: r1
  device_type: cisco
`))
	s.Error(err, "unknown device type should fail")

	_, err = deploystand.ParseStandDefinition([]byte(`
- name: r1
  networks: [hq.9999]
`))
	s.Error(err, "bad vlan tag should fail")
}

func (s *MachineSuite) TestValidateMachines() {
	machines := []deploystand.Machine{
		newMachine("pc1", deploystand.DeviceGenericLinux, "hq"),
		newMachine("pc2", deploystand.DeviceGenericLinux, "hq"),
	}
	s.NoError(deploystand.ValidateMachines(machines))

	machines = append(machines, newMachine("pc1", deploystand.DeviceGenericLinux, "hq"))
	err := deploystand.ValidateMachines(machines)
	s.Error(err, "duplicate names should be invalid")
}

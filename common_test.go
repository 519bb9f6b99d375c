package deploystand_test

import (
	"fmt"

	deploystand "github.com/aleti000/deploy-stand"
)

func testMsgFunc(prefix string) func(...interface{}) string {
	return func(val ...interface{}) string {
		if len(val) == 0 {
			return prefix
		}
		msgPrefix := prefix + " : "
		if len(val) == 1 {
			return msgPrefix + val[0].(string)
		} else {
			return msgPrefix + fmt.Sprintf(val[0].(string), val[1:]...)
		}
	}
}

// newMachine builds a machine from network entry strings
func newMachine(name string, deviceType deploystand.DeviceType, entries ...string) deploystand.Machine {
	m := deploystand.Machine{
		Name:         name,
		Type:         deviceType,
		TemplateNode: "node1",
		TemplateID:   9000,
	}
	for _, entry := range entries {
		ref, err := deploystand.ParseNetworkEntry(entry)
		if err != nil {
			panic(err)
		}
		m.Networks = append(m.Networks, ref)
	}
	return m
}

// newStand builds an unsaved stand around a machine list
func newStand(machines ...deploystand.Machine) *deploystand.Stand {
	return &deploystand.Stand{Machines: machines}
}

package deploystand

import (
	"encoding/json"
	"path/filepath"

	"github.com/aleti000/deploy-stand/pkg/kv"
	"github.com/pborman/uuid"
	"gopkg.in/yaml.v3"
)

var (
	// StandPath is the path in the config store
	StandPath = "deploystand/stands/"
)

type (
	// Stand is a named set of machines deployed together for one student.
	// The machine list is the topology; everything derived from it (aliases,
	// bridges, NIC parameters) is computed per resolution and never stored.
	Stand struct {
		context       *Context
		modifiedIndex uint64
		ID            string            `json:"id"`
		Name          string            `json:"name"`
		Metadata      map[string]string `json:"metadata"`
		Machines      []Machine         `json:"machines"`
	}

	// Stands is an alias to a slice of *Stand
	Stands []*Stand

	// machineDoc is the yaml shape of one machine in a stand definition
	// file, with networks as entry strings.
	machineDoc struct {
		Name         string   `yaml:"name"`
		DeviceType   string   `yaml:"device_type"`
		Linked       bool     `yaml:"linked"`
		TemplateNode string   `yaml:"template_node"`
		TemplateID   int      `yaml:"template_vmid"`
		Networks     []string `yaml:"networks"`
	}
)

// NewStand creates a new blank Stand
func (c *Context) NewStand() *Stand {
	s := &Stand{
		context:  c,
		ID:       uuid.New(),
		Metadata: make(map[string]string),
	}

	return s
}

// Stand fetches a Stand from the config store
func (c *Context) Stand(id string) (*Stand, error) {
	s := &Stand{
		context: c,
		ID:      id,
	}

	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// key is a helper to generate the config store key
func (s *Stand) key() string {
	return filepath.Join(StandPath, s.ID, "metadata")
}

// Refresh reloads from the data store
func (s *Stand) Refresh() error {
	value, err := s.context.kv.Get(s.key())
	if err != nil {
		return err
	}

	if err := json.Unmarshal(value.Data, &s); err != nil {
		return err
	}
	s.modifiedIndex = value.Index

	return nil
}

// Validate ensures a Stand has reasonable data
func (s *Stand) Validate() error {
	if s.ID == "" {
		return &InvalidTopologyError{Reason: "stand ID is required"}
	}
	if uuid.Parse(s.ID) == nil {
		return &InvalidTopologyError{Reason: "stand ID must be uuid"}
	}
	return ValidateMachines(s.Machines)
}

// Save persists the Stand to the data store
func (s *Stand) Save() error {
	if err := s.Validate(); err != nil {
		return err
	}

	v, err := json.Marshal(s)
	if err != nil {
		return err
	}

	index, err := s.context.kv.Update(s.key(), kv.Value{Data: v, Index: s.modifiedIndex})
	if err != nil {
		return err
	}

	s.modifiedIndex = index
	return nil
}

// Destroy removes the Stand from the data store
func (s *Stand) Destroy() error {
	if s.modifiedIndex == 0 {
		// it has not been saved
		return nil
	}
	return s.context.kv.Delete(filepath.Join(StandPath, s.ID), true)
}

// ForEachStand will run f on each Stand. It will stop iteration if f returns
// an error.
func (c *Context) ForEachStand(f func(*Stand) error) error {
	keys, err := c.kv.Keys(StandPath)
	if err != nil {
		return err
	}
	for _, k := range keys {
		s, err := c.Stand(filepath.Base(k))
		if err != nil {
			return err
		}

		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// ParseStandDefinition parses a yaml stand definition into a machine list.
// Network entries use the `alias[.tag]` form or a reserved literal bridge
// name.
func ParseStandDefinition(data []byte) ([]Machine, error) {
	var docs []machineDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, err
	}

	machines := make([]Machine, 0, len(docs))
	for _, doc := range docs {
		deviceType, err := ParseDeviceType(doc.DeviceType)
		if err != nil {
			return nil, &InvalidTopologyError{Machine: doc.Name, Reason: err.Error()}
		}

		m := Machine{
			Name:         doc.Name,
			Type:         deviceType,
			Linked:       doc.Linked,
			TemplateNode: doc.TemplateNode,
			TemplateID:   doc.TemplateID,
			Networks:     make([]NetworkReference, 0, len(doc.Networks)),
		}
		for _, entry := range doc.Networks {
			ref, err := ParseNetworkEntry(entry)
			if err != nil {
				if terr, ok := err.(*InvalidTopologyError); ok {
					terr.Machine = doc.Name
				}
				return nil, err
			}
			m.Networks = append(m.Networks, ref)
		}
		machines = append(machines, m)
	}

	if err := ValidateMachines(machines); err != nil {
		return nil, err
	}
	return machines, nil
}

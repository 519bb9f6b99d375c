package deploystand

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/aleti000/deploy-stand/pkg/kv"
	"github.com/pborman/uuid"
)

var (
	// DeploymentPath is the path in the config store
	DeploymentPath = "deploystand/deployments/"
)

// Deployment Status
const (
	DeploymentStatusNew     = "new"
	DeploymentStatusWorking = "working"
	DeploymentStatusDone    = "done"
	DeploymentStatusError   = "error"
)

type (
	// Deployment is one attempt to realize a stand on the cluster. It
	// records the chosen placements so the bridge plan derived from them can
	// be reproduced afterwards.
	Deployment struct {
		context       *Context
		modifiedIndex uint64
		ID            string            `json:"id"`
		StandID       string            `json:"stand"`
		Pool          string            `json:"pool,omitempty"`
		Placements    map[string]string `json:"placements"`
		VMIDs         map[string]int    `json:"vmids,omitempty"`
		Status        string            `json:"status"`
		Error         string            `json:"error,omitempty"`
		StartedAt     time.Time         `json:"started_at,omitempty"`
		FinishedAt    time.Time         `json:"finished_at,omitempty"`
	}

	// Deployments is an alias to a slice of *Deployment
	Deployments []*Deployment
)

// NewDeployment creates a new blank Deployment
func (c *Context) NewDeployment() *Deployment {
	d := &Deployment{
		context:    c,
		ID:         uuid.New(),
		Status:     DeploymentStatusNew,
		Placements: make(map[string]string),
	}

	return d
}

// Deployment fetches a Deployment from the config store
func (c *Context) Deployment(id string) (*Deployment, error) {
	d := &Deployment{
		context: c,
		ID:      id,
	}

	if err := d.Refresh(); err != nil {
		return nil, err
	}
	return d, nil
}

// key is a helper to generate the config store key
func (d *Deployment) key() string {
	return filepath.Join(DeploymentPath, d.ID, "metadata")
}

// Refresh reloads from the data store
func (d *Deployment) Refresh() error {
	value, err := d.context.kv.Get(d.key())
	if err != nil {
		return err
	}

	if err := json.Unmarshal(value.Data, &d); err != nil {
		return err
	}
	d.modifiedIndex = value.Index

	return nil
}

// Validate ensures required fields are populated
func (d *Deployment) Validate() error {
	if d.ID == "" {
		return errors.New("ID is required")
	}
	if d.StandID == "" {
		return errors.New("Stand is required")
	}
	if d.Status == "" {
		return errors.New("Status is required")
	}
	return nil
}

// Save persists the Deployment to the data store
func (d *Deployment) Save() error {
	if err := d.Validate(); err != nil {
		return err
	}

	v, err := json.Marshal(d)
	if err != nil {
		return err
	}

	index, err := d.context.kv.Update(d.key(), kv.Value{Data: v, Index: d.modifiedIndex})
	if err != nil {
		return err
	}

	d.modifiedIndex = index
	return nil
}

// Destroy removes the Deployment from the data store
func (d *Deployment) Destroy() error {
	if d.modifiedIndex == 0 {
		// it has not been saved
		return nil
	}
	return d.context.kv.Delete(filepath.Join(DeploymentPath, d.ID), true)
}

// Stand fetches the stand this deployment realizes
func (d *Deployment) Stand() (*Stand, error) {
	return d.context.Stand(d.StandID)
}

// ForEachDeployment will run f on each Deployment. It will stop iteration if
// f returns an error.
func (c *Context) ForEachDeployment(f func(*Deployment) error) error {
	keys, err := c.kv.Keys(DeploymentPath)
	if err != nil {
		return err
	}
	for _, k := range keys {
		d, err := c.Deployment(filepath.Base(k))
		if err != nil {
			return err
		}

		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

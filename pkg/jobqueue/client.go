// Package jobqueue manages the deployment job queue. Jobs persist in the kv
// while beanstalk carries the work signal, so a lost queue item is
// recoverable from the job record.
package jobqueue

import (
	"errors"
	"time"

	"github.com/aleti000/deploy-stand/pkg/kv"
	"github.com/kr/beanstalk"
)

// Beanstalk parameters
const (
	priority     = uint32(0)
	delay        = 5 * time.Second
	ttr          = 5 * time.Second
	timeout      = 10 * time.Hour
	reserveDelay = 5 * time.Second
)

// Client is for interacting with the job queue
type Client struct {
	beanConn *beanstalk.Conn
	kv       kv.KV
	tubes    *tubes
}

// NewClient creates a new Client and initializes the beanstalk connection +
// tubes
func NewClient(bstalk string, k kv.KV) (*Client, error) {
	conn, err := beanstalk.Dial("tcp", bstalk)
	if err != nil {
		return nil, err
	}

	client := &Client{
		beanConn: conn,
		kv:       k,
		tubes:    newTubes(conn),
	}
	return client, nil
}

// AddTask creates a new task in the deploy beanstalk queue
func (c *Client) AddTask(j *Job) (uint64, error) {
	if j == nil || j.ID == "" {
		return 0, errors.New("job required")
	}
	id, err := c.tubes.deploy.Put(j.ID)
	return id, err
}

// DeleteTask removes a task from beanstalk by id
func (c *Client) DeleteTask(id uint64) error {
	return c.beanConn.Delete(id)
}

// NextDeployTask returns the next task from the deploy tube
func (c *Client) NextDeployTask() (*Task, error) {
	task, err := c.nextTask(c.tubes.deploy)
	return task, err
}

// nextTask returns the next task from a tubeSet and loads the Job and
// Deployment
func (c *Client) nextTask(ts *tubeSet) (*Task, error) {
	id, body, err := ts.Reserve()
	if err != nil {
		return nil, err
	}

	task := &Task{
		ID:     id,
		JobID:  body,
		client: c,
	}

	if err := task.RefreshJob(); err != nil {
		return task, err
	}
	if err := task.RefreshDeployment(); err != nil {
		return task, err
	}

	return task, err
}

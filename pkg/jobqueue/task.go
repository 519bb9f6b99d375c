package jobqueue

import (
	"errors"

	deploystand "github.com/aleti000/deploy-stand"
)

// Task is a "helper" struct to pull together information from beanstalk and
// the kv
type Task struct {
	ID         uint64 // id from beanstalkd
	JobID      string // body from beanstalkd
	Job        *Job
	Deployment *deploystand.Deployment
	client     *Client
}

// Delete removes a task from beanstalk
func (t *Task) Delete() error {
	return t.client.beanConn.Delete(t.ID)
}

// Release releases a task back to beanstalk
func (t *Task) Release() error {
	return t.client.beanConn.Release(t.ID, priority, delay)
}

// RefreshJob reloads a task's job information
func (t *Task) RefreshJob() error {
	job, err := t.client.Job(t.JobID)
	if err != nil {
		return err
	}
	t.Job = job
	return nil
}

// RefreshDeployment reloads a task's deployment information
func (t *Task) RefreshDeployment() error {
	if t.Job == nil {
		return errors.New("trying to load deployment from nil job")
	}
	if t.Job.Deployment == "" {
		return errors.New("job missing deployment id")
	}
	ctx := deploystand.NewContext(t.client.kv)
	deployment, err := ctx.Deployment(t.Job.Deployment)
	if err != nil {
		return err
	}
	t.Deployment = deployment
	return nil
}

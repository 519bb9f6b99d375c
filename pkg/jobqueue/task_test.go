package jobqueue_test

import (
	"testing"

	"github.com/aleti000/deploy-stand/pkg/jobqueue"
	"github.com/stretchr/testify/suite"
)

func TestTask(t *testing.T) {
	suite.Run(t, new(TaskSuite))
}

type TaskSuite struct {
	JobQCommonSuite
}

func (s *TaskSuite) nextTask() *jobqueue.Task {
	job := s.newJob()
	_, err := s.Client.AddTask(job)
	s.Require().NoError(err)

	task, err := s.Client.NextDeployTask()
	s.Require().NoError(err)
	return task
}

func (s *TaskSuite) TestDelete() {
	task := s.nextTask()

	s.NoError(task.Delete(), "deleting a reserved task should succeed")
	s.Error(task.Delete(), "deleting twice should fail")
}

func (s *TaskSuite) TestRelease() {
	task := s.nextTask()

	s.NoError(task.Release(), "releasing a reserved task should succeed")
	s.Error(task.Release(), "releasing twice should fail")

	task2, err := s.Client.NextDeployTask()
	s.Require().NoError(err)
	s.Equal(task.ID, task2.ID, "released task should come back around")
	s.NoError(task2.Delete())
}

func (s *TaskSuite) TestRefreshJob() {
	task := s.nextTask()
	defer func() { _ = task.Delete() }()

	task.Job.Status = jobqueue.JobStatusWorking
	s.Require().NoError(task.Job.Save())

	task.Job = nil
	s.NoError(task.RefreshJob(), "refresh should succeed")
	s.Require().NotNil(task.Job)
	s.Equal(jobqueue.JobStatusWorking, task.Job.Status, "refresh should pull new data")

	task.JobID = "nonexistant"
	task.Job = nil
	s.Error(task.RefreshJob(), "unknown job id should fail")
}

func (s *TaskSuite) TestRefreshDeployment() {
	task := s.nextTask()
	defer func() { _ = task.Delete() }()

	task.Deployment = nil
	s.NoError(task.RefreshDeployment(), "refresh should succeed")
	s.Require().NotNil(task.Deployment)
	s.Equal(task.Job.Deployment, task.Deployment.ID)

	task.Job.Deployment = ""
	s.Error(task.RefreshDeployment(), "job without deployment id should fail")

	task.Job = nil
	s.Error(task.RefreshDeployment(), "nil job should fail")
}

package jobqueue_test

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/aleti000/deploy-stand/pkg/jobqueue"
	"github.com/aleti000/deploy-stand/pkg/kv"
	"github.com/pborman/uuid"
	"github.com/stretchr/testify/suite"
)

type JobQCommonSuite struct {
	suite.Suite
	KVDir      string
	KVPrefix   string
	KV         kv.KV
	KVCmd      *exec.Cmd
	BStalkAddr string
	BStalkCmd  *exec.Cmd
	Client     *jobqueue.Client
}

func (s *JobQCommonSuite) SetupSuite() {
	// Start up a test consul
	s.KVDir, _ = ioutil.TempDir("", "jobqueueTest-"+uuid.New())
	port := 54333
	clientURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	s.KVCmd = exec.Command("consul",
		"agent", "-dev",
		"-node", "jobqueueTest",
		"-data-dir", s.KVDir,
		"-bind", "127.0.0.1",
		"-http-port", fmt.Sprintf("%d", port),
		"-dns-port", "0",
		"-serf-lan-port", fmt.Sprintf("%d", port+1),
		"-serf-wan-port", fmt.Sprintf("%d", port+2),
		"-server-port", fmt.Sprintf("%d", port+3),
	)
	s.Require().NoError(s.KVCmd.Start())

	var err error
	for i := 0; i < 10; i++ {
		s.KV, err = kv.New(clientURL)
		if err == nil && s.KV.Ping() == nil {
			break
		}
		time.Sleep(500 * time.Millisecond) // Wait for test kv to be ready
	}
	if s.KV == nil {
		panic(err)
	}

	s.KVPrefix = "deploystand"
}

func (s *JobQCommonSuite) SetupTest() {
	// Start up a test beanstalk
	bPort := "4321"
	s.BStalkCmd = exec.Command("beanstalkd", "-p", bPort)
	s.Require().NoError(s.BStalkCmd.Start())
	s.BStalkAddr = fmt.Sprintf("127.0.0.1:%s", bPort)

	time.Sleep(100 * time.Millisecond)
	client, err := jobqueue.NewClient(s.BStalkAddr, s.KV)
	s.Require().NoError(err)
	s.Client = client

	s.Require().NoError(s.KV.Set(s.KVPrefix+"/foo.test", "testing"))
	s.Require().NoError(s.KV.Delete(s.KVPrefix+"/foo.test", false))
}

func (s *JobQCommonSuite) TearDownTest() {
	s.Require().NoError(s.KV.Delete(s.KVPrefix, true))

	s.Require().NoError(s.BStalkCmd.Process.Kill())
	s.Require().Error(s.BStalkCmd.Wait())
}

func (s *JobQCommonSuite) TearDownSuite() {
	s.Require().NoError(s.KVCmd.Process.Kill())
	s.Require().Error(s.KVCmd.Wait())
	s.Require().NoError(os.RemoveAll(s.KVDir))
}

func (s *JobQCommonSuite) prefixKey(key string) string {
	return filepath.Join(s.KVPrefix, key)
}

// newDeployment creates and saves a deployment to hang jobs off of
func (s *JobQCommonSuite) newDeployment() *deploystand.Deployment {
	context := deploystand.NewContext(s.KV)

	stand := context.NewStand()
	stand.Name = "test-" + uuid.New()[:8]
	_ = stand.Save()

	d := context.NewDeployment()
	d.StandID = stand.ID
	d.Placements["pc1"] = "node1"
	_ = d.Save()
	return d
}

func (s *JobQCommonSuite) newJob() *jobqueue.Job {
	deployment := s.newDeployment()

	j := s.Client.NewJob()
	j.Deployment = deployment.ID
	_ = j.Save()
	return j
}

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

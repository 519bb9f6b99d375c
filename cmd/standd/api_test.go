package main

import (
	"fmt"
	"net/http"
	"os/exec"
	"testing"
	"time"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/aleti000/deploy-stand/internal/tests/common"
	"github.com/aleti000/deploy-stand/pkg/jobqueue"
	"github.com/armon/go-metrics"
	mapsink "github.com/bakins/go-metrics-map"
	mmw "github.com/bakins/go-metrics-middleware"
	"github.com/kr/beanstalk"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"github.com/tylerb/graceful"
)

type APISuite struct {
	common.Suite
	Port           uint
	BeanstalkdCmd  *exec.Cmd
	BeanstalkdPath string
	JobQueue       *jobqueue.Client
	MetricsContext *metricsContext
	APIServer      *graceful.Server
	Stand          *deploystand.Stand
	APIURL         string
}

func TestStanddAPI(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupSuite() {
	s.Suite.SetupSuite()

	log.SetLevel(log.FatalLevel)
	s.Port = 51128
	s.APIURL = fmt.Sprintf("http://localhost:%d/stands", s.Port)

	// Metrics context
	sink := mapsink.New()
	fanout := metrics.FanoutSink{sink}
	conf := metrics.DefaultConfig("standdTEST")
	conf.EnableHostname = false
	m, _ := metrics.New(conf, fanout)
	s.MetricsContext = &metricsContext{
		sink:    sink,
		metrics: m,
		mmw:     mmw.New(m),
	}

	// Beanstalkd
	port := "59873"
	s.BeanstalkdPath = fmt.Sprintf("127.0.0.1:%s", port)
	s.BeanstalkdCmd = exec.Command("beanstalkd", "-p", port)
	s.Require().NoError(s.BeanstalkdCmd.Start())

	beanstalkdReady := false
	for i := 0; i < 10; i++ {
		if _, err := beanstalk.Dial("tcp", s.BeanstalkdPath); err == nil {
			beanstalkdReady = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	s.Require().True(beanstalkdReady)

	// Jobqueue
	s.JobQueue, _ = jobqueue.NewClient(s.BeanstalkdPath, s.KV)

	// Run the server
	s.APIServer = Run(s.Port, s.Context, s.JobQueue, s.MetricsContext)
	time.Sleep(100 * time.Millisecond)
}

func (s *APISuite) SetupTest() {
	s.Suite.SetupTest()
	s.Stand = s.NewStand()
}

func (s *APISuite) TearDownSuite() {
	stopChan := s.APIServer.StopChan()
	s.APIServer.Stop(5 * time.Second)
	<-stopChan

	_ = s.BeanstalkdCmd.Process.Kill()
	_ = s.BeanstalkdCmd.Wait()

	s.Suite.TearDownSuite()
}

func (s *APISuite) TestStandsList() {
	var stands deploystand.Stands
	s.DoRequest("GET", s.APIURL, http.StatusOK, nil, &stands)

	s.Len(stands, 1)
	s.Equal(s.Stand.ID, stands[0].ID)
}

func (s *APISuite) TestStandCreate() {
	var standResp deploystand.Stand
	req := map[string]interface{}{
		"name": "petrov",
	}
	s.DoRequest("POST", s.APIURL, http.StatusCreated, req, &standResp)

	s.NotEmpty(standResp.ID)
	s.Equal("petrov", standResp.Name)
}

func (s *APISuite) TestStandGet() {
	var stand deploystand.Stand
	s.DoRequest("GET", fmt.Sprintf("%s/%s", s.APIURL, s.Stand.ID), http.StatusOK, nil, &stand)

	s.Equal(s.Stand.ID, stand.ID)
	s.Len(stand.Machines, len(s.Stand.Machines))

	var msg map[string]string
	s.DoRequest("GET", fmt.Sprintf("%s/%s", s.APIURL, "adsf"), http.StatusBadRequest, nil, &msg)
	s.DoRequest("GET", fmt.Sprintf("%s/%s", s.APIURL, "d45e8433-8a5f-4aef-9138-d7e71deff344"), http.StatusNotFound, nil, &msg)
}

func (s *APISuite) TestStandUpdate() {
	var standResp deploystand.Stand
	req := map[string]interface{}{
		"metadata": map[string]string{"group": "ks-41"},
	}
	s.DoRequest("PATCH", fmt.Sprintf("%s/%s", s.APIURL, s.Stand.ID), http.StatusOK, req, &standResp)

	s.Equal("ks-41", standResp.Metadata["group"])
}

func (s *APISuite) TestStandDestroy() {
	var standResp deploystand.Stand
	s.DoRequest("DELETE", fmt.Sprintf("%s/%s", s.APIURL, s.Stand.ID), http.StatusOK, nil, &standResp)

	_, err := s.Context.Stand(s.Stand.ID)
	s.Error(err)
}

func (s *APISuite) TestStandResolve() {
	var resolveResp resolveResponse
	req := map[string]interface{}{
		"nodes": []string{"node1", "node2"},
	}
	s.DoRequest("POST", fmt.Sprintf("%s/%s/resolve", s.APIURL, s.Stand.ID), http.StatusOK, req, &resolveResp)

	s.Require().Len(resolveResp.Aliases, 1)
	s.Equal("hq", resolveResp.Aliases[0].Name)
	s.Equal("vmbr1000", resolveResp.Aliases[0].BridgeName())
	s.True(resolveResp.Aliases[0].VLANAware)
	s.Len(resolveResp.Placements, 2)
	s.NotEmpty(resolveResp.Bridges)
	s.Contains(resolveResp.NICs["pc1"], "net0")

	var msg map[string]string
	badReq := map[string]interface{}{"policy": "bogus"}
	s.DoRequest("POST", fmt.Sprintf("%s/%s/resolve", s.APIURL, s.Stand.ID), http.StatusBadRequest, badReq, &msg)
}

func (s *APISuite) TestStandDeploy() {
	var deploymentResp deploystand.Deployment
	req := map[string]interface{}{
		"nodes": []string{"node1"},
		"pool":  "students",
	}
	resp := s.DoRequest("POST", fmt.Sprintf("%s/%s/deploy", s.APIURL, s.Stand.ID), http.StatusAccepted, req, &deploymentResp)

	jobID := resp.Header.Get("X-Deploy-Job-ID")
	s.NotEmpty(jobID)

	s.Equal(s.Stand.ID, deploymentResp.StandID)
	s.Equal("students", deploymentResp.Pool)
	s.Equal(deploystand.DeploymentStatusNew, deploymentResp.Status)

	job, err := s.JobQueue.Job(jobID)
	s.Require().NoError(err)
	s.Equal(deploymentResp.ID, job.Deployment)

	var msg map[string]string
	s.DoRequest("POST", fmt.Sprintf("%s/%s/deploy", s.APIURL, s.Stand.ID), http.StatusBadRequest, nil, &msg)
}

func (s *APISuite) TestDeployments() {
	deployment := s.NewDeployment()
	deploymentsURL := fmt.Sprintf("http://localhost:%d/deployments", s.Port)

	var deployments deploystand.Deployments
	s.DoRequest("GET", deploymentsURL, http.StatusOK, nil, &deployments)
	s.Len(deployments, 1)

	var deploymentResp deploystand.Deployment
	s.DoRequest("GET", fmt.Sprintf("%s/%s", deploymentsURL, deployment.ID), http.StatusOK, nil, &deploymentResp)
	s.Equal(deployment.ID, deploymentResp.ID)

	s.DoRequest("DELETE", fmt.Sprintf("%s/%s", deploymentsURL, deployment.ID), http.StatusOK, nil, &deploymentResp)
	_, err := s.Context.Deployment(deployment.ID)
	s.Error(err)
}

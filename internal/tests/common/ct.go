// Package common contains common utilities and suites to be used in other tests
package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/aleti000/deploy-stand/pkg/kv"
	"github.com/pborman/uuid"
	"github.com/stretchr/testify/suite"
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

// Suite sets up a general test suite with setup/teardown.
type Suite struct {
	suite.Suite
	KVDir      string
	KVPrefix   string
	KVPort     uint16
	KVURL      string
	KV         kv.KV
	KVCmd      *exec.Cmd
	TestPrefix string
	Context    *deploystand.Context
}

// SetupSuite runs a new kv instance.
func (s *Suite) SetupSuite() {
	// Start up a test kv
	if s.TestPrefix == "" {
		s.TestPrefix = "deploystand-test"
	}
	s.KVDir, _ = ioutil.TempDir("", s.TestPrefix+"-"+uuid.New())
	if s.KVPort == 0 {
		s.KVPort = uint16(20000 + rand.Intn(10000))
	}
	clientURL := fmt.Sprintf("http://127.0.0.1:%d", s.KVPort)
	s.KVCmd = exec.Command("consul",
		"agent", "-dev",
		"-node", s.TestPrefix,
		"-data-dir", s.KVDir,
		"-bind", "127.0.0.1",
		"-http-port", fmt.Sprintf("%d", s.KVPort),
		"-dns-port", "0",
		"-serf-lan-port", fmt.Sprintf("%d", s.KVPort+1),
		"-serf-wan-port", fmt.Sprintf("%d", s.KVPort+2),
		"-server-port", fmt.Sprintf("%d", s.KVPort+3),
	)
	if testing.Verbose() {
		s.KVCmd.Stdout = os.Stdout
		s.KVCmd.Stderr = os.Stderr
	}
	s.Require().NoError(s.KVCmd.Start())
	time.Sleep(500 * time.Millisecond) // Wait for test kv to be ready

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
	s.Context = deploystand.NewContext(s.KV)
	s.KVPrefix = "deploystand"
	s.KVURL = clientURL
}

// SetupTest prepares anything needed per test.
func (s *Suite) SetupTest() {
}

// TearDownTest cleans the kv instance.
func (s *Suite) TearDownTest() {
	// Clean out kv
	s.Require().NoError(s.KV.Delete(s.KVPrefix, true))
}

// TearDownSuite stops the kv instance and removes all data.
func (s *Suite) TearDownSuite() {
	// Stop the test kv process
	s.Require().NoError(s.KVCmd.Process.Kill())
	s.Require().Error(s.KVCmd.Wait())

	// Remove the test kv data directory
	_ = os.RemoveAll(s.KVDir)
}

// PrefixKey generates a kv key using the set prefix
func (s *Suite) PrefixKey(key string) string {
	return filepath.Join(s.KVPrefix, key)
}

// NewMachines builds a small two machine topology sharing one alias.
func (s *Suite) NewMachines() []deploystand.Machine {
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
	return machines
}

// NewStand creates and saves a new Stand.
func (s *Suite) NewStand() *deploystand.Stand {
	stand := s.Context.NewStand()
	stand.Name = "stand-" + uuid.New()[:8]
	stand.Machines = s.NewMachines()
	s.Require().NoError(stand.Save())
	return stand
}

// NewDeployment creates and saves a new Deployment for a new Stand.
func (s *Suite) NewDeployment() *deploystand.Deployment {
	stand := s.NewStand()
	d := s.Context.NewDeployment()
	d.StandID = stand.ID
	d.Pool = "students"
	for _, m := range stand.Machines {
		d.Placements[m.Name] = "node1"
	}
	s.Require().NoError(d.Save())
	return d
}

// DoRequest is a convenience method for making an http request and doing basic handling of the response.
func (s *Suite) DoRequest(method, url string, expectedRespCode int, postBodyStruct interface{}, respBody interface{}) *http.Response {
	var postBody io.Reader
	if postBodyStruct != nil {
		bodyBytes, _ := json.Marshal(postBodyStruct)
		postBody = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequest(method, url, postBody)
	s.Require().NoError(err)
	if postBody != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	s.NoError(err)
	correctResponse := s.Equal(expectedRespCode, resp.StatusCode)
	defer func() { _ = resp.Body.Close() }()

	body, err := ioutil.ReadAll(resp.Body)
	s.NoError(err)

	if correctResponse {
		s.NoError(json.Unmarshal(body, respBody))
	} else {
		s.T().Log(string(body))
	}
	return resp
}

// Package proxmox is a minimal client for the parts of the Proxmox VE HTTP
// API that stand deployment needs: node and bridge discovery, bridge
// creation, template cloning, guest NIC configuration, and resource pools.
package proxmox

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds any single API request. Clone operations run
// synchronously on the cluster side and can take a while.
const DefaultTimeout = 60 * time.Second

type (
	// Client talks to one cluster endpoint with API token auth
	Client struct {
		httpClient *http.Client
		endpoint   string
		token      string
	}

	// Node is one cluster member
	Node struct {
		Name   string `json:"node"`
		Status string `json:"status"`
	}

	// NetworkInterface is one entry of a node's network config
	NetworkInterface struct {
		Iface     string   `json:"iface"`
		Type      string   `json:"type"`
		VLANAware jsonFlag `json:"bridge_vlan_aware"`
		Autostart jsonFlag `json:"autostart"`
	}

	// Pool is a cluster resource pool
	Pool struct {
		ID      string `json:"poolid"`
		Comment string `json:"comment,omitempty"`
	}

	// jsonFlag accepts the 0/1 integers the API uses for booleans
	jsonFlag bool

	// ErrorHTTPCode should be used for errors resulting from an http
	// response code not matching the expected code
	ErrorHTTPCode struct {
		Expected int
		Code     int
	}
)

// Error returns a string error message
func (e ErrorHTTPCode) Error() string {
	return fmt.Sprintf("unexpected HTTP Response Code: Expected %d, Received %d", e.Expected, e.Code)
}

// UnmarshalJSON parses 0/1, booleans, and the occasional quoted digit
func (f *jsonFlag) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "1", "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

// NewClient creates a Client for the cluster API at endpoint, e.g.
// "https://pve1.example.com:8006", authenticating with an API token of the
// form "user@realm!tokenid=secret". Proxmox clusters commonly run with
// self-signed certificates; insecure controls certificate verification.
func NewClient(endpoint, token string, insecure bool) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		endpoint: strings.TrimSuffix(endpoint, "/"),
		token:    token,
	}
}

// request hits an API endpoint and decodes the `data` wrapper every response
// carries into dest. Form values are sent urlencoded, the way the API
// expects writes.
func (c *Client) request(method, apiPath string, form url.Values, expectedCode int, dest interface{}) error {
	var body *bytes.Reader
	if form != nil {
		body = bytes.NewReader([]byte(form.Encode()))
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.endpoint+apiPath, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "PVEAPIToken="+c.token)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != expectedCode {
		return ErrorHTTPCode{expectedCode, resp.StatusCode}
	}

	if dest == nil {
		return nil
	}

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	wrapper := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return err
	}
	return json.Unmarshal(wrapper.Data, dest)
}

// Nodes lists the cluster members
func (c *Client) Nodes() ([]Node, error) {
	var nodes []Node
	err := c.request("GET", "/api2/json/nodes", nil, http.StatusOK, &nodes)
	return nodes, err
}

// Bridges lists the bridge interfaces configured on a node
func (c *Client) Bridges(node string) ([]NetworkInterface, error) {
	var ifaces []NetworkInterface
	apiPath := path.Join("/api2/json/nodes", node, "network") + "?type=any_bridge"
	err := c.request("GET", apiPath, nil, http.StatusOK, &ifaces)
	return ifaces, err
}

// CreateBridge creates a bridge interface on a node. The change stays
// pending until ReloadNetwork is called.
func (c *Client) CreateBridge(node, name string, vlanAware bool) error {
	form := url.Values{}
	form.Set("iface", name)
	form.Set("type", "bridge")
	form.Set("autostart", "1")
	if vlanAware {
		form.Set("bridge_vlan_aware", "1")
	}
	apiPath := path.Join("/api2/json/nodes", node, "network")
	return c.request("POST", apiPath, form, http.StatusOK, nil)
}

// ReloadNetwork applies pending network config changes on a node
func (c *Client) ReloadNetwork(node string) error {
	apiPath := path.Join("/api2/json/nodes", node, "network")
	return c.request("PUT", apiPath, nil, http.StatusOK, nil)
}

// NextVMID asks the cluster for the next free vm identifier
func (c *Client) NextVMID() (int, error) {
	var id string
	if err := c.request("GET", "/api2/json/cluster/nextid", nil, http.StatusOK, &id); err != nil {
		return 0, err
	}
	return strconv.Atoi(id)
}

// CloneVM clones a template vm to a new vmid, optionally on another node and
// into a pool. A linked clone shares the template's base disk; a full clone
// copies it.
func (c *Client) CloneVM(node string, templateID, newID int, target, name, pool string, linked bool) error {
	form := url.Values{}
	form.Set("newid", strconv.Itoa(newID))
	if target != "" && target != node {
		form.Set("target", target)
	}
	if name != "" {
		form.Set("name", name)
	}
	if pool != "" {
		form.Set("pool", pool)
	}
	if !linked {
		form.Set("full", "1")
	}
	apiPath := path.Join("/api2/json/nodes", node, "qemu", strconv.Itoa(templateID), "clone")
	return c.request("POST", apiPath, form, http.StatusOK, nil)
}

// SetVMConfig sets config parameters on a vm, such as netN interface strings
func (c *Client) SetVMConfig(node string, vmid int, params map[string]string) error {
	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	apiPath := path.Join("/api2/json/nodes", node, "qemu", strconv.Itoa(vmid), "config")
	return c.request("PUT", apiPath, form, http.StatusOK, nil)
}

// Pools lists the cluster resource pools
func (c *Client) Pools() ([]Pool, error) {
	var pools []Pool
	err := c.request("GET", "/api2/json/pools", nil, http.StatusOK, &pools)
	return pools, err
}

// CreatePool creates a resource pool
func (c *Client) CreatePool(id, comment string) error {
	form := url.Values{}
	form.Set("poolid", id)
	if comment != "" {
		form.Set("comment", comment)
	}
	return c.request("POST", "/api2/json/pools", form, http.StatusOK, nil)
}

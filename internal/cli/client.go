package cli

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Client is a simple json api client for the cli commands. Failures are
// fatal; the commands have nothing sensible to do with a broken server.
type Client struct {
	c      http.Client
	t      string //type
	scheme string
	addr   string
}

// NewClient creates a Client for a server address like "http://host:port"
func NewClient(address string) *Client {
	parts := strings.SplitN(address, "://", 2)
	return &Client{scheme: parts[0], addr: parts[1], t: "application/json"}
}

// URLString builds the full url for an endpoint
func (c *Client) URLString(endpoint string) string {
	return c.scheme + "://" + path.Join(c.addr, endpoint)
}

// GetMany fetches a list of resources
func (c *Client) GetMany(title, endpoint string) []map[string]interface{} {
	resp, err := c.c.Get(c.URLString(endpoint))
	if err != nil {
		log.WithField("error", err).Fatal("failed to get " + title)
	}
	ret := []map[string]interface{}{}
	processResponse(resp, title, http.StatusOK, &ret)
	return ret
}

// GetList fetches a list of strings
func (c *Client) GetList(title, endpoint string) []string {
	resp, err := c.c.Get(c.URLString(endpoint))
	if err != nil {
		log.WithField("error", err).Fatal("failed to get " + title)
	}
	ret := []string{}
	processResponse(resp, title, http.StatusOK, &ret)
	return ret
}

// Get fetches a single resource
func (c *Client) Get(title, endpoint string) map[string]interface{} {
	resp, err := c.c.Get(c.URLString(endpoint))
	if err != nil {
		log.WithField("error", err).Fatal("failed to get " + title)
	}
	ret := map[string]interface{}{}
	processResponse(resp, title, http.StatusOK, &ret)
	return ret
}

// Post creates a new resource
func (c *Client) Post(title, endpoint, body string) map[string]interface{} {
	resp, err := c.c.Post(c.URLString(endpoint), c.t, strings.NewReader(body))
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"body":  body,
		}).Fatal("unable to create new " + title)
	}
	ret := map[string]interface{}{}
	processResponse(resp, title, http.StatusCreated, &ret)
	return ret
}

// PostOK posts to an endpoint that computes and returns a result
func (c *Client) PostOK(title, endpoint, body string) map[string]interface{} {
	resp, err := c.c.Post(c.URLString(endpoint), c.t, strings.NewReader(body))
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"body":  body,
		}).Fatal("unable to post " + title)
	}
	ret := map[string]interface{}{}
	processResponse(resp, title, http.StatusOK, &ret)
	return ret
}

// PostAccepted creates a resource whose processing happens asynchronously
func (c *Client) PostAccepted(title, endpoint, body string) map[string]interface{} {
	resp, err := c.c.Post(c.URLString(endpoint), c.t, strings.NewReader(body))
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"body":  body,
		}).Fatal("unable to create new " + title)
	}
	ret := map[string]interface{}{}
	processResponse(resp, title, http.StatusAccepted, &ret)
	return ret
}

// Del deletes a resource
func (c *Client) Del(title, endpoint string) map[string]interface{} {
	addr := c.URLString(endpoint)
	req, err := http.NewRequest("DELETE", addr, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"error":   err,
			"address": addr,
		}).Fatal("unable to form request")
	}
	req.Header.Add("Content-Type", c.t)
	resp, err := c.c.Do(req)
	if err != nil {
		log.WithFields(log.Fields{
			"error":   err,
			"address": addr,
		}).Fatal("unable to complete request")
	}
	ret := map[string]interface{}{}
	processResponse(resp, title, http.StatusOK, &ret)
	return ret
}

// Patch modifies a resource
func (c *Client) Patch(title, endpoint, body string) map[string]interface{} {
	addr := c.URLString(endpoint)
	req, err := http.NewRequest("PATCH", addr, strings.NewReader(body))
	if err != nil {
		log.WithFields(log.Fields{
			"error":   err,
			"address": addr,
			"body":    body,
		}).Fatal("unable to form request")
	}
	req.Header.Add("Content-Type", c.t)
	resp, err := c.c.Do(req)
	if err != nil {
		log.WithFields(log.Fields{
			"error":   err,
			"address": addr,
			"body":    body,
		}).Fatal("unable to complete request")
	}
	ret := map[string]interface{}{}
	processResponse(resp, title, http.StatusOK, &ret)
	return ret
}

func processResponse(response *http.Response, title string, status int, dest interface{}) {
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != status {
		log.WithFields(log.Fields{
			"status": response.Status,
			"code":   response.StatusCode,
		}).Fatal("failed to get " + title)
	}

	if err := json.NewDecoder(response.Body).Decode(dest); err != nil {
		log.WithField("error", err).Fatal("failed to parse json")
	}
}

package main

import (
	"net/http"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"
)

type (
	// resolveRequest selects how a stand is resolved and placed. Placements
	// win over nodes; with nodes the machines are placed round robin; with
	// neither, only the alias table and nic parameters are computed.
	resolveRequest struct {
		Policy     string            `json:"policy,omitempty"`
		Nodes      []string          `json:"nodes,omitempty"`
		Placements map[string]string `json:"placements,omitempty"`
	}

	// resolveResponse is the computed view of a stand
	resolveResponse struct {
		Aliases    []*deploystand.NetworkAlias  `json:"aliases"`
		Placements map[string]string            `json:"placements,omitempty"`
		Bridges    deploystand.BridgePlans      `json:"bridges,omitempty"`
		NICs       map[string]map[string]string `json:"nics"`
	}

	// deployRequest starts a deployment of a stand
	deployRequest struct {
		resolveRequest
		Pool string `json:"pool,omitempty"`
	}
)

// RegisterStandRoutes registers the stand routes and handlers
func RegisterStandRoutes(prefix string, router *mux.Router, m *metricsContext) {
	standMiddleware := alice.New(
		loadStand,
	)

	router.Handle(prefix, m.mmw.HandlerFunc(ListStands, "list")).Methods("GET")
	router.Handle(prefix, m.mmw.HandlerFunc(CreateStand, "create")).Methods("POST")

	// TODO: Figure out a cleaner way to do middleware on the subrouter
	sub := router.PathPrefix(prefix).Subrouter()

	sub.Handle("/{standID}", standMiddleware.Append(m.mmw.HandlerWrapper("get")).ThenFunc(GetStand)).Methods("GET")
	sub.Handle("/{standID}", standMiddleware.Append(m.mmw.HandlerWrapper("update")).ThenFunc(UpdateStand)).Methods("PATCH")
	sub.Handle("/{standID}", standMiddleware.Append(m.mmw.HandlerWrapper("destroy")).ThenFunc(DestroyStand)).Methods("DELETE")
	sub.Handle("/{standID}/resolve", standMiddleware.Append(m.mmw.HandlerWrapper("resolve")).ThenFunc(ResolveStand)).Methods("POST")
	sub.Handle("/{standID}/deploy", standMiddleware.Append(m.mmw.HandlerWrapper("deploy")).ThenFunc(DeployStand)).Methods("POST")
}

// ListStands gets a list of all stands
func ListStands(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	ctx := GetContext(r)
	stands := make(deploystand.Stands, 0)
	err := ctx.ForEachStand(func(s *deploystand.Stand) error {
		stands = append(stands, s)
		return nil
	})
	if err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return
	}
	hr.JSON(http.StatusOK, stands)
}

// CreateStand creates a new stand
func CreateStand(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}

	stand, err := decodeStand(r, nil)
	if err != nil {
		hr.JSONMsg(http.StatusBadRequest, err.Error())
		return
	}

	if !saveStandHelper(hr, stand) {
		return
	}
	hr.JSON(http.StatusCreated, stand)
}

// GetStand gets a particular stand
func GetStand(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	hr.JSON(http.StatusOK, GetRequestStand(r))
}

// UpdateStand updates an existing stand
func UpdateStand(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	stand := GetRequestStand(r)

	_, err := decodeStand(r, stand)
	if err != nil {
		hr.JSONMsg(http.StatusBadRequest, err.Error())
		return
	}

	if !saveStandHelper(hr, stand) {
		return
	}
	hr.JSON(http.StatusOK, stand)
}

// DestroyStand removes a stand
func DestroyStand(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	stand := GetRequestStand(r)

	if err := stand.Destroy(); err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return
	}
	hr.JSON(http.StatusOK, stand)
}

// ResolveStand computes the alias table, bridge plans, and nic parameters
// for a stand without touching the cluster
func ResolveStand(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	stand := GetRequestStand(r)

	req := resolveRequest{}
	if !decodeRequest(hr, r, &req) {
		return
	}

	resp, _, ok := resolveHelper(hr, stand, req)
	if !ok {
		return
	}
	hr.JSON(http.StatusOK, resp)
}

// DeployStand creates a deployment for a stand and queues a job to realize
// it
func DeployStand(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	ctx := GetContext(r)
	stand := GetRequestStand(r)

	req := deployRequest{}
	if !decodeRequest(hr, r, &req) {
		return
	}

	resp, _, ok := resolveHelper(hr, stand, req.resolveRequest)
	if !ok {
		return
	}
	if len(resp.Placements) == 0 {
		hr.JSONMsg(http.StatusBadRequest, "deploy requires nodes or placements")
		return
	}

	deployment := ctx.NewDeployment()
	deployment.StandID = stand.ID
	deployment.Pool = req.Pool
	deployment.Placements = resp.Placements
	if err := deployment.Save(); err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return
	}

	jobQueue := GetJobQueue(r)
	job := jobQueue.NewJob()
	job.Deployment = deployment.ID
	if err := job.Save(); err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return
	}
	if _, err := jobQueue.AddTask(job); err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return
	}

	hr.Header().Set("X-Deploy-Job-ID", job.ID)
	hr.JSON(http.StatusAccepted, deployment)
}

package main

import (
	"net/http"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/gorilla/mux"
	"github.com/pborman/uuid"
)

// RegisterDeploymentRoutes registers the deployment routes and handlers
func RegisterDeploymentRoutes(prefix string, router *mux.Router, m *metricsContext) {
	router.Handle(prefix, m.mmw.HandlerFunc(ListDeployments, "list")).Methods("GET")

	// TODO: Figure out a cleaner way to do middleware on the subrouter
	sub := router.PathPrefix(prefix).Subrouter()

	sub.Handle("/{deploymentID}", m.mmw.HandlerFunc(GetDeployment, "get")).Methods("GET")
	sub.Handle("/{deploymentID}", m.mmw.HandlerFunc(DestroyDeployment, "destroy")).Methods("DELETE")
}

// RegisterJobRoutes registers the job routes and handlers
func RegisterJobRoutes(prefix string, router *mux.Router, m *metricsContext) {
	// TODO: Figure out a cleaner way to do middleware on the subrouter
	sub := router.PathPrefix(prefix).Subrouter()

	sub.Handle("/{jobID}", m.mmw.HandlerFunc(GetJob, "job")).Methods("GET")
}

// ListDeployments gets a list of all deployments
func ListDeployments(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	ctx := GetContext(r)
	deployments := make(deploystand.Deployments, 0)
	err := ctx.ForEachDeployment(func(d *deploystand.Deployment) error {
		deployments = append(deployments, d)
		return nil
	})
	if err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return
	}
	hr.JSON(http.StatusOK, deployments)
}

// loadDeployment fetches the deployment named in the url and handles sending
// a response in case of error
func loadDeployment(hr HTTPResponse, r *http.Request) (*deploystand.Deployment, bool) {
	ctx := GetContext(r)
	vars := mux.Vars(r)
	deploymentID := vars["deploymentID"]
	if uuid.Parse(deploymentID) == nil {
		hr.JSONMsg(http.StatusBadRequest, "invalid deployment id")
		return nil, false
	}
	deployment, err := ctx.Deployment(deploymentID)
	if err != nil {
		if ctx.IsKeyNotFound(err) {
			hr.JSONMsg(http.StatusNotFound, "deployment not found")
			return nil, false
		}
		hr.JSONError(http.StatusInternalServerError, err)
		return nil, false
	}
	return deployment, true
}

// GetDeployment gets a particular deployment
func GetDeployment(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	deployment, ok := loadDeployment(hr, r)
	if !ok {
		return
	}
	hr.JSON(http.StatusOK, deployment)
}

// DestroyDeployment removes a deployment record. The machines it created are
// not touched.
func DestroyDeployment(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	deployment, ok := loadDeployment(hr, r)
	if !ok {
		return
	}
	if err := deployment.Destroy(); err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return
	}
	hr.JSON(http.StatusOK, deployment)
}

// GetJob gets a job status
func GetJob(w http.ResponseWriter, r *http.Request) {
	hr := HTTPResponse{w}
	vars := mux.Vars(r)
	jobQueue := GetJobQueue(r)
	job, err := jobQueue.Job(vars["jobID"])
	if err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return
	}
	hr.JSON(http.StatusOK, job)
}

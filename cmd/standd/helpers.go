package main

import (
	"encoding/json"
	"net/http"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/gorilla/context"
	"github.com/gorilla/mux"
	"github.com/pborman/uuid"
)

const standKey = "stand"

// loadStand is a middleware to load a stand into the request context and
// handles sending a response in case of error
func loadStand(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hr := HTTPResponse{w}
		ctx := GetContext(r)
		vars := mux.Vars(r)
		standID, ok := vars["standID"]
		if !ok {
			hr.JSONMsg(http.StatusBadRequest, "missing stand id")
			return
		}
		if uuid.Parse(standID) == nil {
			hr.JSONMsg(http.StatusBadRequest, "invalid stand id")
			return
		}
		stand, err := ctx.Stand(standID)
		if err != nil {
			if ctx.IsKeyNotFound(err) {
				hr.JSONMsg(http.StatusNotFound, "stand not found")
				return
			}
			hr.JSONError(http.StatusInternalServerError, err)
			return
		}
		SetRequestStand(r, stand)
		h.ServeHTTP(w, r)
	})
}

// saveStandHelper saves the stand object and handles sending a response in
// case of error
func saveStandHelper(hr HTTPResponse, stand *deploystand.Stand) bool {
	if err := stand.Validate(); err != nil {
		hr.JSONMsg(http.StatusBadRequest, err.Error())
		return false
	}
	if err := stand.Save(); err != nil {
		hr.JSONError(http.StatusInternalServerError, err)
		return false
	}
	return true
}

// decodeStand decodes request body JSON into a stand object
func decodeStand(r *http.Request, stand *deploystand.Stand) (*deploystand.Stand, error) {
	if stand == nil {
		ctx := GetContext(r)
		stand = ctx.NewStand()
	}

	if err := json.NewDecoder(r.Body).Decode(stand); err != nil {
		return nil, err
	}
	return stand, nil
}

// decodeRequest decodes request body JSON into dest and handles sending a
// response in case of error. An empty body is fine.
func decodeRequest(hr HTTPResponse, r *http.Request, dest interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		hr.JSONMsg(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// parseTagPolicy maps the request policy name to a TagPolicy
func parseTagPolicy(name string) (deploystand.TagPolicy, bool) {
	switch name {
	case "", "trunk":
		return deploystand.TagPolicyTrunk, true
	case "single-tag":
		return deploystand.TagPolicySingleTag, true
	}
	return 0, false
}

// resolveHelper resolves a stand per the request and handles sending a
// response in case of error
func resolveHelper(hr HTTPResponse, stand *deploystand.Stand, req resolveRequest) (*resolveResponse, *deploystand.Resolution, bool) {
	policy, ok := parseTagPolicy(req.Policy)
	if !ok {
		hr.JSONMsg(http.StatusBadRequest, "unknown tag policy "+req.Policy)
		return nil, nil, false
	}

	resolution, err := stand.Resolve(policy)
	if err != nil {
		hr.JSONMsg(http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	resp := &resolveResponse{
		Aliases:    resolution.Aliases(),
		Placements: req.Placements,
		NICs:       make(map[string]map[string]string),
	}
	for _, m := range resolution.Machines() {
		params, err := resolution.NICParams(m.Name)
		if err != nil {
			hr.JSONError(http.StatusInternalServerError, err)
			return nil, nil, false
		}
		resp.NICs[m.Name] = params
	}

	if len(resp.Placements) == 0 && len(req.Nodes) > 0 {
		placements, err := deploystand.PlaceMachines(resolution.Machines(), req.Nodes)
		if err != nil {
			hr.JSONMsg(http.StatusBadRequest, err.Error())
			return nil, nil, false
		}
		resp.Placements = placements
	}

	if len(resp.Placements) > 0 {
		plans, err := resolution.BridgePlans(resp.Placements)
		if err != nil {
			hr.JSONMsg(http.StatusBadRequest, err.Error())
			return nil, nil, false
		}
		resp.Bridges = plans
	}

	return resp, resolution, true
}

// SetRequestStand saves the stand to the request context
func SetRequestStand(r *http.Request, s *deploystand.Stand) {
	context.Set(r, standKey, s)
}

// GetRequestStand retrieves the stand from the request context
func GetRequestStand(r *http.Request) *deploystand.Stand {
	return context.Get(r, standKey).(*deploystand.Stand)
}

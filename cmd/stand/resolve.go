package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/aleti000/deploy-stand/internal/cli"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	definitionFile string
	standName      string
	policy         string
	pool           string
	nodes          []string
	placements     []string
)

// addResolveFlags adds the flags shared by resolve and deploy
func addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&policy, "policy", "p", "trunk", "tag policy: trunk or single-tag")
	cmd.Flags().StringSliceVarP(&nodes, "nodes", "n", nil, "nodes to place machines on, round robin")
	cmd.Flags().StringSliceVarP(&placements, "place", "m", nil, "explicit placements as machine=node")
}

// parsePlacements turns machine=node pairs into a placement map
func parsePlacements(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			log.WithField("placement", pair).Fatal("expected machine=node")
		}
		out[parts[0]] = parts[1]
	}
	return out
}

func resolve(cmd *cobra.Command, ids []string) {
	if definitionFile != "" {
		resolveLocal(definitionFile)
		return
	}

	c := cli.NewClient(server)
	body, err := json.Marshal(map[string]interface{}{
		"nodes":      nodes,
		"placements": parsePlacements(placements),
		"policy":     policy,
	})
	if err != nil {
		log.WithField("error", err).Fatal("unable to build request")
	}
	for _, id := range ids {
		cli.AssertID(id)
		resp, err := json.Marshal(c.PostOK("resolution", "stands/"+id+"/resolve", string(body)))
		if err != nil {
			log.WithField("error", err).Fatal("unable to marshal response")
		}
		fmt.Println(string(resp))
	}
}

// resolveLocal resolves a yaml definition file without a server and prints
// the computed view
func resolveLocal(file string) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		log.WithFields(log.Fields{
			"file":  file,
			"error": err,
		}).Fatal("unable to read definition")
	}

	machines, err := deploystand.ParseStandDefinition(data)
	if err != nil {
		log.WithFields(log.Fields{
			"file":  file,
			"error": err,
		}).Fatal("invalid definition")
	}

	tagPolicy := deploystand.TagPolicyTrunk
	if policy == "single-tag" {
		tagPolicy = deploystand.TagPolicySingleTag
	}

	stand := &deploystand.Stand{Machines: machines}
	resolution, err := stand.Resolve(tagPolicy)
	if err != nil {
		log.WithFields(log.Fields{
			"file":  file,
			"error": err,
		}).Fatal("unable to resolve")
	}

	out := map[string]interface{}{
		"aliases": resolution.Aliases(),
	}

	nics := make(map[string]map[string]string)
	for _, m := range resolution.Machines() {
		params, err := resolution.NICParams(m.Name)
		if err != nil {
			log.WithField("error", err).Fatal("unable to build nic parameters")
		}
		nics[m.Name] = params
	}
	out["nics"] = nics

	chosen := parsePlacements(placements)
	if len(chosen) == 0 && len(nodes) > 0 {
		chosen, err = deploystand.PlaceMachines(resolution.Machines(), nodes)
		if err != nil {
			log.WithField("error", err).Fatal("unable to place machines")
		}
	}
	if len(chosen) > 0 {
		plans, err := resolution.BridgePlans(chosen)
		if err != nil {
			log.WithField("error", err).Fatal("unable to plan bridges")
		}
		out["placements"] = chosen
		out["bridges"] = plans
	}

	buf, err := json.Marshal(out)
	if err != nil {
		log.WithField("error", err).Fatal("unable to marshal output")
	}
	fmt.Println(string(buf))
}

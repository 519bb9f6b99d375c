package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"sort"

	deploystand "github.com/aleti000/deploy-stand"
	"github.com/aleti000/deploy-stand/internal/cli"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	server  = "http://localhost:18000/"
	jsonout = false
)

func help(cmd *cobra.Command, _ []string) {
	_ = cmd.Help()
}

func getStands(c *cli.Client) []cli.JMap {
	ret := c.GetMany("stands", "stands")
	stands := make([]cli.JMap, len(ret))
	for i := range ret {
		stands[i] = ret[i]
	}
	return stands
}

func getStand(c *cli.Client, id string) cli.JMap {
	return c.Get("stand", "stands/"+id)
}

func createStand(c *cli.Client, spec string) cli.JMap {
	return c.Post("stand", "stands", spec)
}

func modifyStand(c *cli.Client, id string, spec string) cli.JMap {
	return c.Patch("stand", "stands/"+id, spec)
}

func deleteStand(c *cli.Client, id string) cli.JMap {
	return c.Del("stand", "stands/"+id)
}

func list(cmd *cobra.Command, ids []string) {
	c := cli.NewClient(server)
	stands := []cli.JMap{}

	if len(ids) == 0 {
		stands = getStands(c)
		sort.Sort(cli.JMapSlice(stands))
	} else {
		for _, id := range ids {
			cli.AssertID(id)
			stands = append(stands, getStand(c, id))
		}
	}

	for _, stand := range stands {
		stand.Print(jsonout)
	}
}

func create(cmd *cobra.Command, specs []string) {
	c := cli.NewClient(server)
	for _, spec := range specs {
		cli.AssertSpec(spec)
		stand := createStand(c, spec)
		stand.Print(jsonout)
	}
}

func modify(cmd *cobra.Command, args []string) {
	c := cli.NewClient(server)
	if len(args)%2 != 0 {
		log.WithField("num", len(args)).Fatal("expected an even number of args")
	}
	for i := 0; i < len(args); i += 2 {
		id := args[i]
		cli.AssertID(id)
		spec := args[i+1]
		cli.AssertSpec(spec)

		stand := modifyStand(c, id, spec)
		stand.Print(jsonout)
	}
}

func del(cmd *cobra.Command, ids []string) {
	c := cli.NewClient(server)
	for _, id := range ids {
		cli.AssertID(id)
		stand := deleteStand(c, id)
		stand.Print(jsonout)
	}
}

func importDefinition(cmd *cobra.Command, files []string) {
	c := cli.NewClient(server)
	for _, file := range files {
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

		spec, err := json.Marshal(map[string]interface{}{
			"name":     standName,
			"machines": machines,
		})
		if err != nil {
			log.WithField("error", err).Fatal("unable to build spec")
		}
		stand := createStand(c, string(spec))
		stand.Print(jsonout)
	}
}

func deploy(cmd *cobra.Command, ids []string) {
	c := cli.NewClient(server)
	body, err := json.Marshal(map[string]interface{}{
		"nodes":      nodes,
		"placements": parsePlacements(placements),
		"policy":     policy,
		"pool":       pool,
	})
	if err != nil {
		log.WithField("error", err).Fatal("unable to build request")
	}
	for _, id := range ids {
		cli.AssertID(id)
		deployment := cli.JMap(c.PostAccepted("deployment", "stands/"+id+"/deploy", string(body)))
		deployment.Print(jsonout)
	}
}

func listDeployments(cmd *cobra.Command, ids []string) {
	c := cli.NewClient(server)
	deployments := []cli.JMap{}

	if len(ids) == 0 {
		ret := c.GetMany("deployments", "deployments")
		for i := range ret {
			deployments = append(deployments, ret[i])
		}
		sort.Sort(cli.JMapSlice(deployments))
	} else {
		for _, id := range ids {
			cli.AssertID(id)
			deployments = append(deployments, c.Get("deployment", "deployments/"+id))
		}
	}

	for _, deployment := range deployments {
		deployment.Print(jsonout)
	}
}

func main() {
	root := &cobra.Command{
		Use:   "stand",
		Short: "stand is the cli interface to standd",
		Run:   help,
	}
	root.PersistentFlags().BoolVarP(&jsonout, "jsonout", "j", jsonout, "output in json")
	root.PersistentFlags().StringVarP(&server, "server", "s", server, "server address to connect to")

	cmdList := &cobra.Command{
		Use:   "list [<id>...]",
		Short: "List the stands",
		Run:   list,
	}

	cmdCreate := &cobra.Command{
		Use:   "create <spec>...",
		Short: "Create stands",
		Long:  `Create new stand(s) using "spec"(s) as the initial values. Where "spec" is a valid json string.`,
		Run:   create,
	}

	cmdImport := &cobra.Command{
		Use:   "import <file>...",
		Short: "Create stands from yaml definition files",
		Run:   importDefinition,
	}
	cmdImport.Flags().StringVarP(&standName, "name", "n", "", "stand name")

	cmdModify := &cobra.Command{
		Use:   "modify (<id> <spec>)...",
		Short: "Modify stands",
		Long:  `Modify given stand(s). Where "spec" is a valid json string.`,
		Run:   modify,
	}

	cmdDelete := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stands",
		Run:   del,
	}

	cmdResolve := &cobra.Command{
		Use:   "resolve [<id>...]",
		Short: "Resolve stand topologies",
		Long:  "Resolve stand topologies into bridge plans and nic parameters. With -f the definition file is resolved locally without a server.",
		Run:   resolve,
	}
	addResolveFlags(cmdResolve)
	cmdResolve.Flags().StringVarP(&definitionFile, "file", "f", "", "resolve a local yaml definition instead")

	cmdDeploy := &cobra.Command{
		Use:   "deploy <id>...",
		Short: "Deploy stands",
		Run:   deploy,
	}
	addResolveFlags(cmdDeploy)
	cmdDeploy.Flags().StringVarP(&pool, "pool", "o", "", "resource pool for created machines")

	cmdDeployments := &cobra.Command{
		Use:   "deployments [<id>...]",
		Short: "List the deployments",
		Run:   listDeployments,
	}

	root.AddCommand(cmdList, cmdCreate, cmdImport, cmdModify, cmdDelete, cmdResolve, cmdDeploy, cmdDeployments)
	_ = root.Execute()
}

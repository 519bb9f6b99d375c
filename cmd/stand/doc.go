/*
stand is the command line interface to standd, the stand management service.
stand can list/create/import/modify/delete stands, resolve their network
topology, and deploy them.

Usage

The following arguments are understood:

	Usage:
	stand [flags]
	stand [command]

	Available Commands:
	list        List the stands
	create      Create stands
	import      Create stands from yaml definition files
	modify      Modify stands
	delete      Delete stands
	resolve     Resolve stand topologies
	deploy      Deploy stands
	deployments List the deployments
	help        Help about any command

	Flags:
	-h, --help=false: help for stand
	-j, --jsonout=false: output in json
	-s, --server="http://localhost:18000/": server address to connect to


	Use "stand help [command]" for more information about a command.

resolve and deploy share placement flags: -n selects nodes to place machines
on round robin, -m pins individual machines as machine=node, and -p picks the
tag policy (trunk or single-tag). deploy queues a job; the resulting
deployment can be checked on with the deployments command.

Output

Most commands support two output formats, a list of ids or a list of JSON
objects, line separated. resolve always prints JSON.

Examples

Import a stand from a yaml definition

	$ cat stand.yml
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

	$ stand import -n ivanov stand.yml
	1d1af312-1100-49e2-b3ad-09532ffc4e77

Resolve a definition locally, without a server

	$ stand resolve -f stand.yml -n node1,node2
	{"aliases":[{"name":"hq","bridge_id":1000,"tags":[100],"vlan_aware":true}],"bridges":[{"node":"node1","bridge":"vmbr1000","vlan_aware":true},{"node":"node2","bridge":"vmbr1000","vlan_aware":true}],"nics":{"pc1":{"net0":"model=virtio,bridge=vmbr1000,tag=100,firewall=1"},"r1":{"net0":"model=vmxnet3,bridge=vmbr0,link_down=1","net2":"model=vmxnet3,bridge=vmbr1000,tag=100,firewall=1"}},"placements":{"pc1":"node2","r1":"node1"}}

Deploy a stand

	$ stand deploy -n node1,node2 -o students 1d1af312-1100-49e2-b3ad-09532ffc4e77
	9bbb1b7c-6d04-4e24-a034-20a0b02c0c51

	$ stand deployments -j 9bbb1b7c-6d04-4e24-a034-20a0b02c0c51
	{"id":"9bbb1b7c-6d04-4e24-a034-20a0b02c0c51","placements":{"pc1":"node2","r1":"node1"},"pool":"students","stand":"1d1af312-1100-49e2-b3ad-09532ffc4e77","status":"done","vmids":{"pc1":106,"r1":105}}
*/
package main

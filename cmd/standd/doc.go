/*
standd is the stand management service. It exposes functionality over an HTTP
API with JSON formatting.

Command Usage

	$ standd -h
	Usage of standd:
	-b, --beanstalk="127.0.0.1:11300": address of beanstalkd server
	-k, --kv="http://localhost:8500": address of kv machine
	-l, --log-level="warn": log level
	-p, --port=18000: listen port
	-s, --statsd="": statsd address

HTTP API Endpoints

	/stands
		* GET  - Retrieve a list of stands
		* POST - Create a new stand
	/stands/{standID}
		* GET    - Retrieve information about a stand
		* PATCH  - Update information for a stand
		* DELETE - Delete a stand
	/stands/{standID}/resolve
		* POST - Compute aliases, bridge plans, and nic parameters
	/stands/{standID}/deploy
		* POST - Create a deployment and queue a job to realize it
	/deployments
		* GET - Retrieve a list of deployments
	/deployments/{deploymentID}
		* GET    - Retrieve information about a deployment
		* DELETE - Delete a deployment record
	/jobs/{jobID}
		* GET - Retrieve job status

Example Requests

POST /stands

	$ curl -XPOST http://localhost:18000/stands --data-binary '{"name":"ivanov", "machines":[{"name":"r1","device_type":"ecorouter","template_node":"node1","template_vmid":9000,"networks":[{"alias":"hq","tag":100,"firewall":true}]},{"name":"pc1","device_type":"linux","template_node":"node1","template_vmid":9001,"linked":true,"networks":[{"alias":"hq","tag":100,"firewall":true}]}]}'

POST /stands/{standID}/resolve

	$ curl -XPOST http://localhost:18000/stands/94ea0ba1-5ec2-460e-9c2e-8269593cdad3/resolve --data-binary '{"nodes":["node1","node2"]}'

	{"aliases":[{"name":"hq","bridge_id":1000,"tags":[100],"vlan_aware":true}],"placements":{"r1":"node1","pc1":"node2"},"bridges":[{"node":"node1","bridge":"vmbr1000","vlan_aware":true},{"node":"node2","bridge":"vmbr1000","vlan_aware":true}],"nics":{"pc1":{"net0":"model=virtio,bridge=vmbr1000,tag=100,firewall=1"},"r1":{"net0":"model=vmxnet3,bridge=vmbr0,link_down=1","net2":"model=vmxnet3,bridge=vmbr1000,tag=100,firewall=1"}}}

POST /stands/{standID}/deploy

	$ curl -XPOST http://localhost:18000/stands/94ea0ba1-5ec2-460e-9c2e-8269593cdad3/deploy --data-binary '{"nodes":["node1"],"pool":"students"}'
*/
package main

/*
standworkerd is the deployment worker. It consumes deploy jobs from
beanstalk, resolves the stand topology, provisions bridges, and clones
machines through the Proxmox VE cluster API.

Command Usage

	$ standworkerd -h
	Usage of standworkerd:
	-b, --beanstalk="127.0.0.1:11300": address of beanstalkd server
	-p, --http=7544: http port to publish metrics. set to 0 to disable
	-k, --kv="http://127.0.0.1:8500": address of kv machine
	-l, --log-level="warn": log level
	-a, --proxmox="https://127.0.0.1:8006": address of proxmox cluster api
	-i, --proxmox-insecure[=false]: skip proxmox tls verification
	-t, --proxmox-token="": proxmox api token (user@realm!tokenid=secret)
*/
package main

package main

import (
	deploystand "github.com/aleti000/deploy-stand"
	"github.com/aleti000/deploy-stand/pkg/proxmox"
	log "github.com/sirupsen/logrus"
)

// newExecutor builds the cluster executor the deployer drives
func newExecutor(addr, token string, insecure bool) deploystand.Executor {
	if token == "" {
		log.Fatal("proxmox api token is required")
	}
	return deploystand.NewProxmoxExecutor(proxmox.NewClient(addr, token, insecure))
}

/*
Package deploystand provides primitives for deploying student lab stands
onto a Proxmox VE cluster.

A stand is a named set of virtual machines cloned from templates, wired
together through named networks. Stand definitions stay deliberately small:
each machine lists its networks as `alias[.tag]` strings, and everything
physical is derived from that.

Data Model

A Stand is the persistent entity: a machine list plus metadata. Machines
name a template to clone and the networks to attach to.

A network reference is either a reserved literal bridge name, which passes
through untouched, or an alias with an optional VLAN tag. Aliases are
cluster-wide names; resolution maps each distinct alias to a synthetic
bridge (vmbr1000 and up, in first-seen order) and marks the bridge
VLAN-aware when any reference to the alias carries a tag.

A Resolution is the computed view of one stand: the alias table, per-machine
NIC parameters, and, once machines are placed on nodes, the per-node bridge
plans. It is never stored; resolving the same stand twice yields identical
results.

A Deployment records one attempt to realize a stand: the chosen placements,
the assigned vm identifiers, and the outcome. The Deployer drives an
Executor (the real cluster API or a stub) to create bridges and clone
machines.
*/
package deploystand

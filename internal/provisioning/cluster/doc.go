// Package cluster turns the provisioned servers into a synchronously
// replicated database pair behind an internal load balancer. It wires
// the listener frontend, bootstraps streaming replication, and binds
// the listener name once the primary passes its probe.
package cluster

// Package infrastructure provisions the cloud resources a cluster runs
// on: private network, firewall, spread placement group, the two
// database servers with their volumes, the secret store, and the
// management agent on each node.
package infrastructure

package naming

import "fmt"

// Prefix combines the cluster name with the run identifier. Every resource
// name starts with it, which makes cleanup by prefix possible and keeps
// re-runs with a fresh run ID from colliding with leftovers.
func Prefix(cluster, runID string) string {
	return fmt.Sprintf("%s-%s", cluster, runID)
}

func Network(prefix string) string {
	return prefix + "-net"
}

func Firewall(prefix string) string {
	return prefix + "-fw"
}

func PlacementGroup(prefix string) string {
	return prefix + "-spread"
}

func Server(prefix, role string) string {
	return fmt.Sprintf("%s-%s", prefix, role)
}

func Volume(prefix, role, kind string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, role, kind)
}

func LoadBalancer(prefix string) string {
	return prefix + "-lsnr"
}

func SSHKey(prefix string) string {
	return prefix + "-admin"
}

// Listener is the DNS-style name clients are told to connect to. It is
// attached to the load balancer as a label and resolved by the validator.
func Listener(cluster string) string {
	return cluster + "-listener"
}

// SecretPrefix is the object key prefix for this run's credentials.
func SecretPrefix(cluster, runID string) string {
	return fmt.Sprintf("%s/%s", cluster, runID)
}

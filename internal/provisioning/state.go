package provisioning

import "github.com/hetznercloud/hcloud-go/v2/hcloud"

// State holds the shared results of lifecycle phases. It is
// progressively populated as each phase completes and is passed to
// subsequent phases that need earlier results.
type State struct {
	// Infrastructure results
	Network        *hcloud.Network
	Firewall       *hcloud.Firewall
	PlacementGroup *hcloud.PlacementGroup
	LoadBalancer   *hcloud.LoadBalancer
	SSHKeyID       int64

	// Per-role compute results, keyed by node role
	ServerIDs  map[string]int64
	PublicIPs  map[string]string
	PrivateIPs map[string]string
	Volumes    map[string][]*hcloud.Volume

	// Listener frontend address on the private network
	ListenerIP string

	// Generated credentials. Persisted to the secret store by the
	// secrets phase; kept here only for the lifetime of the run.
	AdminPassword       string
	ReplicationPassword string
	SSHPrivateKey       []byte
	SSHPublicKey        []byte
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		ServerIDs:  make(map[string]int64),
		PublicIPs:  make(map[string]string),
		PrivateIPs: make(map[string]string),
		Volumes:    make(map[string][]*hcloud.Volume),
	}
}

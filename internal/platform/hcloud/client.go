package hcloud

import (
	"context"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ServerCreateOpts holds all parameters for creating a database server.
type ServerCreateOpts struct {
	Name             string
	Image            string
	ServerType       string
	Location         string
	SSHKeys          []string
	Labels           map[string]string
	UserData         string
	PlacementGroupID *int64
	NetworkID        int64
	PrivateIP        string
}

// ServerProvisioner provisions and inspects servers.
type ServerProvisioner interface {
	// CreateServer creates a server and returns its ID. The server is
	// attached to the private network before it starts so the fixed
	// private address is present from first boot.
	CreateServer(ctx context.Context, opts ServerCreateOpts) (int64, error)

	// GetServerByName returns the server or nil if it does not exist.
	GetServerByName(ctx context.Context, name string) (*hcloud.Server, error)

	GetServersByLabel(ctx context.Context, labelSelector string) ([]*hcloud.Server, error)
	DeleteServer(ctx context.Context, name string) error
}

// NetworkManager manages private networks and subnets.
type NetworkManager interface {
	EnsureNetwork(ctx context.Context, name, ipRange string, labels map[string]string) (*hcloud.Network, error)
	EnsureSubnet(ctx context.Context, network *hcloud.Network, ipRange, networkZone string) error
	GetNetwork(ctx context.Context, name string) (*hcloud.Network, error)
	DeleteNetwork(ctx context.Context, name string) error
}

// FirewallManager manages firewalls.
type FirewallManager interface {
	EnsureFirewall(ctx context.Context, name string, rules []hcloud.FirewallRule, labels map[string]string, applyToLabelSelector string) (*hcloud.Firewall, error)
	GetFirewall(ctx context.Context, name string) (*hcloud.Firewall, error)
	DeleteFirewall(ctx context.Context, name string) error
}

// PlacementGroupManager manages spread placement groups.
type PlacementGroupManager interface {
	EnsurePlacementGroup(ctx context.Context, name, pgType string, labels map[string]string) (*hcloud.PlacementGroup, error)
	GetPlacementGroup(ctx context.Context, name string) (*hcloud.PlacementGroup, error)
	DeletePlacementGroup(ctx context.Context, name string) error
}

// VolumeManager manages attached data volumes.
type VolumeManager interface {
	// EnsureVolume creates a volume attached to the given server, or
	// returns the existing one.
	EnsureVolume(ctx context.Context, name string, sizeGB int, serverID int64, labels map[string]string) (*hcloud.Volume, error)
	GetVolume(ctx context.Context, name string) (*hcloud.Volume, error)
	DeleteVolume(ctx context.Context, name string) error
}

// LoadBalancerManager manages the internal load balancer acting as the
// cluster listener.
type LoadBalancerManager interface {
	EnsureLoadBalancer(ctx context.Context, name, location, lbType string, algorithm hcloud.LoadBalancerAlgorithmType, labels map[string]string) (*hcloud.LoadBalancer, error)
	ConfigureService(ctx context.Context, lb *hcloud.LoadBalancer, service hcloud.LoadBalancerAddServiceOpts) error
	AddServerTarget(ctx context.Context, lb *hcloud.LoadBalancer, server *hcloud.Server, usePrivateIP bool) error
	AttachToNetwork(ctx context.Context, lb *hcloud.LoadBalancer, network *hcloud.Network, ip net.IP) error
	LabelLoadBalancer(ctx context.Context, lb *hcloud.LoadBalancer, labels map[string]string) error
	GetLoadBalancer(ctx context.Context, name string) (*hcloud.LoadBalancer, error)
	DeleteLoadBalancer(ctx context.Context, name string) error
}

// SSHKeyManager manages the deployment admin key.
type SSHKeyManager interface {
	EnsureSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (*hcloud.SSHKey, error)
	DeleteSSHKey(ctx context.Context, name string) error
}

// InfrastructureManager combines all infrastructure interfaces.
type InfrastructureManager interface {
	ServerProvisioner
	NetworkManager
	FirewallManager
	PlacementGroupManager
	VolumeManager
	LoadBalancerManager
	SSHKeyManager
}

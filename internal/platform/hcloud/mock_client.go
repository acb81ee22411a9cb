package hcloud

import (
	"context"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// MockClient is a mock implementation of InfrastructureManager. Each
// method delegates to the corresponding Func field when set and returns
// a benign default otherwise.
type MockClient struct {
	CreateServerFunc      func(ctx context.Context, opts ServerCreateOpts) (int64, error)
	GetServerByNameFunc   func(ctx context.Context, name string) (*hcloud.Server, error)
	GetServersByLabelFunc func(ctx context.Context, labelSelector string) ([]*hcloud.Server, error)
	DeleteServerFunc      func(ctx context.Context, name string) error

	EnsureNetworkFunc func(ctx context.Context, name, ipRange string, labels map[string]string) (*hcloud.Network, error)
	EnsureSubnetFunc  func(ctx context.Context, network *hcloud.Network, ipRange, networkZone string) error
	GetNetworkFunc    func(ctx context.Context, name string) (*hcloud.Network, error)
	DeleteNetworkFunc func(ctx context.Context, name string) error

	EnsureFirewallFunc func(ctx context.Context, name string, rules []hcloud.FirewallRule, labels map[string]string, applyToLabelSelector string) (*hcloud.Firewall, error)
	GetFirewallFunc    func(ctx context.Context, name string) (*hcloud.Firewall, error)
	DeleteFirewallFunc func(ctx context.Context, name string) error

	EnsurePlacementGroupFunc func(ctx context.Context, name, pgType string, labels map[string]string) (*hcloud.PlacementGroup, error)
	GetPlacementGroupFunc    func(ctx context.Context, name string) (*hcloud.PlacementGroup, error)
	DeletePlacementGroupFunc func(ctx context.Context, name string) error

	EnsureVolumeFunc func(ctx context.Context, name string, sizeGB int, serverID int64, labels map[string]string) (*hcloud.Volume, error)
	GetVolumeFunc    func(ctx context.Context, name string) (*hcloud.Volume, error)
	DeleteVolumeFunc func(ctx context.Context, name string) error

	EnsureLoadBalancerFunc func(ctx context.Context, name, location, lbType string, algorithm hcloud.LoadBalancerAlgorithmType, labels map[string]string) (*hcloud.LoadBalancer, error)
	ConfigureServiceFunc   func(ctx context.Context, lb *hcloud.LoadBalancer, service hcloud.LoadBalancerAddServiceOpts) error
	AddServerTargetFunc    func(ctx context.Context, lb *hcloud.LoadBalancer, server *hcloud.Server, usePrivateIP bool) error
	AttachToNetworkFunc    func(ctx context.Context, lb *hcloud.LoadBalancer, network *hcloud.Network, ip net.IP) error
	LabelLoadBalancerFunc  func(ctx context.Context, lb *hcloud.LoadBalancer, labels map[string]string) error
	GetLoadBalancerFunc    func(ctx context.Context, name string) (*hcloud.LoadBalancer, error)
	DeleteLoadBalancerFunc func(ctx context.Context, name string) error

	EnsureSSHKeyFunc func(ctx context.Context, name, publicKey string, labels map[string]string) (*hcloud.SSHKey, error)
	DeleteSSHKeyFunc func(ctx context.Context, name string) error
}

var _ InfrastructureManager = (*MockClient)(nil)

// CreateServer mocks server creation.
func (m *MockClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (int64, error) {
	if m.CreateServerFunc != nil {
		return m.CreateServerFunc(ctx, opts)
	}
	return 1, nil
}

// GetServerByName mocks server lookup.
func (m *MockClient) GetServerByName(ctx context.Context, name string) (*hcloud.Server, error) {
	if m.GetServerByNameFunc != nil {
		return m.GetServerByNameFunc(ctx, name)
	}
	return &hcloud.Server{ID: 1, Name: name}, nil
}

// GetServersByLabel mocks server listing.
func (m *MockClient) GetServersByLabel(ctx context.Context, labelSelector string) ([]*hcloud.Server, error) {
	if m.GetServersByLabelFunc != nil {
		return m.GetServersByLabelFunc(ctx, labelSelector)
	}
	return nil, nil
}

// DeleteServer mocks server deletion.
func (m *MockClient) DeleteServer(ctx context.Context, name string) error {
	if m.DeleteServerFunc != nil {
		return m.DeleteServerFunc(ctx, name)
	}
	return nil
}

// EnsureNetwork mocks network creation.
func (m *MockClient) EnsureNetwork(ctx context.Context, name, ipRange string, labels map[string]string) (*hcloud.Network, error) {
	if m.EnsureNetworkFunc != nil {
		return m.EnsureNetworkFunc(ctx, name, ipRange, labels)
	}
	return &hcloud.Network{ID: 1, Name: name}, nil
}

// EnsureSubnet mocks subnet creation.
func (m *MockClient) EnsureSubnet(ctx context.Context, network *hcloud.Network, ipRange, networkZone string) error {
	if m.EnsureSubnetFunc != nil {
		return m.EnsureSubnetFunc(ctx, network, ipRange, networkZone)
	}
	return nil
}

// GetNetwork mocks network lookup.
func (m *MockClient) GetNetwork(ctx context.Context, name string) (*hcloud.Network, error) {
	if m.GetNetworkFunc != nil {
		return m.GetNetworkFunc(ctx, name)
	}
	return &hcloud.Network{ID: 1, Name: name}, nil
}

// DeleteNetwork mocks network deletion.
func (m *MockClient) DeleteNetwork(ctx context.Context, name string) error {
	if m.DeleteNetworkFunc != nil {
		return m.DeleteNetworkFunc(ctx, name)
	}
	return nil
}

// EnsureFirewall mocks firewall creation.
func (m *MockClient) EnsureFirewall(ctx context.Context, name string, rules []hcloud.FirewallRule, labels map[string]string, applyToLabelSelector string) (*hcloud.Firewall, error) {
	if m.EnsureFirewallFunc != nil {
		return m.EnsureFirewallFunc(ctx, name, rules, labels, applyToLabelSelector)
	}
	return &hcloud.Firewall{ID: 1, Name: name}, nil
}

// GetFirewall mocks firewall lookup.
func (m *MockClient) GetFirewall(ctx context.Context, name string) (*hcloud.Firewall, error) {
	if m.GetFirewallFunc != nil {
		return m.GetFirewallFunc(ctx, name)
	}
	return &hcloud.Firewall{ID: 1, Name: name}, nil
}

// DeleteFirewall mocks firewall deletion.
func (m *MockClient) DeleteFirewall(ctx context.Context, name string) error {
	if m.DeleteFirewallFunc != nil {
		return m.DeleteFirewallFunc(ctx, name)
	}
	return nil
}

// EnsurePlacementGroup mocks placement group creation.
func (m *MockClient) EnsurePlacementGroup(ctx context.Context, name, pgType string, labels map[string]string) (*hcloud.PlacementGroup, error) {
	if m.EnsurePlacementGroupFunc != nil {
		return m.EnsurePlacementGroupFunc(ctx, name, pgType, labels)
	}
	return &hcloud.PlacementGroup{ID: 1, Name: name, Type: hcloud.PlacementGroupType(pgType)}, nil
}

// GetPlacementGroup mocks placement group lookup.
func (m *MockClient) GetPlacementGroup(ctx context.Context, name string) (*hcloud.PlacementGroup, error) {
	if m.GetPlacementGroupFunc != nil {
		return m.GetPlacementGroupFunc(ctx, name)
	}
	return &hcloud.PlacementGroup{ID: 1, Name: name}, nil
}

// DeletePlacementGroup mocks placement group deletion.
func (m *MockClient) DeletePlacementGroup(ctx context.Context, name string) error {
	if m.DeletePlacementGroupFunc != nil {
		return m.DeletePlacementGroupFunc(ctx, name)
	}
	return nil
}

// EnsureVolume mocks volume creation.
func (m *MockClient) EnsureVolume(ctx context.Context, name string, sizeGB int, serverID int64, labels map[string]string) (*hcloud.Volume, error) {
	if m.EnsureVolumeFunc != nil {
		return m.EnsureVolumeFunc(ctx, name, sizeGB, serverID, labels)
	}
	return &hcloud.Volume{ID: 1, Name: name, Size: sizeGB, Server: &hcloud.Server{ID: serverID}}, nil
}

// GetVolume mocks volume lookup.
func (m *MockClient) GetVolume(ctx context.Context, name string) (*hcloud.Volume, error) {
	if m.GetVolumeFunc != nil {
		return m.GetVolumeFunc(ctx, name)
	}
	return &hcloud.Volume{ID: 1, Name: name}, nil
}

// DeleteVolume mocks volume deletion.
func (m *MockClient) DeleteVolume(ctx context.Context, name string) error {
	if m.DeleteVolumeFunc != nil {
		return m.DeleteVolumeFunc(ctx, name)
	}
	return nil
}

// EnsureLoadBalancer mocks load balancer creation.
func (m *MockClient) EnsureLoadBalancer(ctx context.Context, name, location, lbType string, algorithm hcloud.LoadBalancerAlgorithmType, labels map[string]string) (*hcloud.LoadBalancer, error) {
	if m.EnsureLoadBalancerFunc != nil {
		return m.EnsureLoadBalancerFunc(ctx, name, location, lbType, algorithm, labels)
	}
	return &hcloud.LoadBalancer{ID: 1, Name: name}, nil
}

// ConfigureService mocks service configuration.
func (m *MockClient) ConfigureService(ctx context.Context, lb *hcloud.LoadBalancer, service hcloud.LoadBalancerAddServiceOpts) error {
	if m.ConfigureServiceFunc != nil {
		return m.ConfigureServiceFunc(ctx, lb, service)
	}
	return nil
}

// AddServerTarget mocks target registration.
func (m *MockClient) AddServerTarget(ctx context.Context, lb *hcloud.LoadBalancer, server *hcloud.Server, usePrivateIP bool) error {
	if m.AddServerTargetFunc != nil {
		return m.AddServerTargetFunc(ctx, lb, server, usePrivateIP)
	}
	return nil
}

// AttachToNetwork mocks network attachment.
func (m *MockClient) AttachToNetwork(ctx context.Context, lb *hcloud.LoadBalancer, network *hcloud.Network, ip net.IP) error {
	if m.AttachToNetworkFunc != nil {
		return m.AttachToNetworkFunc(ctx, lb, network, ip)
	}
	return nil
}

// LabelLoadBalancer mocks label updates.
func (m *MockClient) LabelLoadBalancer(ctx context.Context, lb *hcloud.LoadBalancer, labels map[string]string) error {
	if m.LabelLoadBalancerFunc != nil {
		return m.LabelLoadBalancerFunc(ctx, lb, labels)
	}
	return nil
}

// GetLoadBalancer mocks load balancer lookup.
func (m *MockClient) GetLoadBalancer(ctx context.Context, name string) (*hcloud.LoadBalancer, error) {
	if m.GetLoadBalancerFunc != nil {
		return m.GetLoadBalancerFunc(ctx, name)
	}
	return &hcloud.LoadBalancer{ID: 1, Name: name}, nil
}

// DeleteLoadBalancer mocks load balancer deletion.
func (m *MockClient) DeleteLoadBalancer(ctx context.Context, name string) error {
	if m.DeleteLoadBalancerFunc != nil {
		return m.DeleteLoadBalancerFunc(ctx, name)
	}
	return nil
}

// EnsureSSHKey mocks ssh key registration.
func (m *MockClient) EnsureSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (*hcloud.SSHKey, error) {
	if m.EnsureSSHKeyFunc != nil {
		return m.EnsureSSHKeyFunc(ctx, name, publicKey, labels)
	}
	return &hcloud.SSHKey{ID: 1, Name: name}, nil
}

// DeleteSSHKey mocks ssh key deletion.
func (m *MockClient) DeleteSSHKey(ctx context.Context, name string) error {
	if m.DeleteSSHKeyFunc != nil {
		return m.DeleteSSHKeyFunc(ctx, name)
	}
	return nil
}

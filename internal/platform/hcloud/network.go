package hcloud

import (
	"context"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// EnsureNetwork ensures the private network exists with the given range.
// A pre-existing network with a different range is a hard configuration
// error: adopting it would desync every address derived from the range.
func (c *RealClient) EnsureNetwork(ctx context.Context, name, ipRange string, labels map[string]string) (*hcloud.Network, error) {
	c.count("network.ensure")
	return (&EnsureOperation[*hcloud.Network, hcloud.NetworkCreateOpts]{
		Name:         name,
		ResourceType: "network",
		Get:          c.client.Network.Get,
		Create:       simpleCreate(c.client.Network.Create),
		Validate: func(network *hcloud.Network) error {
			if network.IPRange.String() != ipRange {
				return fmt.Errorf("network %s exists with IP range %s (expected %s)",
					name, network.IPRange.String(), ipRange)
			}
			return nil
		},
		CreateOptsMapper: func() hcloud.NetworkCreateOpts {
			_, ipNet, _ := net.ParseCIDR(ipRange)
			return hcloud.NetworkCreateOpts{
				Name:    name,
				IPRange: ipNet,
				Labels:  labels,
			}
		},
	}).Execute(ctx, c)
}

// EnsureSubnet ensures the cloud subnet exists in the given network.
func (c *RealClient) EnsureSubnet(ctx context.Context, network *hcloud.Network, ipRange, networkZone string) error {
	c.count("subnet.ensure")
	for _, subnet := range network.Subnets {
		if subnet.IPRange.String() == ipRange {
			return nil
		}
	}

	_, ipNet, err := net.ParseCIDR(ipRange)
	if err != nil {
		return fmt.Errorf("invalid subnet ip range: %w", err)
	}

	action, _, err := c.client.Network.AddSubnet(ctx, network, hcloud.NetworkAddSubnetOpts{
		Subnet: hcloud.NetworkSubnet{
			Type:        hcloud.NetworkSubnetTypeCloud,
			IPRange:     ipNet,
			NetworkZone: hcloud.NetworkZone(networkZone),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add subnet: %w", err)
	}

	if err := c.client.Action.WaitFor(ctx, action); err != nil {
		return fmt.Errorf("failed to wait for subnet creation: %w", err)
	}
	return nil
}

// GetNetwork returns the network with the given name, or nil.
func (c *RealClient) GetNetwork(ctx context.Context, name string) (*hcloud.Network, error) {
	c.count("network.get")
	network, _, err := c.client.Network.Get(ctx, name)
	return network, err
}

// DeleteNetwork deletes the network with the given name.
func (c *RealClient) DeleteNetwork(ctx context.Context, name string) error {
	c.count("network.delete")
	return (&DeleteOperation[*hcloud.Network]{
		Name:         name,
		ResourceType: "network",
		Get:          c.client.Network.Get,
		Delete:       c.client.Network.Delete,
	}).Execute(ctx, c)
}

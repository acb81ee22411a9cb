package hcloud

import (
	"context"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// EnsureLoadBalancer ensures the cluster load balancer exists. Creation
// can take several minutes on the Hetzner side; the caller's context
// bounds the wait.
func (c *RealClient) EnsureLoadBalancer(ctx context.Context, name, location, lbType string, algorithm hcloud.LoadBalancerAlgorithmType, labels map[string]string) (*hcloud.LoadBalancer, error) {
	c.count("load_balancer.ensure")

	lb, _, err := c.client.LoadBalancer.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get load balancer: %w", err)
	}
	if lb != nil {
		return lb, nil
	}

	lbTypeObj, _, err := c.client.LoadBalancerType.Get(ctx, lbType)
	if err != nil {
		return nil, fmt.Errorf("failed to get load balancer type: %w", err)
	}
	if lbTypeObj == nil {
		return nil, fmt.Errorf("load balancer type not found: %s", lbType)
	}
	locObj, _, err := c.client.Location.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	if locObj == nil {
		return nil, fmt.Errorf("location not found: %s", location)
	}

	res, _, err := c.client.LoadBalancer.Create(ctx, hcloud.LoadBalancerCreateOpts{
		Name:             name,
		LoadBalancerType: lbTypeObj,
		Location:         locObj,
		Algorithm:        &hcloud.LoadBalancerAlgorithm{Type: algorithm},
		Labels:           labels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create load balancer: %w", err)
	}
	if err := c.client.Action.WaitFor(ctx, res.Action); err != nil {
		return nil, fmt.Errorf("failed to wait for load balancer creation: %w", err)
	}

	return res.LoadBalancer, nil
}

// ConfigureService ensures a service listens on the given port. An
// existing service on the same port is left untouched.
func (c *RealClient) ConfigureService(ctx context.Context, lb *hcloud.LoadBalancer, service hcloud.LoadBalancerAddServiceOpts) error {
	c.count("load_balancer.add_service")

	if service.ListenPort == nil {
		return fmt.Errorf("listen port is nil")
	}
	for _, s := range lb.Services {
		if s.ListenPort == *service.ListenPort {
			return nil
		}
	}

	action, _, err := c.client.LoadBalancer.AddService(ctx, lb, service)
	if err != nil {
		return fmt.Errorf("failed to add service: %w", err)
	}
	return c.client.Action.WaitFor(ctx, action)
}

// AddServerTarget adds a server target to the load balancer.
func (c *RealClient) AddServerTarget(ctx context.Context, lb *hcloud.LoadBalancer, server *hcloud.Server, usePrivateIP bool) error {
	c.count("load_balancer.add_target")

	for _, target := range lb.Targets {
		if target.Type == hcloud.LoadBalancerTargetTypeServer &&
			target.Server != nil && target.Server.Server.ID == server.ID {
			return nil
		}
	}

	action, _, err := c.client.LoadBalancer.AddServerTarget(ctx, lb, hcloud.LoadBalancerAddServerTargetOpts{
		Server:       server,
		UsePrivateIP: hcloud.Ptr(usePrivateIP),
	})
	if err != nil {
		return fmt.Errorf("failed to add server target: %w", err)
	}
	return c.client.Action.WaitFor(ctx, action)
}

// AttachToNetwork attaches the load balancer to the private network with
// the given frontend address.
func (c *RealClient) AttachToNetwork(ctx context.Context, lb *hcloud.LoadBalancer, network *hcloud.Network, ip net.IP) error {
	c.count("load_balancer.attach_network")

	for _, privateNet := range lb.PrivateNet {
		if privateNet.Network.ID == network.ID {
			return nil
		}
	}

	action, _, err := c.client.LoadBalancer.AttachToNetwork(ctx, lb, hcloud.LoadBalancerAttachToNetworkOpts{
		Network: network,
		IP:      ip,
	})
	if err != nil {
		return fmt.Errorf("failed to attach load balancer to network: %w", err)
	}
	return c.client.Action.WaitFor(ctx, action)
}

// LabelLoadBalancer replaces the load balancer's labels.
func (c *RealClient) LabelLoadBalancer(ctx context.Context, lb *hcloud.LoadBalancer, labels map[string]string) error {
	c.count("load_balancer.update")

	_, _, err := c.client.LoadBalancer.Update(ctx, lb, hcloud.LoadBalancerUpdateOpts{
		Labels: labels,
	})
	if err != nil {
		return fmt.Errorf("failed to update load balancer labels: %w", err)
	}
	return nil
}

// GetLoadBalancer returns the load balancer with the given name, or nil.
func (c *RealClient) GetLoadBalancer(ctx context.Context, name string) (*hcloud.LoadBalancer, error) {
	c.count("load_balancer.get")
	lb, _, err := c.client.LoadBalancer.Get(ctx, name)
	return lb, err
}

// DeleteLoadBalancer deletes the load balancer with the given name.
func (c *RealClient) DeleteLoadBalancer(ctx context.Context, name string) error {
	c.count("load_balancer.delete")
	return (&DeleteOperation[*hcloud.LoadBalancer]{
		Name:         name,
		ResourceType: "load balancer",
		Get:          c.client.LoadBalancer.Get,
		Delete: func(ctx context.Context, lb *hcloud.LoadBalancer) (*hcloud.Response, error) {
			return c.client.LoadBalancer.Delete(ctx, lb)
		},
	}).Execute(ctx, c)
}

package hcloud

import (
	"context"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/larsan/pgha/internal/util/retry"
)

// CreateServer creates a database server. The server is created powered
// off, attached to the private network with its fixed address, and only
// then started, so the address is present from first boot.
func (c *RealClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (int64, error) {
	c.count("server.create")

	if (opts.NetworkID != 0) != (opts.PrivateIP != "") {
		return 0, fmt.Errorf("NetworkID and PrivateIP must both be provided or both be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ServerCreate)
	defer cancel()

	createOpts, err := c.buildServerCreateOpts(ctx, opts)
	if err != nil {
		return 0, err
	}

	result, err := c.createServerWithRetry(ctx, createOpts)
	if err != nil {
		return 0, err
	}

	if opts.NetworkID != 0 {
		if err := c.attachServerToNetwork(ctx, result.Server, opts.NetworkID, opts.PrivateIP); err != nil {
			return 0, err
		}
		if err := c.powerOnServer(ctx, result.Server); err != nil {
			return 0, err
		}
	}

	return result.Server.ID, nil
}

func (c *RealClient) buildServerCreateOpts(ctx context.Context, opts ServerCreateOpts) (hcloud.ServerCreateOpts, error) {
	serverType, _, err := c.client.ServerType.Get(ctx, opts.ServerType)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", opts.ServerType)
	}

	image, _, err := c.client.Image.GetForArchitecture(ctx, opts.Image, serverType.Architecture)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get image: %w", err)
	}
	if image == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("image not found: %s", opts.Image)
	}

	sshKeys, err := c.resolveSSHKeys(ctx, opts.SSHKeys)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	location, _, err := c.client.Location.Get(ctx, opts.Location)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get location: %w", err)
	}
	if location == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("location not found: %s", opts.Location)
	}

	var placementGroup *hcloud.PlacementGroup
	if opts.PlacementGroupID != nil {
		placementGroup = &hcloud.PlacementGroup{ID: *opts.PlacementGroupID}
	}

	var startAfterCreate *bool
	if opts.NetworkID != 0 {
		startAfterCreate = hcloud.Ptr(false)
	}

	return hcloud.ServerCreateOpts{
		Name:             opts.Name,
		ServerType:       serverType,
		Image:            image,
		SSHKeys:          sshKeys,
		Labels:           opts.Labels,
		UserData:         opts.UserData,
		Location:         location,
		PlacementGroup:   placementGroup,
		StartAfterCreate: startAfterCreate,
	}, nil
}

func (c *RealClient) resolveSSHKeys(ctx context.Context, names []string) ([]*hcloud.SSHKey, error) {
	keys := make([]*hcloud.SSHKey, 0, len(names))
	for _, name := range names {
		key, _, err := c.client.SSHKey.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get ssh key %s: %w", name, err)
		}
		if key == nil {
			return nil, fmt.Errorf("ssh key not found: %s", name)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (c *RealClient) createServerWithRetry(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error) {
	var result hcloud.ServerCreateResult

	err := retry.WithExponentialBackoff(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, opts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			c.countRetry("server.create")
			return err
		}
		result = res
		return nil
	}, retry.WithMaxRetries(c.timeouts.RetryMaxAttempts), retry.WithInitialDelay(c.timeouts.RetryInitialDelay))

	if err != nil {
		return result, fmt.Errorf("failed to create server: %w", err)
	}

	if err := c.client.Action.WaitFor(ctx, result.Action); err != nil {
		return result, fmt.Errorf("failed to wait for server creation: %w", err)
	}

	return result, nil
}

func (c *RealClient) attachServerToNetwork(ctx context.Context, server *hcloud.Server, networkID int64, privateIP string) error {
	ip := net.ParseIP(privateIP)
	if ip == nil {
		return fmt.Errorf("invalid private ip: %s", privateIP)
	}

	err := retry.WithExponentialBackoff(ctx, func() error {
		action, _, err := c.client.Server.AttachToNetwork(ctx, server, hcloud.ServerAttachToNetworkOpts{
			Network: &hcloud.Network{ID: networkID},
			IP:      ip,
		})
		if err != nil {
			if isResourceLocked(err) {
				return err
			}
			return retry.Fatal(err)
		}
		return c.client.Action.WaitFor(ctx, action)
	}, retry.WithMaxRetries(c.timeouts.RetryMaxAttempts), retry.WithInitialDelay(c.timeouts.RetryInitialDelay))

	if err != nil {
		return fmt.Errorf("failed to attach server to network: %w", err)
	}
	return nil
}

func (c *RealClient) powerOnServer(ctx context.Context, server *hcloud.Server) error {
	action, _, err := c.client.Server.Poweron(ctx, server)
	if err != nil {
		return fmt.Errorf("failed to power on server: %w", err)
	}
	if err := c.client.Action.WaitFor(ctx, action); err != nil {
		return fmt.Errorf("failed to wait for power on: %w", err)
	}
	return nil
}

// GetServerByName returns the server with the given name, or nil.
func (c *RealClient) GetServerByName(ctx context.Context, name string) (*hcloud.Server, error) {
	c.count("server.get")
	server, _, err := c.client.Server.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	return server, nil
}

// GetServersByLabel returns all servers matching the label selector.
func (c *RealClient) GetServersByLabel(ctx context.Context, labelSelector string) ([]*hcloud.Server, error) {
	c.count("server.list")
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labelSelector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return servers, nil
}

// DeleteServer deletes the server with the given name.
func (c *RealClient) DeleteServer(ctx context.Context, name string) error {
	c.count("server.delete")
	return (&DeleteOperation[*hcloud.Server]{
		Name:         name,
		ResourceType: "server",
		Get:          c.client.Server.Get,
		Delete: func(ctx context.Context, server *hcloud.Server) (*hcloud.Response, error) {
			_, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			return resp, err
		},
	}).Execute(ctx, c)
}

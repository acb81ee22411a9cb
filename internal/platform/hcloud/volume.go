package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// EnsureVolume ensures a volume of the given size exists attached to the
// server. The volume is created formatted but not automounted; mount
// points and fstab entries are managed on the host.
func (c *RealClient) EnsureVolume(ctx context.Context, name string, sizeGB int, serverID int64, labels map[string]string) (*hcloud.Volume, error) {
	c.count("volume.ensure")
	return (&EnsureOperation[*hcloud.Volume, hcloud.VolumeCreateOpts]{
		Name:         name,
		ResourceType: "volume",
		Get:          c.client.Volume.Get,
		Create:       c.createVolume,
		Validate: func(volume *hcloud.Volume) error {
			if volume.Size < sizeGB {
				return fmt.Errorf("volume %s exists with size %dGB (expected at least %dGB)",
					name, volume.Size, sizeGB)
			}
			if volume.Server == nil || volume.Server.ID != serverID {
				return fmt.Errorf("volume %s is not attached to server %d", name, serverID)
			}
			return nil
		},
		CreateOptsMapper: func() hcloud.VolumeCreateOpts {
			return hcloud.VolumeCreateOpts{
				Name:      name,
				Size:      sizeGB,
				Server:    &hcloud.Server{ID: serverID},
				Labels:    labels,
				Automount: hcloud.Ptr(false),
				Format:    hcloud.Ptr("ext4"),
			}
		},
	}).Execute(ctx, c)
}

func (c *RealClient) createVolume(ctx context.Context, opts hcloud.VolumeCreateOpts) (*CreateResult[*hcloud.Volume], *hcloud.Response, error) {
	res, resp, err := c.client.Volume.Create(ctx, opts)
	if err != nil {
		return nil, resp, err
	}
	actions := res.NextActions
	if res.Action != nil {
		actions = append([]*hcloud.Action{res.Action}, actions...)
	}
	return &CreateResult[*hcloud.Volume]{
		Resource: res.Volume,
		Actions:  actions,
	}, resp, nil
}

// GetVolume returns the volume with the given name, or nil.
func (c *RealClient) GetVolume(ctx context.Context, name string) (*hcloud.Volume, error) {
	c.count("volume.get")
	volume, _, err := c.client.Volume.Get(ctx, name)
	return volume, err
}

// DeleteVolume detaches and deletes the volume with the given name.
func (c *RealClient) DeleteVolume(ctx context.Context, name string) error {
	c.count("volume.delete")

	volume, _, err := c.client.Volume.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get volume: %w", err)
	}
	if volume == nil {
		return nil
	}

	if volume.Server != nil {
		action, _, err := c.client.Volume.Detach(ctx, volume)
		if err != nil && !IsNotFound(err) {
			return fmt.Errorf("failed to detach volume: %w", err)
		}
		if action != nil {
			if err := c.client.Action.WaitFor(ctx, action); err != nil {
				return fmt.Errorf("failed to wait for volume detach: %w", err)
			}
		}
	}

	return (&DeleteOperation[*hcloud.Volume]{
		Name:         name,
		ResourceType: "volume",
		Get:          c.client.Volume.Get,
		Delete:       c.client.Volume.Delete,
	}).Execute(ctx, c)
}

package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// EnsurePlacementGroup ensures the placement group exists. An existing
// group with a different type cannot be adopted; the anti-affinity
// guarantee would silently vanish.
func (c *RealClient) EnsurePlacementGroup(ctx context.Context, name, pgType string, labels map[string]string) (*hcloud.PlacementGroup, error) {
	c.count("placement_group.ensure")
	return (&EnsureOperation[*hcloud.PlacementGroup, hcloud.PlacementGroupCreateOpts]{
		Name:         name,
		ResourceType: "placement group",
		Get:          c.client.PlacementGroup.Get,
		Create:       c.createPlacementGroup,
		Validate: func(pg *hcloud.PlacementGroup) error {
			if string(pg.Type) != pgType {
				return fmt.Errorf("placement group %s exists with type %s (expected %s)",
					name, pg.Type, pgType)
			}
			return nil
		},
		CreateOptsMapper: func() hcloud.PlacementGroupCreateOpts {
			return hcloud.PlacementGroupCreateOpts{
				Name:   name,
				Type:   hcloud.PlacementGroupType(pgType),
				Labels: labels,
			}
		},
	}).Execute(ctx, c)
}

func (c *RealClient) createPlacementGroup(ctx context.Context, opts hcloud.PlacementGroupCreateOpts) (*CreateResult[*hcloud.PlacementGroup], *hcloud.Response, error) {
	res, resp, err := c.client.PlacementGroup.Create(ctx, opts)
	if err != nil {
		return nil, resp, err
	}
	return &CreateResult[*hcloud.PlacementGroup]{
		Resource: res.PlacementGroup,
		Action:   res.Action,
	}, resp, nil
}

// GetPlacementGroup returns the placement group with the given name, or nil.
func (c *RealClient) GetPlacementGroup(ctx context.Context, name string) (*hcloud.PlacementGroup, error) {
	c.count("placement_group.get")
	pg, _, err := c.client.PlacementGroup.Get(ctx, name)
	return pg, err
}

// DeletePlacementGroup deletes the placement group with the given name.
func (c *RealClient) DeletePlacementGroup(ctx context.Context, name string) error {
	c.count("placement_group.delete")
	return (&DeleteOperation[*hcloud.PlacementGroup]{
		Name:         name,
		ResourceType: "placement group",
		Get:          c.client.PlacementGroup.Get,
		Delete:       c.client.PlacementGroup.Delete,
	}).Execute(ctx, c)
}

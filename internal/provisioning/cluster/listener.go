package cluster

import (
	"fmt"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/labels"
	"github.com/larsan/pgha/internal/util/naming"
)

// BindListener stamps the listener name onto the load balancer and
// waits until the probe reports a healthy primary behind it. Clients
// resolve the listener by this label; it only appears once the cluster
// actually answers.
func (c *Configurator) BindListener(ctx *provisioning.Context) error {
	lb := ctx.State.LoadBalancer
	if lb == nil {
		return fmt.Errorf("no load balancer in state; configure it first")
	}

	listener := naming.Listener(ctx.Config.ClusterName)
	listenerLabels := labels.NewBuilder(ctx.Config.ClusterName, ctx.RunID).
		WithListener(listener).
		Build()

	if err := ctx.Infra.LabelLoadBalancer(ctx, lb, listenerLabels); err != nil {
		return err
	}

	provisioning.LogWaiting(ctx.Observer, phase, "primary passing listener probe", ctx.Timeouts.Listener)
	if err := c.waitForHealthyTarget(ctx, lb.Name); err != nil {
		return err
	}

	ctx.Observer.Printf("listener %s bound to %s", listener, ctx.State.ListenerIP)
	return nil
}

// waitForHealthyTarget polls the load balancer until exactly one
// backend target reports healthy. Two healthy targets would mean a
// standby answering the probe, which is as wrong as none.
func (c *Configurator) waitForHealthyTarget(ctx *provisioning.Context, lbName string) error {
	deadline := time.Now().Add(ctx.Timeouts.Listener)

	for {
		lb, err := ctx.Infra.GetLoadBalancer(ctx, lbName)
		if err != nil {
			return err
		}
		if lb != nil && healthyTargets(lb) == 1 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("listener did not report a single healthy primary within %v (healthy targets: %d)",
				ctx.Timeouts.Listener, healthyTargets(lb))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func healthyTargets(lb *hcloud.LoadBalancer) int {
	if lb == nil {
		return 0
	}
	healthy := 0
	for _, target := range lb.Targets {
		for _, hs := range target.HealthStatus {
			if hs.Status == hcloud.LoadBalancerTargetHealthStatusStatusHealthy {
				healthy++
				break
			}
		}
	}
	return healthy
}

package hcloud

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/metrics"
)

// RealClient implements InfrastructureManager using the Hetzner Cloud API.
type RealClient struct {
	client   *hcloud.Client
	timeouts *config.Timeouts
	recorder *metrics.Recorder
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) { c.timeouts = t }
}

// WithMetrics attaches a metrics recorder. Nil is allowed.
func WithMetrics(r *metrics.Recorder) ClientOption {
	return func(c *RealClient) { c.recorder = r }
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) { c.client = hc }
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:   hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("pgha", "")),
		timeouts: config.LoadTimeouts(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RealClient) count(operation string) {
	c.recorder.CountCall("hcloud", operation)
}

func (c *RealClient) countRetry(operation string) {
	c.recorder.CountRetry(operation)
}

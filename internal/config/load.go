package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads, defaults and validates the configuration from a YAML
// file. Unknown keys are an error, so a misspelled field surfaces
// instead of silently falling back to its default.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields with their defaults. The subnet is
// derived from the parent network range when not given explicitly.
func (c *Config) ApplyDefaults() {
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	if c.Network.Zone == "" {
		c.Network.Zone = DefaultNetworkZone
	}
	if c.Network.IPv4CIDR == "" {
		c.Network.IPv4CIDR = DefaultNetworkCIDR
	}
	if c.Network.SubnetCIDR == "" {
		// First /24 inside the parent range.
		if subnet, err := CIDRSubnet(c.Network.IPv4CIDR, 8, 1); err == nil {
			c.Network.SubnetCIDR = subnet
		}
	}
	if c.Nodes.ServerType == "" {
		c.Nodes.ServerType = DefaultServerType
	}
	if c.Nodes.Image == "" {
		c.Nodes.Image = DefaultImage
	}
	if c.Nodes.Volumes.Data == 0 {
		c.Nodes.Volumes.Data = DefaultDataVolumeGB
	}
	if c.Nodes.Volumes.WAL == 0 {
		c.Nodes.Volumes.WAL = DefaultWALVolumeGB
	}
	if c.Nodes.Volumes.Temp == 0 {
		c.Nodes.Volumes.Temp = DefaultTempVolumeGB
	}
	if c.Postgres.Version == "" {
		c.Postgres.Version = DefaultPostgresVersion
	}
	if c.Postgres.Database == "" {
		c.Postgres.Database = DefaultDatabase
	}
	if c.Postgres.AdminUser == "" {
		c.Postgres.AdminUser = DefaultAdminUser
	}
	if c.Postgres.ReplicationUser == "" {
		c.Postgres.ReplicationUser = DefaultReplicationUser
	}
	if c.Postgres.MaxReplayLagBytes == 0 {
		c.Postgres.MaxReplayLagBytes = DefaultMaxReplayLagBytes
	}
	if c.SSHUser == "" {
		c.SSHUser = DefaultSSHUser
	}
	if c.Secrets.Bucket == "" && c.ClusterName != "" {
		c.Secrets.Bucket = c.ClusterName + "-secrets"
	}
}

// NodePrivateIP returns the fixed private address for the given node role.
func (c *Config) NodePrivateIP(role string) (string, error) {
	switch role {
	case NodeA:
		return CIDRHost(c.Network.SubnetCIDR, NodeAHostNum)
	case NodeB:
		return CIDRHost(c.Network.SubnetCIDR, NodeBHostNum)
	default:
		return "", fmt.Errorf("unknown node role: %s", role)
	}
}

// ListenerIP returns the load balancer's static frontend address inside the
// subnet.
func (c *Config) ListenerIP() (string, error) {
	return CIDRHost(c.Network.SubnetCIDR, LoadBalancerHostNum)
}

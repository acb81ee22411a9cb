package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// clusterNameRegex: 1-24 lowercase alphanumeric characters or hyphens,
// starting and ending alphanumeric. The name prefixes every cloud resource,
// so it is kept short to leave room for role suffixes.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,22}[a-z0-9])?$`)

// Validate checks the configuration for hard errors. Defaults must have
// been applied first.
func (c *Config) Validate() error {
	var errs []string

	if c.ClusterName == "" {
		errs = append(errs, "cluster_name is required")
	} else if !clusterNameRegex.MatchString(c.ClusterName) {
		errs = append(errs, fmt.Sprintf("cluster_name %q must be 1-24 lowercase alphanumeric characters or hyphens", c.ClusterName))
	}

	if c.Location == "" {
		errs = append(errs, "location is required (e.g. 'fsn1', 'nbg1')")
	}
	if c.Network.Zone == "" {
		errs = append(errs, "network.zone is required (e.g. 'eu-central')")
	}

	if err := validateIPv4CIDR(c.Network.IPv4CIDR); err != nil {
		errs = append(errs, fmt.Sprintf("network.ipv4_cidr: %v", err))
	}
	if err := validateIPv4CIDR(c.Network.SubnetCIDR); err != nil {
		errs = append(errs, fmt.Sprintf("network.subnet_cidr: %v", err))
	} else if err := validateSubnetWithin(c.Network.IPv4CIDR, c.Network.SubnetCIDR); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Nodes.ServerType == "" {
		errs = append(errs, "nodes.server_type is required")
	}
	if c.Nodes.Image == "" {
		errs = append(errs, "nodes.image is required")
	}
	for role, size := range map[string]int{
		"data": c.Nodes.Volumes.Data,
		"wal":  c.Nodes.Volumes.WAL,
		"temp": c.Nodes.Volumes.Temp,
	} {
		if size < 10 {
			errs = append(errs, fmt.Sprintf("nodes.volumes.%s must be at least 10 GB, got %d", role, size))
		}
	}

	if c.Secrets.Endpoint == "" {
		errs = append(errs, "secrets.endpoint is required (S3-compatible object storage URL)")
	}
	if c.Secrets.Bucket == "" {
		errs = append(errs, "secrets.bucket is required")
	}

	if c.Postgres.AdminUser == c.Postgres.ReplicationUser {
		errs = append(errs, "postgres.admin_user and postgres.replication_user must differ")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func validateIPv4CIDR(cidr string) error {
	if cidr == "" {
		return fmt.Errorf("required")
	}
	ip, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR: %v", err)
	}
	if ip.To4() == nil {
		return fmt.Errorf("only IPv4 ranges are supported")
	}
	return nil
}

func validateSubnetWithin(parent, subnet string) error {
	_, parentNet, err := net.ParseCIDR(parent)
	if err != nil {
		return nil // already reported against the parent field
	}
	subnetIP, _, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil
	}
	if !parentNet.Contains(subnetIP) {
		return fmt.Errorf("network.subnet_cidr %s is not inside network.ipv4_cidr %s", subnet, parent)
	}
	return nil
}

package config

// Config is the deployment context for a two-node cluster. It is read from
// YAML, defaulted and validated by LoadFile, and never mutated afterwards.
type Config struct {
	// ClusterName is the naming prefix for every cloud resource.
	ClusterName string `yaml:"cluster_name"`

	// Location is the Hetzner Cloud location (e.g. "fsn1", "nbg1").
	Location string `yaml:"location"`

	Network  NetworkConfig  `yaml:"network"`
	Nodes    NodeConfig     `yaml:"nodes"`
	Postgres PostgresConfig `yaml:"postgres"`
	Secrets  SecretsConfig  `yaml:"secrets"`

	// SSHUser is the administrative user configuration scripts run as.
	SSHUser string `yaml:"ssh_user"`
}

// NetworkConfig describes the private network the cluster lives in.
type NetworkConfig struct {
	// Zone is the Hetzner network zone (e.g. "eu-central").
	Zone string `yaml:"zone"`

	// IPv4CIDR is the parent network range.
	IPv4CIDR string `yaml:"ipv4_cidr"`

	// SubnetCIDR is the cloud subnet holding both nodes and the load
	// balancer frontend. Derived from IPv4CIDR when empty.
	SubnetCIDR string `yaml:"subnet_cidr"`
}

// NodeConfig describes the two database servers.
type NodeConfig struct {
	// ServerType is the Hetzner server type (e.g. "cx32").
	ServerType string `yaml:"server_type"`

	// Image is the OS image name (e.g. "debian-12").
	Image string `yaml:"image"`

	// Volumes sizes the attached data volumes, in GB, per role.
	Volumes VolumeSizes `yaml:"volumes"`
}

// VolumeSizes holds per-role volume sizes in GB. The OS disk is part of the
// server itself; data, WAL and temp live on separate attached volumes.
type VolumeSizes struct {
	Data int `yaml:"data"`
	WAL  int `yaml:"wal"`
	Temp int `yaml:"temp"`
}

// PostgresConfig describes the database engine being clustered.
type PostgresConfig struct {
	// Version is the major version installed by cloud-init (e.g. "16").
	Version string `yaml:"version"`

	// Database is the application database created on the primary.
	Database string `yaml:"database"`

	// AdminUser is the administrative role name. The password is always
	// generated and stored in the secret store, never configured here.
	AdminUser string `yaml:"admin_user"`

	// ReplicationUser is the role the standby streams WAL as.
	ReplicationUser string `yaml:"replication_user"`

	// MaxReplayLagBytes is the validator's threshold for standby lag.
	MaxReplayLagBytes int64 `yaml:"max_replay_lag_bytes"`
}

// SecretsConfig locates the S3-compatible object store holding generated
// credentials. Access keys come from the environment, never from this file.
type SecretsConfig struct {
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Bucket   string `yaml:"bucket"`
}

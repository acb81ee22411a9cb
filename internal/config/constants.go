package config

// Well-known ports, referenced consistently by provisioning, cluster
// configuration and validation. Streaming replication shares the client
// port; the probe port is deliberately not the database port so that the
// load balancer only ever routes to the node answering as primary.
const (
	// SSHPort is the remote administration port.
	SSHPort = 22

	// PostgresPort is the client and replication port.
	PostgresPort = 5432

	// ProbePort is the TCP health probe port answered by the management
	// agent only while the local node is the primary.
	ProbePort = 8008
)

// Node roles. Exactly two nodes exist per cluster.
const (
	NodeA = "node-a"
	NodeB = "node-b"
)

// Secret object names, stored under <cluster>/<runid>/ in the bucket.
const (
	SecretAdminUser           = "admin-user"
	SecretAdminPassword       = "admin-password"
	SecretReplicationPassword = "replication-password"
)

// Defaults applied by LoadFile.
const (
	DefaultLocation        = "fsn1"
	DefaultNetworkZone     = "eu-central"
	DefaultNetworkCIDR     = "10.70.0.0/16"
	DefaultServerType      = "cx32"
	DefaultImage           = "debian-12"
	DefaultSSHUser         = "root"
	DefaultPostgresVersion = "16"
	DefaultDatabase        = "app"
	DefaultAdminUser       = "pgha_admin"
	DefaultReplicationUser = "pgha_repl"
	DefaultDataVolumeGB    = 50
	DefaultWALVolumeGB     = 20
	DefaultTempVolumeGB    = 10

	// DefaultMaxReplayLagBytes is the validator's standby lag threshold.
	DefaultMaxReplayLagBytes = 16 << 20
)

// Host numbers inside the subnet. The load balancer frontend sits at the
// top of the range so node addresses can grow upwards from the bottom.
const (
	NodeAHostNum        = 11
	NodeBHostNum        = 12
	LoadBalancerHostNum = -2
)

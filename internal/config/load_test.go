package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgha.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Minimal(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
cluster_name: orders-db
secrets:
  endpoint: https://fsn1.your-objectstorage.com
  region: fsn1
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "orders-db", cfg.ClusterName)
	assert.Equal(t, DefaultLocation, cfg.Location)
	assert.Equal(t, DefaultNetworkCIDR, cfg.Network.IPv4CIDR)
	assert.Equal(t, "10.70.1.0/24", cfg.Network.SubnetCIDR)
	assert.Equal(t, DefaultServerType, cfg.Nodes.ServerType)
	assert.Equal(t, DefaultDataVolumeGB, cfg.Nodes.Volumes.Data)
	assert.Equal(t, "orders-db-secrets", cfg.Secrets.Bucket)
	assert.Equal(t, DefaultAdminUser, cfg.Postgres.AdminUser)
	assert.Equal(t, int64(DefaultMaxReplayLagBytes), cfg.Postgres.MaxReplayLagBytes)
}

func TestLoadFile_ExplicitValues(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
cluster_name: billing
location: nbg1
network:
  ipv4_cidr: 10.9.0.0/16
  subnet_cidr: 10.9.5.0/24
nodes:
  server_type: cx42
  image: debian-13
  volumes:
    data: 100
    wal: 40
    temp: 20
postgres:
  version: "17"
  database: billing
secrets:
  endpoint: https://nbg1.your-objectstorage.com
  region: nbg1
  bucket: billing-vault
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "nbg1", cfg.Location)
	assert.Equal(t, "10.9.5.0/24", cfg.Network.SubnetCIDR)
	assert.Equal(t, "cx42", cfg.Nodes.ServerType)
	assert.Equal(t, 100, cfg.Nodes.Volumes.Data)
	assert.Equal(t, "billing-vault", cfg.Secrets.Bucket)
	assert.Equal(t, "17", cfg.Postgres.Version)
}

func TestLoadFile_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
cluster_name: orders-db
server_type: cx42
secrets:
  endpoint: https://fsn1.your-objectstorage.com
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server_type")
}

func TestLoadFile_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "cluster_name: [unclosed")
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_ValidationFailure(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
cluster_name: "Bad_Name!"
secrets:
  endpoint: https://fsn1.your-objectstorage.com
`)
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster_name")
}

func TestNodePrivateIP(t *testing.T) {
	t.Parallel()
	cfg := &Config{ClusterName: "t", Network: NetworkConfig{SubnetCIDR: "10.70.1.0/24"}}

	a, err := cfg.NodePrivateIP(NodeA)
	require.NoError(t, err)
	b, err := cfg.NodePrivateIP(NodeB)
	require.NoError(t, err)
	lb, err := cfg.ListenerIP()
	require.NoError(t, err)

	assert.Equal(t, "10.70.1.11", a)
	assert.Equal(t, "10.70.1.12", b)
	assert.Equal(t, "10.70.1.254", lb)

	_, err = cfg.NodePrivateIP("node-c")
	require.Error(t, err)
}

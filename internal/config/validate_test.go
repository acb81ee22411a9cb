package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{
		ClusterName: "orders-db",
		Secrets: SecretsConfig{
			Endpoint: "https://fsn1.your-objectstorage.com",
			Region:   "fsn1",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing cluster name",
			mutate:  func(c *Config) { c.ClusterName = "" },
			wantMsg: "cluster_name is required",
		},
		{
			name:    "uppercase cluster name",
			mutate:  func(c *Config) { c.ClusterName = "Orders" },
			wantMsg: "lowercase",
		},
		{
			name:    "cluster name too long",
			mutate:  func(c *Config) { c.ClusterName = strings.Repeat("a", 30) },
			wantMsg: "lowercase",
		},
		{
			name:    "subnet outside parent",
			mutate:  func(c *Config) { c.Network.SubnetCIDR = "192.168.1.0/24" },
			wantMsg: "not inside",
		},
		{
			name:    "volume too small",
			mutate:  func(c *Config) { c.Nodes.Volumes.WAL = 5 },
			wantMsg: "at least 10 GB",
		},
		{
			name:    "missing secrets endpoint",
			mutate:  func(c *Config) { c.Secrets.Endpoint = "" },
			wantMsg: "secrets.endpoint",
		},
		{
			name:    "admin equals replication user",
			mutate:  func(c *Config) { c.Postgres.ReplicationUser = c.Postgres.AdminUser },
			wantMsg: "must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNewRunID(t *testing.T) {
	t.Parallel()
	id := NewRunID()
	require.NoError(t, ValidateRunID(id))
	assert.Len(t, id, 8)

	// Distinct runs get distinct identities.
	assert.NotEqual(t, id, NewRunID())
}

func TestValidateRunID_Rejects(t *testing.T) {
	t.Parallel()
	for _, bad := range []string{"", "short", "UPPERCAS", "20240813-120000", "zzzzzzzz"} {
		assert.Error(t, ValidateRunID(bad), bad)
	}
}

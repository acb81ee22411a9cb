package wizard

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsan/pgha/internal/config"
)

func TestValidateClusterName(t *testing.T) {
	t.Parallel()

	valid := []string{"pg", "my-cluster", "a1234"}
	for _, name := range valid {
		assert.NoError(t, validateClusterName(name), name)
	}

	invalid := []string{"", "PG", "1pg", "-pg", "a", "with space", "way-too-long-cluster-name-over-32-chars"}
	for _, name := range invalid {
		assert.Error(t, validateClusterName(name), name)
	}
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateEndpoint("https://fsn1.your-objectstorage.com"))
	assert.Error(t, validateEndpoint("http://insecure.example.com"))
	assert.Error(t, validateEndpoint("fsn1.your-objectstorage.com"))
}

func TestToConfigRoundTrip(t *testing.T) {
	t.Parallel()

	result := &Result{
		ClusterName:     "pg",
		Location:        "nbg1",
		ServerType:      "cx42",
		PostgresVersion: "15",
		DataVolumeGB:    250,
		SecretsEndpoint: "https://nbg1.your-objectstorage.com",
	}

	path := filepath.Join(t.TempDir(), "pgha.yaml")
	require.NoError(t, WriteYAML(result.ToConfig(), path))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "pg", cfg.ClusterName)
	assert.Equal(t, "nbg1", cfg.Location)
	assert.Equal(t, "cx42", cfg.Nodes.ServerType)
	assert.Equal(t, "15", cfg.Postgres.Version)
	assert.Equal(t, 250, cfg.Nodes.Volumes.Data)
	// Defaults fill what the wizard leaves out.
	assert.Equal(t, config.DefaultWALVolumeGB, cfg.Nodes.Volumes.WAL)
	assert.Equal(t, "pg-secrets", cfg.Secrets.Bucket)
}

package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	"github.com/larsan/pgha/internal/provisioning"
)

func TestConfigure(t *testing.T) {
	restoreFactories(t)
	stubEnvironment(t, newFakeSecrets())

	attachRemote = func(pctx *provisioning.Context, _ *handoff.Record) error {
		pctx.Remote = &fakeRemote{}
		return nil
	}

	var ranPhases []string
	var seededPrimaryIP string
	runPhases = func(pctx *provisioning.Context, phases []provisioning.Phase) error {
		for _, phase := range phases {
			ranPhases = append(ranPhases, phase.Name())
		}
		seededPrimaryIP = pctx.State.PrivateIPs[config.NodeA]
		pctx.State.ListenerIP = "10.70.1.254"
		return nil
	}

	err := Configure(context.Background(), "pgha.yaml", "pgha-handoff.env")
	require.NoError(t, err)

	assert.Equal(t, []string{"cluster"}, ranPhases)
	assert.Equal(t, "10.70.1.11", seededPrimaryIP)
}

func TestConfigure_RejectsForeignHandoff(t *testing.T) {
	restoreFactories(t)
	stubEnvironment(t, newFakeSecrets())

	loadHandoff = func(string) (*handoff.Record, error) {
		record := stubRecord()
		record.ClusterName = "other"
		return record, nil
	}

	err := Configure(context.Background(), "pgha.yaml", "pgha-handoff.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other")
}

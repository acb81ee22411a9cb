package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	"github.com/larsan/pgha/internal/platform/postgres"
	"github.com/larsan/pgha/internal/provisioning"
)

func TestFailover_Planned(t *testing.T) {
	restoreFactories(t)

	secrets := newFakeSecrets()
	secrets.objects["pg/ab12cd34/admin-password"] = "pw"
	secrets.objects["pg/ab12cd34/replication-password"] = "rpw"
	stubEnvironment(t, secrets)

	connectAdmin = connectFakes(map[string]*fakeAdmin{
		"10.70.1.11": {standby: &postgres.ReplicaStatus{
			ApplicationName: config.NodeB, State: "streaming", SyncState: "sync",
		}},
		"10.70.1.12": {inRecovery: true},
	})
	attachRemote = func(pctx *provisioning.Context, _ *handoff.Record) error {
		pctx.Remote = &fakeRemote{}
		return nil
	}

	err := Failover(context.Background(), "pgha.yaml", "pgha-handoff.env", false, false)
	require.NoError(t, err)
}

func TestFailover_ForcedNeedsConsent(t *testing.T) {
	restoreFactories(t)
	stubEnvironment(t, newFakeSecrets())

	attachRemote = func(pctx *provisioning.Context, _ *handoff.Record) error {
		pctx.Remote = &fakeRemote{}
		return nil
	}

	err := Failover(context.Background(), "pgha.yaml", "pgha-handoff.env", true, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--accept-data-loss")
}

func TestFailover_RejectsForeignHandoff(t *testing.T) {
	restoreFactories(t)
	stubEnvironment(t, newFakeSecrets())

	loadHandoff = func(string) (*handoff.Record, error) {
		record := stubRecord()
		record.ClusterName = "other"
		return record, nil
	}

	// A mismatched handoff must be rejected before any node is touched.
	attachRemote = func(*provisioning.Context, *handoff.Record) error {
		t.Fatal("no SSH connection may be made for a foreign handoff")
		return nil
	}

	err := Failover(context.Background(), "pgha.yaml", "pgha-handoff.env", false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other")
}

package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	"github.com/larsan/pgha/internal/metrics"
	hcloudplatform "github.com/larsan/pgha/internal/platform/hcloud"
	"github.com/larsan/pgha/internal/platform/postgres"
	"github.com/larsan/pgha/internal/provisioning"
)

// restoreFactories resets every factory variable after a test.
func restoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfigFile
	origLoadHandoff := loadHandoff
	origInfra := newInfraClient
	origSecrets := newSecretStore
	origConnect := connectAdmin
	origRunPhases := runPhases
	origAttach := attachRemote
	origRunID := newRunID
	origKeyPair := generateKeyPair
	origSave := saveHandoff
	origWrite := writeFile
	origRead := readFile
	t.Cleanup(func() {
		loadConfigFile = origLoadConfig
		loadHandoff = origLoadHandoff
		newInfraClient = origInfra
		newSecretStore = origSecrets
		connectAdmin = origConnect
		runPhases = origRunPhases
		attachRemote = origAttach
		newRunID = origRunID
		generateKeyPair = origKeyPair
		saveHandoff = origSave
		writeFile = origWrite
		readFile = origRead
	})
}

func stubConfig() *config.Config {
	cfg := &config.Config{
		ClusterName: "pg",
		Secrets: config.SecretsConfig{
			Endpoint: "https://fsn1.your-objectstorage.com",
			Bucket:   "pg-secrets",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func stubRecord() *handoff.Record {
	return &handoff.Record{
		ClusterName:    "pg",
		RunID:          "ab12cd34",
		NodeAName:      "pg-ab12cd34-node-a",
		NodeAPublicIP:  "203.0.113.10",
		NodeAPrivateIP: "10.70.1.11",
		NodeBName:      "pg-ab12cd34-node-b",
		NodeBPublicIP:  "203.0.113.11",
		NodeBPrivateIP: "10.70.1.12",
		ListenerIP:     "10.70.1.254",
		SecretsPrefix:  "pg/ab12cd34",
	}
}

// stubEnvironment wires the common factories to offline fakes.
func stubEnvironment(t *testing.T, secrets provisioning.SecretStore) {
	t.Helper()
	t.Setenv("HCLOUD_TOKEN", "test-token")

	loadConfigFile = func(string) (*config.Config, error) { return stubConfig(), nil }
	loadHandoff = func(string) (*handoff.Record, error) { return stubRecord(), nil }
	newInfraClient = func(string, *metrics.Recorder) hcloudplatform.InfrastructureManager {
		return &hcloudplatform.MockClient{}
	}
	newSecretStore = func(*config.Config, *metrics.Recorder) (provisioning.SecretStore, error) {
		return secrets, nil
	}
}

type fakeSecrets struct {
	objects map[string]string
}

func newFakeSecrets() *fakeSecrets {
	return &fakeSecrets{objects: map[string]string{}}
}

func (f *fakeSecrets) EnsureBucket(context.Context) error                      { return nil }
func (f *fakeSecrets) ConfirmWriteAccess(context.Context, time.Duration) error { return nil }
func (f *fakeSecrets) PutSecret(_ context.Context, k, v string) error {
	f.objects[k] = v
	return nil
}
func (f *fakeSecrets) GetSecret(_ context.Context, k string) (string, error) {
	v, ok := f.objects[k]
	if !ok {
		return "", fmt.Errorf("secret %s not found", k)
	}
	return v, nil
}
func (f *fakeSecrets) ListSecrets(context.Context, string) ([]string, error) { return nil, nil }
func (f *fakeSecrets) DeletePrefix(context.Context, string) error            { return nil }
func (f *fakeSecrets) DeleteBucket(context.Context) error                    { return nil }

type fakeAdmin struct {
	inRecovery bool
	standby    *postgres.ReplicaStatus
}

func (f *fakeAdmin) Ping(context.Context) error                 { return nil }
func (f *fakeAdmin) IsInRecovery(context.Context) (bool, error) { return f.inRecovery, nil }
func (f *fakeAdmin) ReplicationStatus(context.Context) ([]postgres.ReplicaStatus, error) {
	return nil, nil
}
func (f *fakeAdmin) SyncStandby(context.Context) (*postgres.ReplicaStatus, error) {
	return f.standby, nil
}
func (f *fakeAdmin) ReplayLagBytes(context.Context) (int64, error)                  { return 0, nil }
func (f *fakeAdmin) Checkpoint(context.Context) error                               { return nil }
func (f *fakeAdmin) Promote(context.Context) error                                  { return nil }
func (f *fakeAdmin) WaitForPrimaryReady(context.Context, time.Duration) error       { return nil }
func (f *fakeAdmin) WaitForSyncStandby(context.Context, time.Duration, int64) error { return nil }
func (f *fakeAdmin) WaitForPromotion(context.Context, time.Duration) error          { return nil }
func (f *fakeAdmin) Close()                                                         {}

type fakeRemote struct {
	output string
}

func (f *fakeRemote) Run(context.Context, string, string) (string, error) { return f.output, nil }
func (f *fakeRemote) WaitReady(context.Context, string) error             { return nil }

func TestNewStageContext_RequiresToken(t *testing.T) {
	restoreFactories(t)
	t.Setenv("HCLOUD_TOKEN", "")

	_, err := newStageContext(context.Background(), stubConfig(), "ab12cd34")
	require.Error(t, err)
	require.Contains(t, err.Error(), "HCLOUD_TOKEN")
}

// Package handlers implements the business logic for CLI commands.
// Handlers are framework-agnostic; the commands package only parses
// flags and delegates here.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	"github.com/larsan/pgha/internal/metrics"
	hcloudplatform "github.com/larsan/pgha/internal/platform/hcloud"
	"github.com/larsan/pgha/internal/platform/postgres"
	"github.com/larsan/pgha/internal/platform/s3"
	sshplatform "github.com/larsan/pgha/internal/platform/ssh"
	"github.com/larsan/pgha/internal/provisioning"
)

// Default file locations, overridable per command.
const (
	DefaultConfigPath  = "pgha.yaml"
	DefaultHandoffPath = "pgha-handoff.env"
	DefaultSSHKeyPath  = "pgha-ssh.key"
)

// Environment variables carrying credentials. Tokens never live in the
// configuration file.
const (
	envHCloudToken = "HCLOUD_TOKEN"
	envS3AccessKey = "PGHA_S3_ACCESS_KEY"
	envS3SecretKey = "PGHA_S3_SECRET_KEY"
)

// Factory function variables - replaced in tests for dependency injection.
var (
	loadConfigFile = config.LoadFile

	loadHandoff = handoff.Load

	newInfraClient = func(token string, recorder *metrics.Recorder) hcloudplatform.InfrastructureManager {
		return hcloudplatform.NewRealClient(token, hcloudplatform.WithMetrics(recorder))
	}

	newSecretStore = func(cfg *config.Config, recorder *metrics.Recorder) (provisioning.SecretStore, error) {
		return s3.NewClient(
			cfg.Secrets.Endpoint,
			cfg.Secrets.Region,
			os.Getenv(envS3AccessKey),
			os.Getenv(envS3SecretKey),
			cfg.Secrets.Bucket,
			s3.WithMetrics(recorder),
		)
	}

	connectAdmin provisioning.AdminConnector = func(ctx context.Context, dsn string) (provisioning.DatabaseAdmin, error) {
		admin, err := postgres.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return admin, nil
	}

	runPhases = provisioning.RunPhases

	attachRemote = attachRemoteFromRecord
)

// MetricsAddr, when non-empty, exposes Prometheus metrics on that
// address for the duration of the command. Bound to --metrics-addr.
var MetricsAddr string

// newStageContext assembles the pipeline context every stage shares:
// cloud client from the environment token, secret store, metrics
// recorder and database connector.
func newStageContext(ctx context.Context, cfg *config.Config, runID string) (*provisioning.Context, error) {
	token := os.Getenv(envHCloudToken)
	if token == "" {
		return nil, fmt.Errorf("%s is not set", envHCloudToken)
	}

	recorder := metrics.NewRecorder()
	if MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, MetricsAddr); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
	}
	pctx := provisioning.NewContext(ctx, cfg, runID, newInfraClient(token, recorder))
	pctx.Metrics = recorder
	pctx.Connect = connectAdmin

	secrets, err := newSecretStore(cfg, recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to build secret store client: %w", err)
	}
	pctx.Secrets = secrets
	return pctx, nil
}

// attachRemoteFromRecord wires SSH access for stages that run after
// provisioning, using the addresses and key the handoff record names.
func attachRemoteFromRecord(pctx *provisioning.Context, record *handoff.Record) error {
	keyPath := record.SSHPrivateKeyPath
	if keyPath == "" {
		keyPath = DefaultSSHKeyPath
	}
	// #nosec G304
	privateKey, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read ssh key %s: %w", keyPath, err)
	}

	user := record.SSHUser
	if user == "" {
		user = pctx.Config.SSHUser
	}

	runner := sshplatform.NewRunner()
	hosts := map[string]string{
		config.NodeA: record.NodeAPublicIP,
		config.NodeB: record.NodeBPublicIP,
	}
	for role, addr := range hosts {
		client, err := sshplatform.NewClient(&sshplatform.Config{
			Host:       addr,
			Port:       config.SSHPort,
			User:       user,
			PrivateKey: privateKey,
		})
		if err != nil {
			return fmt.Errorf("failed to build ssh client for %s: %w", role, err)
		}
		runner.AddHost(role, client)
	}
	pctx.Remote = runner
	return nil
}

package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/provisioning/infrastructure"
	"github.com/larsan/pgha/internal/util/keygen"
	"github.com/larsan/pgha/internal/util/naming"
)

// Factory function variables for provision - replaced in tests.
var (
	newRunID        = config.NewRunID
	generateKeyPair = keygen.GenerateRSAKeyPair
	saveHandoff     = handoff.Save
	writeFile       = os.WriteFile
	readFile        = os.ReadFile
)

// Provision creates all cloud infrastructure for a run and writes the
// handoff record the later stages work from. When a handoff record for
// the same cluster already exists, or --run-id names an earlier run,
// its run ID is reused: every create is ensure-style, so the re-run
// picks up existing resources instead of provisioning a second cluster.
// The admin SSH key pair is persisted before any cloud resource exists,
// so a failed run can be retried with the same key.
func Provision(ctx context.Context, configPath, handoffPath, sshKeyPath, runID string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	if runID == "" {
		if record, err := loadHandoff(handoffPath); err == nil && record.ClusterName == cfg.ClusterName {
			runID = record.RunID
		}
	}
	if runID == "" {
		runID = newRunID()
	} else if err := config.ValidateRunID(runID); err != nil {
		return err
	}

	pctx, err := newStageContext(ctx, cfg, runID)
	if err != nil {
		return err
	}

	if err := seedSSHKeyPair(pctx, sshKeyPath); err != nil {
		return err
	}
	pctx.Remote = newLazyRunner(pctx.State, cfg.SSHUser)

	if err := runPhases(pctx, []provisioning.Phase{infrastructure.NewProvisioner()}); err != nil {
		return err
	}

	record, err := buildRecord(cfg, pctx, sshKeyPath)
	if err != nil {
		return err
	}
	if err := saveHandoff(handoffPath, record); err != nil {
		return err
	}

	fmt.Printf("\nProvisioned run %s. Handoff written to %s.\n", runID, handoffPath)
	fmt.Printf("Next: pgha configure --handoff %s\n", handoffPath)
	return nil
}

// seedSSHKeyPair loads the persisted admin key pair, generating and
// writing it on first use. Reruns after a partial failure keep the key
// the already-registered cloud resources expect.
func seedSSHKeyPair(pctx *provisioning.Context, keyPath string) error {
	pubPath := keyPath + ".pub"

	privateKey, privErr := readFile(keyPath)
	publicKey, pubErr := readFile(pubPath)
	if privErr == nil && pubErr == nil {
		pctx.State.SSHPrivateKey = privateKey
		pctx.State.SSHPublicKey = publicKey
		return nil
	}

	keyPair, err := generateKeyPair(4096)
	if err != nil {
		return fmt.Errorf("failed to generate ssh key pair: %w", err)
	}
	if err := writeFile(keyPath, keyPair.PrivateKey, 0o600); err != nil {
		return fmt.Errorf("failed to write ssh key: %w", err)
	}
	if err := writeFile(pubPath, keyPair.PublicKey, 0o644); err != nil {
		return fmt.Errorf("failed to write ssh public key: %w", err)
	}
	pctx.State.SSHPrivateKey = keyPair.PrivateKey
	pctx.State.SSHPublicKey = keyPair.PublicKey
	return nil
}

func buildRecord(cfg *config.Config, pctx *provisioning.Context, sshKeyPath string) (*handoff.Record, error) {
	prefix := naming.Prefix(cfg.ClusterName, pctx.RunID)
	listenerIP, err := cfg.ListenerIP()
	if err != nil {
		return nil, err
	}

	return &handoff.Record{
		ClusterName: cfg.ClusterName,
		RunID:       pctx.RunID,
		Location:    cfg.Location,

		NetworkName: naming.Network(prefix),
		SubnetCIDR:  cfg.Network.SubnetCIDR,

		NodeAName:      naming.Server(prefix, config.NodeA),
		NodeAPublicIP:  pctx.State.PublicIPs[config.NodeA],
		NodeAPrivateIP: pctx.State.PrivateIPs[config.NodeA],
		NodeBName:      naming.Server(prefix, config.NodeB),
		NodeBPublicIP:  pctx.State.PublicIPs[config.NodeB],
		NodeBPrivateIP: pctx.State.PrivateIPs[config.NodeB],

		LoadBalancerName: naming.LoadBalancer(prefix),
		ListenerIP:       listenerIP,

		SecretsBucket: cfg.Secrets.Bucket,
		SecretsPrefix: naming.SecretPrefix(cfg.ClusterName, pctx.RunID),

		SSHUser:           cfg.SSHUser,
		SSHPrivateKeyPath: sshKeyPath,
	}, nil
}

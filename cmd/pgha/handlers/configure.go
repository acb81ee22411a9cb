package handlers

import (
	"context"
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/provisioning/cluster"
)

// Configure turns the provisioned servers into a replicated pair behind
// the listener. It works entirely from the handoff record, so it can
// run from a different machine or long after provisioning.
func Configure(ctx context.Context, configPath, handoffPath string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}
	record, err := loadHandoff(handoffPath)
	if err != nil {
		return err
	}
	if record.ClusterName != cfg.ClusterName {
		return fmt.Errorf("handoff record is for cluster %s, config says %s", record.ClusterName, cfg.ClusterName)
	}

	pctx, err := newStageContext(ctx, cfg, record.RunID)
	if err != nil {
		return err
	}
	seedStateFromRecord(pctx, record)
	if err := attachRemote(pctx, record); err != nil {
		return err
	}

	if err := runPhases(pctx, []provisioning.Phase{cluster.NewConfigurator()}); err != nil {
		return err
	}

	fmt.Printf("\nCluster configured. Clients connect to %s:%d.\n", pctx.State.ListenerIP, config.PostgresPort)
	fmt.Printf("Next: pgha validate --handoff %s\n", handoffPath)
	return nil
}

func seedStateFromRecord(pctx *provisioning.Context, record *handoff.Record) {
	pctx.State.PublicIPs[config.NodeA] = record.NodeAPublicIP
	pctx.State.PublicIPs[config.NodeB] = record.NodeBPublicIP
	pctx.State.PrivateIPs[config.NodeA] = record.NodeAPrivateIP
	pctx.State.PrivateIPs[config.NodeB] = record.NodeBPrivateIP
	pctx.State.ListenerIP = record.ListenerIP
}

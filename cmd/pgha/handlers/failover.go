package handlers

import (
	"context"
	"fmt"

	"github.com/larsan/pgha/internal/provisioning/failover"
)

// Failover swaps the primary and standby roles. Planned is the default
// and lossless; forced abandons the old primary and requires explicit
// consent to data loss.
func Failover(ctx context.Context, configPath, handoffPath string, forced, acceptDataLoss bool) error {
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

	orchestrator := failover.NewOrchestrator(record)
	if forced {
		if err := orchestrator.Forced(pctx, acceptDataLoss); err != nil {
			return err
		}
	} else {
		if err := orchestrator.Planned(pctx); err != nil {
			return err
		}
	}

	fmt.Printf("\nFailover complete. Run pgha validate --handoff %s to confirm.\n", handoffPath)
	return nil
}

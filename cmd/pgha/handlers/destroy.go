package handlers

import (
	"context"
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning/destroy"
)

// Destroy tears down a run's infrastructure. The run is identified by
// the handoff record, or by an explicit --run-id when the record is
// gone.
func Destroy(ctx context.Context, configPath, handoffPath, runID string, purgeSecrets bool) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	if runID == "" {
		record, err := loadHandoff(handoffPath)
		if err != nil {
			return fmt.Errorf("no --run-id given and handoff record unusable: %w", err)
		}
		runID = record.RunID
	}
	if err := config.ValidateRunID(runID); err != nil {
		return err
	}

	pctx, err := newStageContext(ctx, cfg, runID)
	if err != nil {
		return err
	}

	if err := destroy.NewDestroyer(destroy.Options{PurgeSecrets: purgeSecrets}).Destroy(pctx); err != nil {
		return err
	}

	fmt.Printf("\nRun %s destroyed.\n", runID)
	return nil
}

package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/larsan/pgha/internal/provisioning/validate"
)

// reportWriter receives the rendered validation report.
var reportWriter io.Writer = os.Stdout

// Validate runs the health checks and prints the report. The returned
// error is non-nil when the report fails, which the CLI turns into a
// non-zero exit code.
func Validate(ctx context.Context, configPath, handoffPath string, strict bool) error {
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

	// SSH access is optional for validation; without it the agent
	// check reports SKIP instead of failing the run.
	if err := attachRemote(pctx, record); err != nil {
		pctx.Observer.Printf("validating without SSH access: %v", err)
	}

	report := validate.NewChecker(record).Run(pctx)
	fmt.Fprint(reportWriter, report.Render())

	if report.Failed(strict) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

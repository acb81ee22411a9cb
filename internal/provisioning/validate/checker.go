package validate

import (
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	"github.com/larsan/pgha/internal/provisioning"
)

const phase = "validate"

// Checker runs the post-configuration health checks against the
// infrastructure a handoff record describes.
type Checker struct {
	record *handoff.Record
}

// NewChecker creates a checker for the given handoff record.
func NewChecker(record *handoff.Record) *Checker {
	return &Checker{record: record}
}

// Run executes every check and returns the report. Checks never abort
// the run; each failure or skip is a line in the report, and only an
// error talking to a platform that should be reachable is returned.
func (c *Checker) Run(ctx *provisioning.Context) *Report {
	report := &Report{}

	checks := []func(ctx *provisioning.Context) Result{
		c.checkPlacement,
		c.checkFirewall,
		c.checkVolumes,
		c.checkAgents,
		c.checkLoadBalancer,
		c.checkReplication,
		c.checkListener,
	}
	for _, check := range checks {
		result := check(ctx)
		report.add(result)
		ctx.Metrics.CountCheck(result.Name, string(result.Status))
		ctx.Observer.Event(provisioning.Event{
			Type:    eventType(result.Status),
			Phase:   phase,
			Message: fmt.Sprintf("%s: %s", result.Name, result.Detail),
			Fields:  map[string]string{"check": result.Name, "status": string(result.Status)},
		})
	}
	return report
}

func eventType(status Status) provisioning.EventType {
	switch status {
	case StatusFail:
		return provisioning.EventCheckFailed
	case StatusSkip:
		return provisioning.EventCheckSkipped
	default:
		return provisioning.EventCheckPassed
	}
}

// credentials resolves the admin login for the database checks: state
// first for same-process runs, then the secret store. The prefix comes
// from the handoff record so validate works against any past run.
func (c *Checker) credentials(ctx *provisioning.Context) (user, password string, err error) {
	user = ctx.Config.Postgres.AdminUser

	if ctx.State.AdminPassword != "" {
		return user, ctx.State.AdminPassword, nil
	}
	if ctx.Secrets == nil {
		return "", "", fmt.Errorf("no secret store configured")
	}

	prefix := c.record.SecretsPrefix
	if prefix == "" {
		return "", "", fmt.Errorf("handoff record has no secrets prefix")
	}
	storedUser, err := ctx.Secrets.GetSecret(ctx, prefix+"/"+config.SecretAdminUser)
	if err == nil && storedUser != "" {
		user = storedUser
	}
	password, err = ctx.Secrets.GetSecret(ctx, prefix+"/"+config.SecretAdminPassword)
	if err != nil {
		return "", "", fmt.Errorf("failed to load admin password: %w", err)
	}
	return user, password, nil
}

func adminDSN(user, password, host string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/postgres?sslmode=disable",
		user, password, host, config.PostgresPort)
}

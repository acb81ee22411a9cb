// Package postgres inspects and controls the database cluster through
// its SQL admin surface.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/larsan/pgha/internal/metrics"
)

// Querier is the subset of pgxpool.Pool the admin uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// ReplicaStatus describes one standby as seen from the primary's
// pg_stat_replication view.
type ReplicaStatus struct {
	ApplicationName string
	State           string
	SyncState       string
	ReplayLagBytes  int64
}

// Synchronous reports whether the standby is attached in synchronous
// streaming mode.
func (s ReplicaStatus) Synchronous() bool {
	return s.State == "streaming" && s.SyncState == "sync"
}

// Admin wraps a database connection with cluster management queries.
type Admin struct {
	db       Querier
	recorder *metrics.Recorder
}

// Option configures an Admin.
type Option func(*Admin)

// WithQuerier replaces the underlying connection (useful for testing).
func WithQuerier(q Querier) Option {
	return func(a *Admin) { a.db = q }
}

// WithMetrics attaches a metrics recorder. Nil is allowed.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Admin) { a.recorder = r }
}

// Connect opens a pooled connection to the given DSN and verifies it
// with a ping.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Admin, error) {
	a := &Admin{}
	for _, opt := range opts {
		opt(a)
	}
	if a.db != nil {
		return a, nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a.db = pool
	return a, nil
}

// Close releases the underlying pool.
func (a *Admin) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *Admin) count(operation string) {
	a.recorder.CountCall("postgres", operation)
}

// Ping verifies the connection is alive.
func (a *Admin) Ping(ctx context.Context) error {
	a.count("ping")
	return a.db.Ping(ctx)
}

// IsInRecovery reports whether the connected instance is a standby.
func (a *Admin) IsInRecovery(ctx context.Context) (bool, error) {
	a.count("is_in_recovery")
	var inRecovery bool
	err := a.db.QueryRow(ctx, "SELECT pg_is_in_recovery()").Scan(&inRecovery)
	if err != nil {
		return false, fmt.Errorf("query recovery state: %w", err)
	}
	return inRecovery, nil
}

// ReplicationStatus returns the standbys attached to the connected
// primary. Must be run against the primary; a standby sees no rows.
func (a *Admin) ReplicationStatus(ctx context.Context) ([]ReplicaStatus, error) {
	a.count("replication_status")
	rows, err := a.db.Query(ctx, `
		SELECT application_name, state, sync_state,
		       COALESCE(pg_wal_lsn_diff(pg_current_wal_lsn(), replay_lsn), 0)::bigint
		FROM pg_stat_replication`)
	if err != nil {
		return nil, fmt.Errorf("query replication status: %w", err)
	}
	defer rows.Close()

	var statuses []ReplicaStatus
	for rows.Next() {
		var s ReplicaStatus
		if err := rows.Scan(&s.ApplicationName, &s.State, &s.SyncState, &s.ReplayLagBytes); err != nil {
			return nil, fmt.Errorf("scan replication row: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replication rows: %w", err)
	}
	return statuses, nil
}

// SyncStandby returns the synchronous standby, or nil when no standby
// is currently attached in sync mode.
func (a *Admin) SyncStandby(ctx context.Context) (*ReplicaStatus, error) {
	statuses, err := a.ReplicationStatus(ctx)
	if err != nil {
		return nil, err
	}
	for i := range statuses {
		if statuses[i].Synchronous() {
			return &statuses[i], nil
		}
	}
	return nil, nil
}

// ReplayLagBytes returns how far the connected standby trails the
// primary, in bytes of WAL.
func (a *Admin) ReplayLagBytes(ctx context.Context) (int64, error) {
	a.count("replay_lag")
	var lag int64
	err := a.db.QueryRow(ctx, `
		SELECT COALESCE(pg_wal_lsn_diff(pg_last_wal_receive_lsn(), pg_last_wal_replay_lsn()), 0)::bigint`).Scan(&lag)
	if err != nil {
		return 0, fmt.Errorf("query replay lag: %w", err)
	}
	return lag, nil
}

// Checkpoint forces a checkpoint, flushing dirty buffers to disk.
// Used before a planned role swap to shorten promotion time.
func (a *Admin) Checkpoint(ctx context.Context) error {
	a.count("checkpoint")
	if _, err := a.db.Exec(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Promote promotes the connected standby to primary and waits for the
// promotion to complete.
func (a *Admin) Promote(ctx context.Context) error {
	a.count("promote")
	var ok bool
	if err := a.db.QueryRow(ctx, "SELECT pg_promote(true)").Scan(&ok); err != nil {
		return fmt.Errorf("promote standby: %w", err)
	}
	if !ok {
		return fmt.Errorf("promotion did not complete")
	}
	return nil
}

// WaitForPrimaryReady polls until the instance accepts connections and
// reports itself out of recovery, or the context deadline passes.
func (a *Admin) WaitForPrimaryReady(ctx context.Context, timeout time.Duration) error {
	return a.poll(ctx, timeout, "primary ready", func(ctx context.Context) (bool, error) {
		if err := a.db.Ping(ctx); err != nil {
			return false, nil //nolint:nilerr // Not up yet, keep polling.
		}
		inRecovery, err := a.IsInRecovery(ctx)
		if err != nil {
			return false, nil //nolint:nilerr
		}
		return !inRecovery, nil
	})
}

// WaitForSyncStandby polls the primary until a standby is attached in
// synchronous streaming mode with replay lag at or below maxLagBytes.
func (a *Admin) WaitForSyncStandby(ctx context.Context, timeout time.Duration, maxLagBytes int64) error {
	return a.poll(ctx, timeout, "synchronous standby", func(ctx context.Context) (bool, error) {
		standby, err := a.SyncStandby(ctx)
		if err != nil {
			return false, nil //nolint:nilerr
		}
		return standby != nil && standby.ReplayLagBytes <= maxLagBytes, nil
	})
}

// WaitForPromotion polls until the connected instance leaves recovery.
func (a *Admin) WaitForPromotion(ctx context.Context, timeout time.Duration) error {
	return a.poll(ctx, timeout, "promotion", func(ctx context.Context) (bool, error) {
		inRecovery, err := a.IsInRecovery(ctx)
		if err != nil {
			return false, nil //nolint:nilerr
		}
		return !inRecovery, nil
	})
}

const pollInterval = 5 * time.Second

func (a *Admin) poll(ctx context.Context, timeout time.Duration, what string, check func(context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s: %w", what, ctx.Err())
		case <-ticker.C:
		}
	}
}

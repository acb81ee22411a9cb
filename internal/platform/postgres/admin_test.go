package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}
func (r *fakeRows) Scan(dest ...any) error      { return assign(dest, r.rows[r.idx-1]) }
func (r *fakeRows) Values() ([]any, error)      { return r.rows[r.idx-1], nil }
func (r *fakeRows) RawValues() [][]byte         { return nil }
func (r *fakeRows) Conn() *pgx.Conn             { return nil }

func assign(dest, src []any) error {
	if len(dest) != len(src) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(src))
	}
	for i, v := range src {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *int64:
			*d = v.(int64)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}

// fakeQuerier answers queries by substring match on the SQL text.
type fakeQuerier struct {
	pingErr     bool
	inRecovery  bool
	replication [][]any
	promoted    bool
	execLog     []string
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execLog = append(f.execLog, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	if strings.Contains(sql, "pg_stat_replication") {
		return &fakeRows{rows: f.replication}, nil
	}
	return nil, errors.New("unexpected query: " + sql)
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "pg_is_in_recovery"):
		return &fakeRow{values: []any{f.inRecovery}}
	case strings.Contains(sql, "pg_promote"):
		f.promoted = true
		f.inRecovery = false
		return &fakeRow{values: []any{true}}
	case strings.Contains(sql, "pg_last_wal_receive_lsn"):
		return &fakeRow{values: []any{int64(0)}}
	}
	return &fakeRow{err: errors.New("unexpected query: " + sql)}
}

func (f *fakeQuerier) Ping(_ context.Context) error {
	if f.pingErr {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeQuerier) Close() {}

func newTestAdmin(q Querier) *Admin {
	return &Admin{db: q}
}

func TestIsInRecovery(t *testing.T) {
	t.Parallel()

	a := newTestAdmin(&fakeQuerier{inRecovery: true})

	inRecovery, err := a.IsInRecovery(context.Background())
	require.NoError(t, err)
	assert.True(t, inRecovery)
}

func TestReplicationStatus(t *testing.T) {
	t.Parallel()

	a := newTestAdmin(&fakeQuerier{replication: [][]any{
		{"node-b", "streaming", "sync", int64(128)},
	}})

	statuses, err := a.ReplicationStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "node-b", statuses[0].ApplicationName)
	assert.True(t, statuses[0].Synchronous())
	assert.Equal(t, int64(128), statuses[0].ReplayLagBytes)
}

func TestSyncStandby_NoneAttached(t *testing.T) {
	t.Parallel()

	a := newTestAdmin(&fakeQuerier{replication: [][]any{
		{"node-b", "streaming", "async", int64(0)},
	}})

	standby, err := a.SyncStandby(context.Background())
	require.NoError(t, err)
	assert.Nil(t, standby)
}

func TestPromote(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{inRecovery: true}
	a := newTestAdmin(q)

	require.NoError(t, a.Promote(context.Background()))
	assert.True(t, q.promoted)
}

func TestCheckpoint(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	a := newTestAdmin(q)

	require.NoError(t, a.Checkpoint(context.Background()))
	require.Len(t, q.execLog, 1)
	assert.Equal(t, "CHECKPOINT", q.execLog[0])
}

func TestWaitForPrimaryReady_Immediate(t *testing.T) {
	t.Parallel()

	a := newTestAdmin(&fakeQuerier{inRecovery: false})

	err := a.WaitForPrimaryReady(context.Background(), 5*time.Second)
	require.NoError(t, err)
}

func TestWaitForPrimaryReady_TimesOutWhileUnreachable(t *testing.T) {
	t.Parallel()

	a := newTestAdmin(&fakeQuerier{pingErr: true})

	err := a.WaitForPrimaryReady(context.Background(), 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary ready")
}

func TestWaitForSyncStandby_LagTooHigh(t *testing.T) {
	t.Parallel()

	a := newTestAdmin(&fakeQuerier{replication: [][]any{
		{"node-b", "streaming", "sync", int64(4096)},
	}})

	err := a.WaitForSyncStandby(context.Background(), 50*time.Millisecond, 1024)
	require.Error(t, err)
}

func TestWaitForSyncStandby_Healthy(t *testing.T) {
	t.Parallel()

	a := newTestAdmin(&fakeQuerier{replication: [][]any{
		{"node-b", "streaming", "sync", int64(0)},
	}})

	require.NoError(t, a.WaitForSyncStandby(context.Background(), 5*time.Second, 1024))
}

func TestWaitForPromotion(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{inRecovery: true}
	a := newTestAdmin(q)

	require.NoError(t, a.Promote(context.Background()))
	require.NoError(t, a.WaitForPromotion(context.Background(), 5*time.Second))
}

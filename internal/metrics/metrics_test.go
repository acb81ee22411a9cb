package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	t.Parallel()
	r := NewRecorder()

	r.CountCall("hcloud", "server.create")
	r.CountCall("hcloud", "server.create")
	r.CountRetry("agent.register")
	r.CountCheck("replication", "pass")
	r.ObservePhase("infrastructure", 3*time.Second, nil)
	r.ObservePhase("cluster", time.Second, errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(r.apiCalls.WithLabelValues("hcloud", "server.create")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.retryAttempts.WithLabelValues("agent.register")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.checkResults.WithLabelValues("replication", "pass")))

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecorder_NilSafe(t *testing.T) {
	t.Parallel()
	var r *Recorder

	// A nil recorder is used when metrics are disabled.
	r.CountCall("hcloud", "network.create")
	r.CountRetry("x")
	r.CountCheck("y", "skip")
	r.ObservePhase("z", time.Second, nil)
	assert.Nil(t, r.Registry())
}

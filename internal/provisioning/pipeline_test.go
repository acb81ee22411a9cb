package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsan/pgha/internal/config"
)

type stubPhase struct {
	name string
	err  error
	ran  *[]string
}

func (p *stubPhase) Name() string { return p.name }

func (p *stubPhase) Provision(_ *Context) error {
	*p.ran = append(*p.ran, p.name)
	return p.err
}

func testContext() *Context {
	cfg := &config.Config{ClusterName: "pg"}
	cfg.ApplyDefaults()
	return NewContext(context.Background(), cfg, "ab12cd34", nil)
}

func TestRunPhases_AllSucceed(t *testing.T) {
	t.Parallel()

	var ran []string
	phases := []Phase{
		&stubPhase{name: "network", ran: &ran},
		&stubPhase{name: "servers", ran: &ran},
		&stubPhase{name: "secrets", ran: &ran},
	}

	require.NoError(t, RunPhases(testContext(), phases))
	assert.Equal(t, []string{"network", "servers", "secrets"}, ran)
}

func TestRunPhases_StopsOnFirstFailure(t *testing.T) {
	t.Parallel()

	var ran []string
	boom := errors.New("boom")
	phases := []Phase{
		&stubPhase{name: "network", ran: &ran},
		&stubPhase{name: "servers", err: boom, ran: &ran},
		&stubPhase{name: "secrets", ran: &ran},
	}

	err := RunPhases(testContext(), phases)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "servers phase failed")
	assert.Equal(t, []string{"network", "servers"}, ran)
}

func TestRunPhases_Empty(t *testing.T) {
	t.Parallel()

	require.NoError(t, RunPhases(testContext(), nil))
}

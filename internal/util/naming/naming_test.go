package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaming(t *testing.T) {
	t.Parallel()
	prefix := Prefix("orders-db", "a1b2c3d4")

	assert.Equal(t, "orders-db-a1b2c3d4", prefix)
	assert.Equal(t, "orders-db-a1b2c3d4-net", Network(prefix))
	assert.Equal(t, "orders-db-a1b2c3d4-fw", Firewall(prefix))
	assert.Equal(t, "orders-db-a1b2c3d4-spread", PlacementGroup(prefix))
	assert.Equal(t, "orders-db-a1b2c3d4-node-a", Server(prefix, "node-a"))
	assert.Equal(t, "orders-db-a1b2c3d4-node-b-wal", Volume(prefix, "node-b", "wal"))
	assert.Equal(t, "orders-db-a1b2c3d4-lsnr", LoadBalancer(prefix))
	assert.Equal(t, "orders-db-a1b2c3d4-admin", SSHKey(prefix))
	assert.Equal(t, "orders-db-listener", Listener("orders-db"))
	assert.Equal(t, "orders-db/a1b2c3d4", SecretPrefix("orders-db", "a1b2c3d4"))
}

func TestPrefixDistinguishesRuns(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, Prefix("c", "11111111"), Prefix("c", "22222222"))
}

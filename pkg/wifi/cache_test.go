package wifi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

// apBlindManager cannot scan while its access point is up.
type apBlindManager struct {
	*SimulatedManager
	scans int
}

func (m *apBlindManager) ScanNetworks(ctx context.Context) []provisioning.NetworkInfo {
	m.scans++
	if m.broadcastSSID() != "" {
		return []provisioning.NetworkInfo{}
	}
	return m.SimulatedManager.ScanNetworks(ctx)
}

func TestCachedManagerServesCacheDuringAPMode(t *testing.T) {
	inner := &apBlindManager{SimulatedManager: NewSimulatedManager()}
	c, err := NewCachedManager(inner, time.Minute)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	primed := c.Prime(ctx)
	require.Len(t, primed, 4)

	require.True(t, c.StartAPMode(ctx, "jarvis-setup"))
	networks := c.ScanNetworks(ctx)
	assert.Equal(t, primed, networks)
	assert.Equal(t, 1, inner.scans)

	require.True(t, c.Connect(ctx, "HomeNetwork", "pw"))
	c.ScanNetworks(ctx)
	assert.Equal(t, 2, inner.scans)
}

func TestCachedManagerLiveScanWhenCacheEmpty(t *testing.T) {
	inner := &apBlindManager{SimulatedManager: NewSimulatedManager()}
	c, err := NewCachedManager(inner, time.Minute)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.True(t, c.StartAPMode(ctx, "jarvis-setup"))
	assert.Empty(t, c.ScanNetworks(ctx))
	assert.Equal(t, 1, inner.scans)
}

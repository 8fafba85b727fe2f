package wifi

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
	"go.uber.org/atomic"
)

const (
	// DefaultScanTTL bounds how stale a cached scan may be.
	DefaultScanTTL = 10 * time.Minute

	scanCacheKey = "scan"
)

// CachedManager remembers the last successful scan. While the radio is
// hosting the access point it cannot scan, so the cached list is served
// instead.
type CachedManager struct {
	Manager

	cache    *ristretto.Cache
	ttl      time.Duration
	apActive atomic.Bool
}

// NewCachedManager wraps m with a scan cache holding results for ttl.
func NewCachedManager(m Manager, ttl time.Duration) (*CachedManager, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        100,
		MaxCost:            16,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scan cache: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultScanTTL
	}
	return &CachedManager{Manager: m, cache: cache, ttl: ttl}, nil
}

// Prime scans now and caches the result. Call it before StartAPMode.
func (c *CachedManager) Prime(ctx context.Context) []provisioning.NetworkInfo {
	networks := c.Manager.ScanNetworks(ctx)
	c.store(networks)
	log.Info().Int("count", len(networks)).Msg("Cached WiFi scan before AP mode")
	return networks
}

// ScanNetworks serves the cache while AP mode is active, otherwise scans
// live and refreshes the cache.
func (c *CachedManager) ScanNetworks(ctx context.Context) []provisioning.NetworkInfo {
	if c.apActive.Load() {
		if networks, ok := c.cached(); ok {
			return networks
		}
	}

	networks := c.Manager.ScanNetworks(ctx)
	c.store(networks)
	return networks
}

// Connect implements Manager. Joining a network ends AP mode.
func (c *CachedManager) Connect(ctx context.Context, ssid, password string) bool {
	ok := c.Manager.Connect(ctx, ssid, password)
	if ok {
		c.apActive.Store(false)
	}
	return ok
}

// StartAPMode implements Manager.
func (c *CachedManager) StartAPMode(ctx context.Context, ssid string) bool {
	ok := c.Manager.StartAPMode(ctx, ssid)
	if ok {
		c.apActive.Store(true)
	}
	return ok
}

// StopAPMode implements Manager.
func (c *CachedManager) StopAPMode(ctx context.Context) bool {
	ok := c.Manager.StopAPMode(ctx)
	if ok {
		c.apActive.Store(false)
	}
	return ok
}

// Close releases the cache.
func (c *CachedManager) Close() {
	c.cache.Close()
}

func (c *CachedManager) cached() ([]provisioning.NetworkInfo, bool) {
	v, found := c.cache.Get(scanCacheKey)
	if !found {
		return nil, false
	}
	networks, ok := v.([]provisioning.NetworkInfo)
	if !ok || len(networks) == 0 {
		return nil, false
	}
	out := make([]provisioning.NetworkInfo, len(networks))
	copy(out, networks)
	return out, true
}

func (c *CachedManager) store(networks []provisioning.NetworkInfo) {
	if len(networks) == 0 {
		return
	}
	kept := make([]provisioning.NetworkInfo, len(networks))
	copy(kept, networks)
	c.cache.SetWithTTL(scanCacheKey, kept, 1, c.ttl)
	c.cache.Wait()
}

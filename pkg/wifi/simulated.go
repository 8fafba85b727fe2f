package wifi

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

var simulatedNetworks = []provisioning.NetworkInfo{
	{SSID: "HomeNetwork", SignalStrength: -45, Security: "WPA2"},
	{SSID: "IoT_Network", SignalStrength: -55, Security: "WPA3"},
	{SSID: "Neighbor_5G", SignalStrength: -72, Security: "WPA2"},
	{SSID: "CoffeeShop_Free", SignalStrength: -80, Security: "OPEN"},
}

// SimulatedManager is an in-memory backend for development and tests.
// Connect succeeds only for its fixed set of known networks.
type SimulatedManager struct {
	// Delay is slept inside Connect to mimic association time.
	Delay time.Duration

	mu        sync.Mutex
	connected string
	apSSID    string
}

// NewSimulatedManager returns a simulated backend with no delay.
func NewSimulatedManager() *SimulatedManager {
	return &SimulatedManager{}
}

// ScanNetworks returns the fixed network list.
func (m *SimulatedManager) ScanNetworks(ctx context.Context) []provisioning.NetworkInfo {
	out := make([]provisioning.NetworkInfo, len(simulatedNetworks))
	copy(out, simulatedNetworks)
	return out
}

// Connect succeeds iff ssid is a known network.
func (m *SimulatedManager) Connect(ctx context.Context, ssid, password string) bool {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(m.Delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range simulatedNetworks {
		if n.SSID == ssid {
			m.connected = ssid
			m.apSSID = ""
			log.Info().Str("ssid", ssid).Msg("Simulated WiFi connected")
			return true
		}
	}
	log.Warn().Str("ssid", ssid).Msg("Simulated WiFi network not found")
	return false
}

// CurrentSSID returns the simulated connection, or "".
func (m *SimulatedManager) CurrentSSID(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// StartAPMode drops any client connection and records the AP ssid.
func (m *SimulatedManager) StartAPMode(ctx context.Context, ssid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = ""
	m.apSSID = ssid
	log.Info().Str("ssid", ssid).Msg("Simulated AP mode started")
	return true
}

// StopAPMode clears the AP.
func (m *SimulatedManager) StopAPMode(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.apSSID != "" {
		log.Info().Str("ssid", m.apSSID).Msg("Simulated AP mode stopped")
	}
	m.apSSID = ""
	return true
}

package wifi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

// Services that fight hostapd for the radio while the AP is up.
var conflictingServices = []string{"NetworkManager", "wpa_supplicant"}

// HostapdManager hosts the setup access point with hostapd and dnsmasq for
// devices without NetworkManager hotspot support. Client mode is delegated
// to nmcli once the access point is torn down.
type HostapdManager struct {
	runner Runner
	cfg    APConfig
	client *NetworkManager

	// Settle is how long hostapd must survive before the AP counts as up.
	Settle time.Duration

	mu              sync.Mutex
	stack           *APStack
	stoppedServices []string
}

// NewHostapdManager returns an AP-stack manager using cfg.
func NewHostapdManager(runner Runner, cfg APConfig) *HostapdManager {
	return &HostapdManager{
		runner: runner,
		cfg:    cfg,
		client: NewNetworkManager(runner, cfg.Interface),
		Settle: hostapdSettle,
	}
}

// ScanNetworks delegates to nmcli.
func (m *HostapdManager) ScanNetworks(ctx context.Context) []provisioning.NetworkInfo {
	return m.client.ScanNetworks(ctx)
}

// Connect tears the access point down, then joins ssid through nmcli.
func (m *HostapdManager) Connect(ctx context.Context, ssid, password string) bool {
	if !m.StopAPMode(ctx) {
		log.Warn().Msg("AP teardown incomplete before connecting")
	}
	return m.client.Connect(ctx, ssid, password)
}

// CurrentSSID delegates to nmcli.
func (m *HostapdManager) CurrentSSID(ctx context.Context) string {
	return m.client.CurrentSSID(ctx)
}

// StartAPMode writes both daemon configs, assigns the gateway address and
// launches hostapd and dnsmasq.
func (m *HostapdManager) StartAPMode(ctx context.Context, ssid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stack != nil {
		m.teardownLocked(ctx)
	}

	m.stopConflictingServicesLocked(ctx)

	hostapdConf, dnsmasqConf, err := m.writeConfigs(ssid)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write AP configuration")
		m.restoreServicesLocked(ctx)
		return false
	}

	if err := m.configureInterface(ctx); err != nil {
		log.Error().Err(err).Str("interface", m.cfg.Interface).Msg("Failed to configure AP interface")
		m.flushAddress(ctx)
		m.restoreServicesLocked(ctx)
		return false
	}

	hostapd, err := m.runner.Start("hostapd", hostapdConf)
	if err != nil {
		log.Error().Err(err).Msg("Failed to start hostapd")
		m.flushAddress(ctx)
		m.restoreServicesLocked(ctx)
		return false
	}

	select {
	case <-ctx.Done():
	case <-time.After(m.Settle):
	}
	if hostapd.Exited() {
		log.Error().Str("stderr", hostapd.Stderr()).Msg("hostapd exited during startup")
		m.flushAddress(ctx)
		m.restoreServicesLocked(ctx)
		return false
	}

	dnsmasq, err := m.runner.Start("dnsmasq", "-C", dnsmasqConf, "-d")
	if err != nil {
		log.Error().Err(err).Msg("Failed to start dnsmasq")
		_ = hostapd.Stop(processStopGrace)
		m.flushAddress(ctx)
		m.restoreServicesLocked(ctx)
		return false
	}

	m.stack = &APStack{hostapd: hostapd, dnsmasq: dnsmasq, grace: processStopGrace}
	log.Info().
		Str("ssid", ssid).
		Str("interface", m.cfg.Interface).
		Str("gateway", m.cfg.Gateway).
		Msg("AP mode started")
	return true
}

// StopAPMode terminates both daemons and releases the interface. It
// succeeds without doing anything when no access point is running.
func (m *HostapdManager) StopAPMode(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stack == nil {
		return true
	}
	if !m.stack.Running() {
		log.Warn().Msg("AP daemons exited before teardown")
	}
	m.teardownLocked(ctx)
	log.Info().Msg("AP mode stopped")
	return true
}

func (m *HostapdManager) teardownLocked(ctx context.Context) {
	_ = m.stack.Stop()
	m.stack = nil
	m.flushAddress(ctx)
	m.restoreServicesLocked(ctx)
}

func (m *HostapdManager) writeConfigs(ssid string) (string, string, error) {
	if err := os.MkdirAll(m.cfg.ConfigDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create config directory: %w", err)
	}

	hostapdConf := filepath.Join(m.cfg.ConfigDir, "hostapd.conf")
	if err := os.WriteFile(hostapdConf, []byte(GenerateHostapdConfig(ssid, m.cfg)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write hostapd config: %w", err)
	}

	dnsmasqConf := filepath.Join(m.cfg.ConfigDir, "dnsmasq.conf")
	if err := os.WriteFile(dnsmasqConf, []byte(GenerateDnsmasqConfig(m.cfg)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write dnsmasq config: %w", err)
	}

	return hostapdConf, dnsmasqConf, nil
}

func (m *HostapdManager) configureInterface(ctx context.Context) error {
	steps := [][]string{
		{"addr", "flush", "dev", m.cfg.Interface},
		{"addr", "add", m.cfg.GatewayCIDR(), "dev", m.cfg.Interface},
		{"link", "set", m.cfg.Interface, "up"},
	}
	for _, args := range steps {
		if err := m.run(ctx, "ip", args...); err != nil {
			return err
		}
	}
	return nil
}

func (m *HostapdManager) flushAddress(ctx context.Context) {
	if err := m.run(ctx, "ip", "addr", "flush", "dev", m.cfg.Interface); err != nil {
		log.Warn().Err(err).Str("interface", m.cfg.Interface).Msg("Failed to flush AP address")
	}
}

func (m *HostapdManager) stopConflictingServicesLocked(ctx context.Context) {
	for _, svc := range conflictingServices {
		if err := m.run(ctx, "systemctl", "is-active", "--quiet", svc); err != nil {
			continue
		}
		if err := m.run(ctx, "systemctl", "stop", svc); err != nil {
			log.Warn().Err(err).Str("service", svc).Msg("Failed to stop service")
			continue
		}
		m.stoppedServices = append(m.stoppedServices, svc)
		log.Info().Str("service", svc).Msg("Stopped service for AP mode")
	}
}

func (m *HostapdManager) restoreServicesLocked(ctx context.Context) {
	for _, svc := range m.stoppedServices {
		if err := m.run(ctx, "systemctl", "start", svc); err != nil {
			log.Warn().Err(err).Str("service", svc).Msg("Failed to restore service")
			continue
		}
		log.Info().Str("service", svc).Msg("Restored service")
	}
	m.stoppedServices = nil
}

func (m *HostapdManager) run(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := m.runner.Run(ctx, name, args...)
	return err
}

package wifi

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

const (
	scanTimeout    = 30 * time.Second
	connectTimeout = 60 * time.Second
	queryTimeout   = 10 * time.Second
	hotspotTimeout = 30 * time.Second

	// Password of the NetworkManager setup hotspot.
	hotspotPassword       = "jarvis-setup"
	hotspotConnectionName = "Hotspot"

	unknownSignalDBm = -70
)

// NetworkManager drives the OS network manager through nmcli.
type NetworkManager struct {
	runner    Runner
	iface     string
	apEnabled bool
}

// NewNetworkManager returns an nmcli-backed manager for iface.
func NewNetworkManager(runner Runner, iface string) *NetworkManager {
	return &NetworkManager{runner: runner, iface: iface}
}

// ScanNetworks lists visible networks, strongest first.
func (m *NetworkManager) ScanNetworks(ctx context.Context) []provisioning.NetworkInfo {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	out, err := m.runner.Run(ctx, "nmcli", "-t", "-f", "SSID,SIGNAL,SECURITY", "dev", "wifi", "list")
	if err != nil {
		log.Error().Err(err).Msg("WiFi scan failed")
		return []provisioning.NetworkInfo{}
	}

	networks := parseScan(out)
	log.Info().Int("count", len(networks)).Msg("WiFi scan complete")
	return networks
}

// Connect joins ssid. An empty password joins an open network.
func (m *NetworkManager) Connect(ctx context.Context, ssid, password string) bool {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	args := []string{"dev", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}

	log.Info().Str("ssid", ssid).Msg("Connecting to WiFi")
	if _, err := m.runner.Run(ctx, "nmcli", args...); err != nil {
		// the error text contains the password argument
		log.Error().Str("ssid", ssid).Msg("WiFi connect failed")
		return false
	}

	m.apEnabled = false
	log.Info().Str("ssid", ssid).Msg("Connected to WiFi")
	return true
}

// CurrentSSID returns the active network, or "" when not connected.
func (m *NetworkManager) CurrentSSID(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out, err := m.runner.Run(ctx, "nmcli", "-t", "-f", "ACTIVE,SSID", "dev", "wifi")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to query current SSID")
		return ""
	}
	return parseActiveSSID(out)
}

// StartAPMode brings up the NetworkManager hotspot.
func (m *NetworkManager) StartAPMode(ctx context.Context, ssid string) bool {
	ctx, cancel := context.WithTimeout(ctx, hotspotTimeout)
	defer cancel()

	_, err := m.runner.Run(ctx, "nmcli", "dev", "wifi", "hotspot",
		"ifname", m.iface, "ssid", ssid, "password", hotspotPassword)
	if err != nil {
		log.Error().Str("ssid", ssid).Str("interface", m.iface).Msg("Failed to start hotspot")
		return false
	}

	m.apEnabled = true
	log.Info().Str("ssid", ssid).Str("interface", m.iface).Msg("AP mode started")
	return true
}

// StopAPMode takes the hotspot down. Stopping when no hotspot is up succeeds.
func (m *NetworkManager) StopAPMode(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := m.runner.Run(ctx, "nmcli", "connection", "down", hotspotConnectionName); err != nil {
		if m.apEnabled {
			log.Error().Err(err).Msg("Failed to stop hotspot")
			return false
		}
		log.Debug().Err(err).Msg("No hotspot to stop")
		return true
	}

	m.apEnabled = false
	log.Info().Msg("AP mode stopped")
	return true
}

// parseScan turns terse nmcli output into deduplicated networks, strongest first.
func parseScan(out string) []provisioning.NetworkInfo {
	best := make(map[string]provisioning.NetworkInfo)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := splitTerse(line)
		ssid := fields[0]
		if ssid == "" {
			continue
		}

		signal := unknownSignalDBm
		if len(fields) > 1 {
			signal = percentToDBm(fields[1])
		}

		security := "OPEN"
		if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
			security = strings.TrimSpace(fields[2])
		}

		if prev, ok := best[ssid]; ok && prev.SignalStrength >= signal {
			continue
		}
		best[ssid] = provisioning.NetworkInfo{SSID: ssid, SignalStrength: signal, Security: security}
	}

	networks := make([]provisioning.NetworkInfo, 0, len(best))
	for _, n := range best {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool {
		if networks[i].SignalStrength != networks[j].SignalStrength {
			return networks[i].SignalStrength > networks[j].SignalStrength
		}
		return networks[i].SSID < networks[j].SSID
	})
	return networks
}

// percentToDBm maps nmcli's 0-100 signal quality onto an approximate dBm value.
func percentToDBm(s string) int {
	pct, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return unknownSignalDBm
	}
	return -90 + int(float64(pct)*0.6)
}

// splitTerse splits a terse-mode nmcli line on unescaped colons.
func splitTerse(line string) []string {
	var fields []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}

func parseActiveSSID(out string) string {
	for _, line := range strings.Split(out, "\n") {
		fields := splitTerse(strings.TrimRight(line, "\r"))
		if len(fields) >= 2 && fields[0] == "yes" {
			return fields[1]
		}
	}
	return ""
}

package wifi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultAPInterface = "wlan0"
	defaultAPChannel   = 6
	defaultConfigDir   = "/tmp/jarvis-ap"
	processStopGrace   = 3 * time.Second
	hostapdSettle      = 2 * time.Second
)

// APConfig describes the self-hosted access point.
type APConfig struct {
	Interface   string
	Channel     int
	Gateway     string
	PrefixLen   int
	Netmask     string
	DHCPStart   string
	DHCPEnd     string
	LeaseTime   string
	UpstreamDNS string
	ConfigDir   string
}

// DefaultAPConfig returns the stock access point layout on wlan0.
func DefaultAPConfig() APConfig {
	return APConfig{
		Interface:   defaultAPInterface,
		Channel:     defaultAPChannel,
		Gateway:     "192.168.4.1",
		PrefixLen:   24,
		Netmask:     "255.255.255.0",
		DHCPStart:   "192.168.4.10",
		DHCPEnd:     "192.168.4.50",
		LeaseTime:   "12h",
		UpstreamDNS: "8.8.8.8",
		ConfigDir:   defaultConfigDir,
	}
}

// GatewayCIDR returns the interface address in CIDR form.
func (c APConfig) GatewayCIDR() string {
	return fmt.Sprintf("%s/%d", c.Gateway, c.PrefixLen)
}

// GenerateHostapdConfig renders the hostapd configuration for an open
// 2.4 GHz access point broadcasting ssid.
func GenerateHostapdConfig(ssid string, cfg APConfig) string {
	lines := []string{
		"# Jarvis setup access point",
		"interface=" + cfg.Interface,
		"driver=nl80211",
		"ssid=" + ssid,
		"hw_mode=g",
		fmt.Sprintf("channel=%d", cfg.Channel),
		"wmm_enabled=0",
		"macaddr_acl=0",
		"auth_algs=1",
		"ignore_broadcast_ssid=0",
		"wpa=0",
	}
	return strings.Join(lines, "\n") + "\n"
}

// GenerateDnsmasqConfig renders a DHCP/DNS configuration bound to the AP
// interface only, handing out the configured pool with the gateway as
// router and resolver.
func GenerateDnsmasqConfig(cfg APConfig) string {
	lines := []string{
		"interface=" + cfg.Interface,
		"bind-interfaces",
		fmt.Sprintf("dhcp-range=%s,%s,%s,%s", cfg.DHCPStart, cfg.DHCPEnd, cfg.Netmask, cfg.LeaseTime),
		"dhcp-option=3," + cfg.Gateway,
		"dhcp-option=6," + cfg.Gateway,
		"server=" + cfg.UpstreamDNS,
		"log-queries",
		"log-dhcp",
	}
	return strings.Join(lines, "\n") + "\n"
}

// APStack owns the hostapd and dnsmasq processes of a running access point.
type APStack struct {
	hostapd Process
	dnsmasq Process
	grace   time.Duration
}

// Running reports whether either daemon is still alive.
func (s *APStack) Running() bool {
	if s == nil {
		return false
	}
	return (s.hostapd != nil && !s.hostapd.Exited()) || (s.dnsmasq != nil && !s.dnsmasq.Exited())
}

// Stop terminates both daemons. It is safe to call repeatedly and after
// the processes have exited on their own.
func (s *APStack) Stop() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.dnsmasq != nil {
		if err := s.dnsmasq.Stop(s.grace); err != nil {
			errs = append(errs, fmt.Errorf("dnsmasq: %w", err))
		}
		s.dnsmasq = nil
	}
	if s.hostapd != nil {
		if err := s.hostapd.Stop(s.grace); err != nil {
			errs = append(errs, fmt.Errorf("hostapd: %w", err))
		}
		s.hostapd = nil
	}

	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Msg("AP stack did not stop cleanly")
		return err
	}
	return nil
}

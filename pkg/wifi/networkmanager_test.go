package wifi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

const scanCmd = "nmcli -t -f SSID,SIGNAL,SECURITY dev wifi list"

func TestParseScan(t *testing.T) {
	out := "HomeNetwork:80:WPA2\n" +
		"HomeNetwork:40:WPA2\n" +
		":90:WPA2\n" +
		"Cafe:50:\n" +
		`Weird\:Name:70:WPA1 WPA2` + "\n" +
		"Broken:n/a:WPA2\n" +
		"Weak:20:WPA3\n"

	networks := parseScan(out)
	require.Len(t, networks, 5)

	assert.Equal(t, provisioning.NetworkInfo{SSID: "HomeNetwork", SignalStrength: -42, Security: "WPA2"}, networks[0])
	assert.Equal(t, provisioning.NetworkInfo{SSID: "Weird:Name", SignalStrength: -48, Security: "WPA1 WPA2"}, networks[1])
	assert.Equal(t, provisioning.NetworkInfo{SSID: "Cafe", SignalStrength: -60, Security: "OPEN"}, networks[2])
	assert.Equal(t, provisioning.NetworkInfo{SSID: "Broken", SignalStrength: -70, Security: "WPA2"}, networks[3])
	assert.Equal(t, provisioning.NetworkInfo{SSID: "Weak", SignalStrength: -78, Security: "WPA3"}, networks[4])
}

func TestParseScanStrongestDuplicateWins(t *testing.T) {
	networks := parseScan("Dup:10:WPA2\nDup:90:WPA3\nDup:50:WPA2\n")
	require.Len(t, networks, 1)
	assert.Equal(t, -36, networks[0].SignalStrength)
	assert.Equal(t, "WPA3", networks[0].Security)
}

func TestNetworkManagerScan(t *testing.T) {
	r := newFakeRunner()
	r.on(scanCmd, "A:100:WPA2\nB:0:\n", nil)
	m := NewNetworkManager(r, "wlan0")

	networks := m.ScanNetworks(context.Background())
	require.Len(t, networks, 2)
	assert.Equal(t, "A", networks[0].SSID)
	assert.Equal(t, -30, networks[0].SignalStrength)
	assert.Equal(t, "OPEN", networks[1].Security)
}

func TestNetworkManagerScanFailureIsEmpty(t *testing.T) {
	r := newFakeRunner()
	r.on(scanCmd, "", errors.New("exit status 8"))
	m := NewNetworkManager(r, "wlan0")

	networks := m.ScanNetworks(context.Background())
	assert.NotNil(t, networks)
	assert.Empty(t, networks)
}

func TestNetworkManagerConnect(t *testing.T) {
	r := newFakeRunner()
	m := NewNetworkManager(r, "wlan0")

	assert.True(t, m.Connect(context.Background(), "HomeNetwork", "secret"))
	assert.Contains(t, r.Calls(), "nmcli dev wifi connect HomeNetwork password secret")

	assert.True(t, m.Connect(context.Background(), "Cafe", ""))
	assert.Contains(t, r.Calls(), "nmcli dev wifi connect Cafe")

	r.on("nmcli dev wifi connect Nope password x", "", errors.New("exit status 10"))
	assert.False(t, m.Connect(context.Background(), "Nope", "x"))
}

func TestNetworkManagerCurrentSSID(t *testing.T) {
	r := newFakeRunner()
	r.on("nmcli -t -f ACTIVE,SSID dev wifi", "no:Other\nyes:HomeNetwork\n", nil)
	m := NewNetworkManager(r, "wlan0")
	assert.Equal(t, "HomeNetwork", m.CurrentSSID(context.Background()))

	r.on("nmcli -t -f ACTIVE,SSID dev wifi", "no:Other\n", nil)
	assert.Equal(t, "", m.CurrentSSID(context.Background()))
}

func TestNetworkManagerHotspot(t *testing.T) {
	r := newFakeRunner()
	m := NewNetworkManager(r, "wlan1")

	assert.True(t, m.StartAPMode(context.Background(), "jarvis-1234abcd"))
	assert.Contains(t, r.Calls(), "nmcli dev wifi hotspot ifname wlan1 ssid jarvis-1234abcd password jarvis-setup")

	assert.True(t, m.StopAPMode(context.Background()))
	assert.Contains(t, r.Calls(), "nmcli connection down Hotspot")

	// no hotspot running: nmcli fails but stopping still succeeds
	r.on("nmcli connection down Hotspot", "", errors.New("exit status 10"))
	assert.True(t, m.StopAPMode(context.Background()))
}

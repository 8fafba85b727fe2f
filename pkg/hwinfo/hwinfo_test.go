package hwinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestProbeFromReadsPreferredInterface(t *testing.T) {
	sys := t.TempDir()
	writeFile(t, filepath.Join(sys, "class/net/eth0/address"), "aa:bb:cc:00:00:01\n")
	writeFile(t, filepath.Join(sys, "class/net/wlan0/address"), "B8:27:EB:12:34:56\n")

	info := probeFrom(sys, t.TempDir(), "linux", "x86_64")
	assert.Equal(t, "b8:27:eb:12:34:56", info.MACAddress)
	assert.Equal(t, "linux-x86_64", info.HardwareClass)
}

func TestProbeFromSkipsZeroMAC(t *testing.T) {
	sys := t.TempDir()
	writeFile(t, filepath.Join(sys, "class/net/wlan0/address"), "00:00:00:00:00:00\n")
	writeFile(t, filepath.Join(sys, "class/net/eth0/address"), "aa:bb:cc:00:00:01\n")

	assert.Equal(t, "aa:bb:cc:00:00:01", probeFrom(sys, t.TempDir(), "linux", "x86_64").MACAddress)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		model string
		goos  string
		arch  string
		want  string
	}{
		{"pi zero", "Raspberry Pi Zero W Rev 1.1\x00", "linux", "armv6l", "pi-zero-w"},
		{"pi 4", "Raspberry Pi 4 Model B Rev 1.4\x00", "linux", "aarch64", "raspberry-pi"},
		{"other arm board", "Pine64 PinePhone\x00", "linux", "aarch64", "arm-linux"},
		{"arm without model", "", "linux", "armv7l", "arm-linux"},
		{"mac", "", "darwin", "arm64", "macos"},
		{"pc", "", "linux", "x86_64", "linux-x86_64"},
		{"windows", "", "windows", "amd64", "windows-amd64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := t.TempDir()
			if tt.model != "" {
				writeFile(t, filepath.Join(proc, "device-tree/model"), tt.model)
			}
			assert.Equal(t, tt.want, classify(proc, tt.goos, tt.arch))
		})
	}
}

func TestNodeIDFromMAC(t *testing.T) {
	assert.Equal(t, "jarvis-eb123456", NodeIDFromMAC("B8:27:EB:12:34:56"))
	assert.Equal(t, "jarvis-0000", NodeIDFromMAC("00:00"))
}

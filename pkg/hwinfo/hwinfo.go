// Package hwinfo identifies the node from its hardware: MAC address and
// board class.
package hwinfo

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const unknownMAC = "00:00:00:00:00:00"

// Interfaces whose MAC identifies the node, in order of preference.
var macInterfaces = []string{"wlan0", "eth0", "en0"}

// Info is the hardware identity of the node.
type Info struct {
	MACAddress    string
	HardwareClass string
}

// Probe inspects the running machine.
func Probe() Info {
	return probeFrom("/sys", "/proc", runtime.GOOS, machine())
}

func probeFrom(sysRoot, procRoot, goos, arch string) Info {
	return Info{
		MACAddress:    readMAC(sysRoot),
		HardwareClass: classify(procRoot, goos, arch),
	}
}

func readMAC(sysRoot string) string {
	for _, name := range macInterfaces {
		mac := readTrimmed(filepath.Join(sysRoot, "class/net", name, "address"))
		if mac != "" && mac != unknownMAC {
			return strings.ToLower(mac)
		}
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return unknownMAC
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String()
	}
	return unknownMAC
}

func classify(procRoot, goos, arch string) string {
	switch {
	case goos == "linux" && isARM(arch):
		model := strings.ToLower(readTrimmed(filepath.Join(procRoot, "device-tree/model")))
		switch {
		case strings.Contains(model, "zero"):
			return "pi-zero-w"
		case strings.Contains(model, "raspberry"):
			return "raspberry-pi"
		default:
			return "arm-linux"
		}
	case goos == "darwin":
		return "macos"
	default:
		return goos + "-" + arch
	}
}

func isARM(arch string) bool {
	return strings.HasPrefix(arch, "arm") || strings.HasPrefix(arch, "aarch64")
}

// readTrimmed returns a sysfs/procfs value without trailing NULs or
// whitespace, or "" when unreadable.
func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(string(data), "\x00"))
}

// NodeIDFromMAC derives the default node id: "jarvis-" and the last eight
// hex digits of the MAC.
func NodeIDFromMAC(mac string) string {
	hex := strings.ToLower(strings.NewReplacer(":", "", "-", "").Replace(mac))
	if len(hex) > 8 {
		hex = hex[len(hex)-8:]
	}
	return "jarvis-" + hex
}

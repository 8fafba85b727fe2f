// Package wifi drives the node's wireless interface: scanning, joining a
// home network, and hosting the temporary setup access point.
package wifi

import (
	"context"

	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

// Manager is implemented by every WiFi backend. Failures are reported as
// empty results or false, never as errors; each call bounds its own
// external commands with a timeout.
type Manager interface {
	ScanNetworks(ctx context.Context) []provisioning.NetworkInfo
	Connect(ctx context.Context, ssid, password string) bool
	CurrentSSID(ctx context.Context) string
	StartAPMode(ctx context.Context, ssid string) bool
	StopAPMode(ctx context.Context) bool
}

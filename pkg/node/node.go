// Package node assembles a provisioning node from its parts: secrets,
// WiFi backend, config document, attempt journal and orchestrator.
package node

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/jarvis-node/pkg/db"
	"github.com/urmzd/jarvis-node/pkg/hwinfo"
	"github.com/urmzd/jarvis-node/pkg/nodeconfig"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
	"github.com/urmzd/jarvis-node/pkg/registration"
	"github.com/urmzd/jarvis-node/pkg/secrets"
	"github.com/urmzd/jarvis-node/pkg/startup"
	"github.com/urmzd/jarvis-node/pkg/wifi"
)

var capabilities = []string{"voice", "speaker"}

// Config selects where a node keeps its state and which radio it drives.
type Config struct {
	ConfigPath       string
	CommandCenterURL string
	Simulate         bool
	WiFiBackend      string
	WiFiInterface    string
	SecretDir        string
	KeyFile          string
	Port             int
	DBPath           string
	FirmwareVersion  string

	// Runner overrides the OS command runner. Nil uses os/exec.
	Runner wifi.Runner
	// Probe overrides hardware introspection. Nil uses hwinfo.Probe.
	Probe func() hwinfo.Info
}

// Node is a wired provisioning node.
type Node struct {
	Config  *nodeconfig.Store
	Paths   secrets.Paths
	Marker  *startup.Marker
	DB      *db.DB
	WiFi    *wifi.CachedManager
	Backend wifi.Backend
	Info    provisioning.NodeInfo
	Service *provisioning.Service

	provisioned chan struct{}
	once        sync.Once
}

// SelectBackend resolves the WiFi backend. Simulation wins over the
// backend name.
func SelectBackend(cfg Config) (wifi.Backend, error) {
	if cfg.Simulate {
		return wifi.BackendSimulated, nil
	}
	return wifi.ParseBackend(cfg.WiFiBackend)
}

// Detector returns the boot-time detector for cfg.
func Detector(cfg Config) *startup.Detector {
	paths := secrets.ResolvePaths(cfg.SecretDir, cfg.KeyFile)
	store := nodeconfig.NewStore(cfg.ConfigPath)
	return startup.NewDetector(startup.NewMarker(paths.Marker()), func() string {
		return store.CommandCenterURL(cfg.CommandCenterURL)
	})
}

// New opens the database and wires the orchestrator. Close releases it.
func New(ctx context.Context, cfg Config) (*Node, error) {
	backend, err := SelectBackend(cfg)
	if err != nil {
		return nil, err
	}

	ap := wifi.DefaultAPConfig()
	if cfg.WiFiInterface != "" {
		ap.Interface = cfg.WiFiInterface
	}
	radio, err := wifi.New(wifi.Options{Backend: backend, Runner: cfg.Runner, AP: ap})
	if err != nil {
		return nil, err
	}

	database, err := db.OpenAndPrepare(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	manager, err := wifi.NewCachedManager(radio, wifi.DefaultScanTTL)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	n := &Node{
		Config:      nodeconfig.NewStore(cfg.ConfigPath),
		Paths:       secrets.ResolvePaths(cfg.SecretDir, cfg.KeyFile),
		DB:          database,
		WiFi:        manager,
		Backend:     backend,
		provisioned: make(chan struct{}),
	}
	n.Marker = startup.NewMarker(n.Paths.Marker())
	n.Info = n.identity(cfg)

	keys := secrets.NewKeyStore(n.Paths.KeyFile)
	n.Service = provisioning.NewService(provisioning.Options{
		Info:        n.Info,
		WiFi:        manager,
		Credentials: secrets.NewVault(n.Paths.Credentials(), keys),
		K2:          secrets.NewK2Store(n.Paths, keys),
		Registrar:   registration.NewClient(nil),
		Config:      n.Config,
		Marker:      n.Marker,
		Journal:     database.Attempts(),
		APSSID:      APSSID(n.Info.NodeID),
		OnProvisioned: func() {
			n.once.Do(func() { close(n.provisioned) })
		},
	})
	return n, nil
}

func (n *Node) identity(cfg Config) provisioning.NodeInfo {
	probe := cfg.Probe
	if probe == nil {
		probe = hwinfo.Probe
	}
	hw := probe()

	nodeID := ""
	if doc, err := n.Config.Load(); err != nil {
		log.Warn().Err(err).Msg("Failed to read config document, deriving node id from MAC")
	} else {
		nodeID = doc.String(nodeconfig.KeyNodeID)
	}
	if nodeID == "" {
		nodeID = hwinfo.NodeIDFromMAC(hw.MACAddress)
	}

	version := cfg.FirmwareVersion
	if version == "" {
		version = "1.0.0"
	}

	return provisioning.NodeInfo{
		NodeID:          nodeID,
		FirmwareVersion: version,
		HardwareClass:   hw.HardwareClass,
		MACAddress:      hw.MACAddress,
		Capabilities:    append([]string(nil), capabilities...),
	}
}

// Provisioned is closed when the flow reaches PROVISIONED.
func (n *Node) Provisioned() <-chan struct{} {
	return n.provisioned
}

// ListenAddress returns the control API address: the stored setting, with
// its port replaced when port is positive.
func (n *Node) ListenAddress(ctx context.Context, port int) (string, error) {
	stored, err := n.DB.LoadConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return overridePort(stored.APIAddress(), port), nil
}

func overridePort(addr string, port int) string {
	if port <= 0 {
		return addr
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// APSSID returns the setup network name: "jarvis-" and the last eight
// characters of the node id.
func (n *Node) APSSID() string {
	return APSSID(n.Info.NodeID)
}

// APSSID derives the setup network name from a node id.
func APSSID(nodeID string) string {
	suffix := nodeID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return "jarvis-" + suffix
}

// StartAccessPoint caches a scan and then brings up the setup network.
func (n *Node) StartAccessPoint(ctx context.Context) bool {
	networks := n.WiFi.Prime(ctx)
	log.Info().Int("networks", len(networks)).Msg("Scanned networks before starting access point")

	ssid := n.APSSID()
	if !n.WiFi.StartAPMode(ctx, ssid) {
		log.Error().Str("ssid", ssid).Msg("Failed to start access point")
		return false
	}
	log.Info().Str("ssid", ssid).Msg("Access point started")
	return true
}

// Close tears down the access point unless the node was provisioned or a
// flow is still running, then releases the cache and the database.
func (n *Node) Close(ctx context.Context) error {
	if n.Service.Status().State != provisioning.StateProvisioned && !n.Service.Busy() {
		stopCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n.WiFi.StopAPMode(stopCtx)
		cancel()
	}
	n.WiFi.Close()
	return n.DB.Close()
}

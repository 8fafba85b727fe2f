package provisioning

import "time"

// State is a phase of the provisioning flow.
type State string

const (
	StateAPMode      State = "AP_MODE"
	StateConnecting  State = "CONNECTING"
	StateRegistering State = "REGISTERING"
	StateProvisioned State = "PROVISIONED"
	StateError       State = "ERROR"
)

// Terminal reports whether no further transitions are expected in this session.
func (s State) Terminal() bool {
	return s == StateProvisioned || s == StateError
}

// Status is an immutable snapshot of the state machine.
type Status struct {
	State           State   `json:"state"`
	Message         string  `json:"message"`
	ProgressPercent int     `json:"progress_percent"`
	Error           *string `json:"error"`
}

// NodeInfo is the hardware identity of this node.
type NodeInfo struct {
	NodeID          string   `json:"node_id"`
	FirmwareVersion string   `json:"firmware_version"`
	HardwareClass   string   `json:"hardware"`
	MACAddress      string   `json:"mac_address"`
	Capabilities    []string `json:"capabilities"`
	State           State    `json:"state"`
}

// NetworkInfo is one network seen by a WiFi scan.
type NetworkInfo struct {
	SSID           string `json:"ssid"`
	SignalStrength int    `json:"signal_strength"`
	Security       string `json:"security"`
}

// ProvisionRequest carries everything the companion app sends to provision a node.
// NodeID and ProvisioningToken are minted by an administrator beforehand; the
// administrator key itself never reaches the node.
type ProvisionRequest struct {
	WiFiSSID          string `json:"wifi_ssid"`
	WiFiPassword      string `json:"wifi_password"`
	Room              string `json:"room"`
	CommandCenterURL  string `json:"command_center_url"`
	HouseholdID       string `json:"household_id"`
	NodeID            string `json:"node_id"`
	ProvisioningToken string `json:"provisioning_token"`
}

// ProvisionResult acknowledges a provision request. The flow itself runs in the background.
type ProvisionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// K2Request delivers the node's symmetric K2 key during pairing.
type K2Request struct {
	NodeID    string `json:"node_id"`
	KID       string `json:"kid"`
	K2        string `json:"k2"`
	CreatedAt string `json:"created_at"`
}

// K2Result reports whether a K2 key was stored.
type K2Result struct {
	Success bool   `json:"success"`
	NodeID  string `json:"node_id"`
	KID     string `json:"kid"`
	Error   string `json:"error,omitempty"`
}

// Attempt is a journal entry for one accepted provision request.
type Attempt struct {
	ID               string     `json:"id"`
	SSID             string     `json:"ssid"`
	Room             string     `json:"room"`
	CommandCenterURL string     `json:"command_center_url"`
	NodeID           string     `json:"node_id"`
	State            State      `json:"state"`
	Error            string     `json:"error,omitempty"`
	Registered       bool       `json:"registered"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

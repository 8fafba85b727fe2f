package mcp

import "github.com/urmzd/jarvis-node/pkg/provisioning"

// --- Node Info Tool ---

// GetNodeInfoOutput is the output for the get_node_info tool
type GetNodeInfoOutput struct {
	Node provisioning.NodeInfo `json:"node" jsonschema:"description=Node identity and current provisioning state"`
}

// --- Scan Networks Tool ---

// ScanNetworksOutput is the output for the scan_networks tool
type ScanNetworksOutput struct {
	Networks []provisioning.NetworkInfo `json:"networks" jsonschema:"description=Visible networks, one per SSID, strongest first"`
	Count    int                        `json:"count" jsonschema:"description=Number of networks"`
}

// --- Provision Tool ---

// ProvisionInput is the input for the provision tool
type ProvisionInput struct {
	WiFiSSID          string `json:"wifi_ssid" jsonschema:"required,description=SSID of the home WiFi network"`
	WiFiPassword      string `json:"wifi_password" jsonschema:"required,description=WiFi password (empty for open networks)"`
	Room              string `json:"room" jsonschema:"required,description=Room the node is placed in"`
	CommandCenterURL  string `json:"command_center_url" jsonschema:"required,description=Command center base URL"`
	HouseholdID       string `json:"household_id" jsonschema:"required,description=Household the node joins"`
	NodeID            string `json:"node_id" jsonschema:"required,description=Node id issued with the token"`
	ProvisioningToken string `json:"provisioning_token" jsonschema:"required,description=Single-use provisioning token"`
}

// ProvisionOutput is the output for the provision tool
type ProvisionOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the flow was started"`
	Message string `json:"message" jsonschema:"description=Human-readable result"`
}

// --- Status Tool ---

// GetStatusOutput is the output for the get_provisioning_status tool
type GetStatusOutput struct {
	State           provisioning.State `json:"state" jsonschema:"description=AP_MODE, CONNECTING, REGISTERING, PROVISIONED or ERROR"`
	Message         string             `json:"message" jsonschema:"description=User-facing progress message"`
	ProgressPercent int                `json:"progress_percent" jsonschema:"description=Progress from 0 to 100"`
	Error           *string            `json:"error" jsonschema:"description=Failure detail when state is ERROR"`
}

// StatusToOutput converts a provisioning status to tool output
func StatusToOutput(s provisioning.Status) GetStatusOutput {
	return GetStatusOutput{
		State:           s.State,
		Message:         s.Message,
		ProgressPercent: s.ProgressPercent,
		Error:           s.Error,
	}
}

// --- List Attempts Tool ---

// ListAttemptsInput is the input for the list_attempts tool
type ListAttemptsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum number of attempts to return"`
}

// ListAttemptsOutput is the output for the list_attempts tool
type ListAttemptsOutput struct {
	Attempts []provisioning.Attempt `json:"attempts" jsonschema:"description=Recent attempts, newest first"`
	Count    int                    `json:"count" jsonschema:"description=Number of attempts"`
}

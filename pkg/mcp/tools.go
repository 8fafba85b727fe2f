package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_node_info",
			mcp.WithDescription("Get this node's hardware identity (node id, MAC, hardware class, firmware) and provisioning state"),
		),
		s.handleGetNodeInfo,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("scan_networks",
			mcp.WithDescription("List WiFi networks visible to the node, strongest signal first"),
		),
		s.handleScanNetworks,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("provision",
			mcp.WithDescription("Start provisioning: join the given WiFi network and register with the command center. Returns immediately; poll get_provisioning_status."),
			mcp.WithString("wifi_ssid",
				mcp.Required(),
				mcp.Description("SSID of the home WiFi network"),
			),
			mcp.WithString("wifi_password",
				mcp.Required(),
				mcp.Description("WiFi password (empty string for open networks)"),
			),
			mcp.WithString("room",
				mcp.Required(),
				mcp.Description("Room the node is placed in, e.g. kitchen"),
			),
			mcp.WithString("command_center_url",
				mcp.Required(),
				mcp.Description("Base URL of the command center, e.g. http://cc:8002"),
			),
			mcp.WithString("household_id",
				mcp.Required(),
				mcp.Description("Household the node joins"),
			),
			mcp.WithString("node_id",
				mcp.Required(),
				mcp.Description("Node id issued with the provisioning token"),
			),
			mcp.WithString("provisioning_token",
				mcp.Required(),
				mcp.Description("Single-use provisioning token minted by an administrator"),
			),
		),
		s.handleProvision,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_provisioning_status",
			mcp.WithDescription("Get the provisioning state, message, progress percent and error detail"),
		),
		s.handleGetStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_attempts",
			mcp.WithDescription("List recent provisioning attempts, newest first"),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of attempts to return (default 20)"),
			),
		),
		s.handleListAttempts,
	)
}

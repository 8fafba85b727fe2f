// Package mcp exposes the provisioning orchestrator as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/jarvis-node/pkg/api/schema"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

// Provisioner is the orchestrator surface the tools call.
type Provisioner interface {
	NodeInfo(ctx context.Context) provisioning.NodeInfo
	ScanNetworks(ctx context.Context) []provisioning.NetworkInfo
	Status() provisioning.Status
	Provision(req provisioning.ProvisionRequest) (provisioning.ProvisionResult, error)
	Attempts(ctx context.Context, limit int) ([]provisioning.Attempt, error)
}

// Server wraps the MCP server with the node provisioning tools
type Server struct {
	mcpServer   *server.MCPServer
	provisioner Provisioner
	validator   *schema.Validator
}

// NewServer creates a new MCP server for node provisioning
func NewServer(provisioner Provisioner, validator *schema.Validator, version string) *Server {
	s := &Server{
		provisioner: provisioner,
		validator:   validator,
	}

	s.mcpServer = server.NewMCPServer(
		"jarvis-node",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

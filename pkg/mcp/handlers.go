package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/jarvis-node/pkg/api/schema"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

const defaultAttemptsLimit = 20

func (s *Server) handleGetNodeInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetNodeInfoOutput{Node: s.provisioner.NodeInfo(ctx)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleScanNetworks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	networks := s.provisioner.ScanNetworks(ctx)
	out := ScanNetworksOutput{
		Networks: networks,
		Count:    len(networks),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleProvision(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	if err := s.validator.ValidateBody(schema.ProvisionRequest, body); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid provision request: %s", err)), nil
	}

	var in ProvisionInput
	if err := json.Unmarshal(body, &in); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}

	res, err := s.provisioner.Provision(provisioning.ProvisionRequest(in))
	if err != nil && !errors.Is(err, provisioning.ErrInProgress) && !errors.Is(err, provisioning.ErrAlreadyProvisioned) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start provisioning: %s", err)), nil
	}

	out := ProvisionOutput{Success: res.Success, Message: res.Message}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(StatusToOutput(s.provisioner.Status()))), nil
}

func (s *Server) handleListAttempts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := defaultAttemptsLimit
	if v, ok := request.GetArguments()["limit"]; ok && v != nil {
		n, ok := v.(float64)
		if !ok || n < 1 {
			return mcp.NewToolResultError("parameter \"limit\" must be a positive number"), nil
		}
		limit = int(n)
	}

	attempts, err := s.provisioner.Attempts(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list attempts: %s", err)), nil
	}
	if attempts == nil {
		attempts = []provisioning.Attempt{}
	}

	out := ListAttemptsOutput{
		Attempts: attempts,
		Count:    len(attempts),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

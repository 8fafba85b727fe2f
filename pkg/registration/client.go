// Package registration talks to the command center: administrators mint
// single-use provisioning tokens, and nodes exchange those tokens for their
// long-lived node key.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	registerPath = "/api/v0/nodes/register"
	tokenPath    = "/api/v0/provisioning/token"

	adminKeyHeader = "X-API-Key"

	// DefaultTimeout bounds every command-center call.
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 4 << 10
)

var (
	// ErrUnauthorized is returned for 401 responses: an expired or invalid
	// token, or a wrong admin key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnexpectedStatus is returned for any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// ProvisioningToken is issued by the command center for one node.
type ProvisioningToken struct {
	NodeID            string `json:"node_id"`
	ProvisioningToken string `json:"provisioning_token"`
}

// Registration holds the durable credentials of a registered node.
type Registration struct {
	NodeID  string `json:"node_id"`
	NodeKey string `json:"node_key"`
}

// Client calls the command-center registration endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client using httpClient, or one with DefaultTimeout
// when nil.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

type tokenRequest struct {
	HouseholdID string `json:"household_id"`
	Room        string `json:"room,omitempty"`
	Name        string `json:"name,omitempty"`
}

type tokenResponse struct {
	NodeID            string `json:"node_id"`
	ProvisioningToken string `json:"provisioning_token"`
	Token             string `json:"token"`
}

// CreateProvisioningToken asks the command center for a new node id and
// single-use token. It authenticates with the administrator key and must
// only be called from operator tooling, never from the node.
func (c *Client) CreateProvisioningToken(ctx context.Context, commandCenterURL, adminKey, householdID, room, name string) (*ProvisioningToken, error) {
	body := tokenRequest{HouseholdID: householdID, Room: room, Name: name}
	headers := map[string]string{adminKeyHeader: adminKey}

	var resp tokenResponse
	if err := c.post(ctx, commandCenterURL, tokenPath, headers, body, &resp); err != nil {
		return nil, fmt.Errorf("could not create provisioning token: %w", err)
	}

	token := resp.ProvisioningToken
	if token == "" {
		token = resp.Token
	}
	if resp.NodeID == "" || token == "" {
		return nil, fmt.Errorf("could not create provisioning token: incomplete response")
	}
	return &ProvisioningToken{NodeID: resp.NodeID, ProvisioningToken: token}, nil
}

type registerRequest struct {
	NodeID            string `json:"node_id"`
	ProvisioningToken string `json:"provisioning_token"`
	Room              string `json:"room,omitempty"`
}

// RegisterWithToken exchanges a provisioning token for the node key. Only
// the token is sent; no administrator credential is involved.
func (c *Client) RegisterWithToken(ctx context.Context, commandCenterURL, nodeID, provisioningToken, room string) (*Registration, error) {
	body := registerRequest{NodeID: nodeID, ProvisioningToken: provisioningToken, Room: room}

	var resp Registration
	if err := c.post(ctx, commandCenterURL, registerPath, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("could not register node: %w", err)
	}
	if resp.NodeKey == "" {
		return nil, fmt.Errorf("could not register node: response has no node_key")
	}
	if resp.NodeID == "" {
		resp.NodeID = nodeID
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, baseURL, path string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}

package types

import (
	"time"

	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status      string             `json:"status"`
	State       provisioning.State `json:"state"`
	WiFiBackend string             `json:"wifi_backend"`
	Timestamp   time.Time          `json:"timestamp"`
}

// ScanResponse is returned from GET /scan-networks
type ScanResponse struct {
	Networks []provisioning.NetworkInfo `json:"networks"`
}

// AttemptsResponse is returned from GET /attempts
type AttemptsResponse struct {
	Attempts []provisioning.Attempt `json:"attempts"`
	Count    int                    `json:"count"`
}

// Error codes used in ErrorResponse.Error.
const (
	ErrCodeValidation = "validation_error"
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeInternal   = "internal_error"
)

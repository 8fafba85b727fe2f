package provisioning

import "errors"

var (
	// ErrInvalidRequest is returned for provision requests missing required fields.
	ErrInvalidRequest = errors.New("invalid provision request")
	// ErrInProgress is returned when a provisioning flow is already running.
	ErrInProgress = errors.New("provisioning already in progress")
	// ErrAlreadyProvisioned is returned once this session has reached PROVISIONED.
	ErrAlreadyProvisioned = errors.New("node already provisioned")
)

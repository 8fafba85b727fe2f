package wifi

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names a WiFi manager implementation.
type Backend string

const (
	BackendNetworkManager Backend = "networkmanager"
	BackendHostapd        Backend = "hostapd"
	BackendSimulated      Backend = "simulated"
)

// ErrUnknownBackend is returned for unrecognized backend names.
var ErrUnknownBackend = errors.New("unknown wifi backend")

// ParseBackend parses a backend name. Empty selects NetworkManager.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendNetworkManager, nil
	case BackendNetworkManager, BackendHostapd, BackendSimulated:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// IsTruthy reports whether a flag value means "on": true, 1 or yes.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// Options configures New.
type Options struct {
	Backend Backend
	Runner  Runner
	AP      APConfig
}

// New builds the manager for the selected backend.
func New(opts Options) (Manager, error) {
	if opts.Runner == nil {
		opts.Runner = NewExecRunner()
	}
	if opts.AP == (APConfig{}) {
		opts.AP = DefaultAPConfig()
	}

	switch opts.Backend {
	case "", BackendNetworkManager:
		return NewNetworkManager(opts.Runner, opts.AP.Interface), nil
	case BackendHostapd:
		return NewHostapdManager(opts.Runner, opts.AP), nil
	case BackendSimulated:
		return NewSimulatedManager(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

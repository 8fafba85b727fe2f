package provisioning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/jarvis-node/pkg/nodeconfig"
	"github.com/urmzd/jarvis-node/pkg/registration"
)

const (
	acceptedMessage    = "Credentials received. Attempting connection..."
	inProgressMessage  = "Provisioning already in progress"
	provisionedMessage = "Node already provisioned"
	completeMessage    = "Provisioning complete! You can now start the main Jarvis service."
)

// WiFiManager is the radio control the flow needs. See package wifi.
type WiFiManager interface {
	ScanNetworks(ctx context.Context) []NetworkInfo
	Connect(ctx context.Context, ssid, password string) bool
	CurrentSSID(ctx context.Context) string
	StartAPMode(ctx context.Context, ssid string) bool
	StopAPMode(ctx context.Context) bool
}

// CredentialStore persists the WiFi credentials.
type CredentialStore interface {
	Save(ssid, password string) error
}

// K2Store persists the K2 key delivered during pairing.
type K2Store interface {
	Save(k2, kid, createdAt string) error
}

// Registrar exchanges a provisioning token for node credentials.
type Registrar interface {
	RegisterWithToken(ctx context.Context, commandCenterURL, nodeID, provisioningToken, room string) (*registration.Registration, error)
}

// ConfigStore updates the local device config document.
type ConfigStore interface {
	Update(values map[string]any) error
}

// Marker records that provisioning completed.
type Marker interface {
	Mark() error
}

// Journal records provisioning attempts.
type Journal interface {
	StartAttempt(ctx context.Context, a Attempt) error
	FinishAttempt(ctx context.Context, id string, state State, errDetail string, registered bool) error
	ListAttempts(ctx context.Context, limit int) ([]Attempt, error)
}

// Options wires a Service. Journal, K2, APSSID and OnProvisioned are optional.
type Options struct {
	Info        NodeInfo
	WiFi        WiFiManager
	Credentials CredentialStore
	K2          K2Store
	Registrar   Registrar
	Config      ConfigStore
	Marker      Marker
	Journal     Journal

	// APSSID is the setup network brought back up when joining the home
	// network fails, so the companion app can reach the node in ERROR.
	APSSID string

	// OnProvisioned runs on the flow goroutine after PROVISIONED is reached.
	OnProvisioned func()
}

// Service sequences provisioning: it serves node info, scans and status,
// and runs at most one provisioning flow in the background.
type Service struct {
	opts  Options
	state *StateMachine
	exec  *Executor
}

// NewService returns a service in AP_MODE.
func NewService(opts Options) *Service {
	return &Service{
		opts:  opts,
		state: NewStateMachine(),
		exec:  NewExecutor(),
	}
}

// NodeInfo returns the node identity with the current state.
func (s *Service) NodeInfo(ctx context.Context) NodeInfo {
	info := s.opts.Info
	info.Capabilities = append([]string(nil), s.opts.Info.Capabilities...)
	info.State = s.state.State()
	return info
}

// ScanNetworks lists visible networks.
func (s *Service) ScanNetworks(ctx context.Context) []NetworkInfo {
	networks := s.opts.WiFi.ScanNetworks(ctx)
	if networks == nil {
		networks = []NetworkInfo{}
	}
	return networks
}

// Status returns the current provisioning status.
func (s *Service) Status() Status {
	return s.state.Status()
}

// Busy reports whether a provisioning flow is running.
func (s *Service) Busy() bool {
	return s.exec.Busy()
}

// Wait blocks until the running flow, if any, finishes.
func (s *Service) Wait() {
	s.exec.Wait()
}

// ValidateRequest checks that every required field is present. The WiFi
// password may be empty for open networks.
func ValidateRequest(req ProvisionRequest) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"wifi_ssid", req.WiFiSSID},
		{"room", req.Room},
		{"command_center_url", req.CommandCenterURL},
		{"household_id", req.HouseholdID},
		{"node_id", req.NodeID},
		{"provisioning_token", req.ProvisioningToken},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// Provision starts the provisioning flow in the background and returns at
// once. A request arriving while a flow runs is rejected with ErrInProgress,
// and one arriving after the session reached PROVISIONED with
// ErrAlreadyProvisioned. Neither changes anything.
func (s *Service) Provision(req ProvisionRequest) (ProvisionResult, error) {
	if err := ValidateRequest(req); err != nil {
		return ProvisionResult{Success: false, Message: err.Error()}, err
	}

	attemptID := uuid.NewString()
	accepted, err := s.exec.TrySubmitIf(func() error {
		if s.state.State() == StateProvisioned {
			return ErrAlreadyProvisioned
		}
		return nil
	}, func() {
		s.run(attemptID, req)
	}, func(err error) {
		s.state.SetError(err.Error())
	})
	if err != nil {
		log.Warn().Str("ssid", req.WiFiSSID).Msg("Provision request rejected, node already provisioned")
		return ProvisionResult{Success: false, Message: provisionedMessage}, err
	}
	if !accepted {
		log.Warn().Str("ssid", req.WiFiSSID).Msg("Provision request rejected, flow already running")
		return ProvisionResult{Success: false, Message: inProgressMessage}, ErrInProgress
	}

	log.Info().Str("attempt_id", attemptID).Str("ssid", req.WiFiSSID).Str("room", req.Room).Msg("Provisioning started")
	return ProvisionResult{Success: true, Message: acceptedMessage}, nil
}

func (s *Service) run(attemptID string, req ProvisionRequest) {
	ctx := context.Background()
	logger := log.With().Str("attempt_id", attemptID).Str("ssid", req.WiFiSSID).Logger()

	s.startAttempt(ctx, logger, attemptID, req)

	registered := false
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Provisioning flow panicked")
			s.state.SetError(fmt.Sprint(r))
		}
		s.finishAttempt(ctx, logger, attemptID, registered)
	}()

	if err := s.provision(ctx, logger, req, &registered); err != nil {
		logger.Error().Err(err).Msg("Provisioning failed")
		s.state.SetError(err.Error())
		return
	}

	logger.Info().Bool("registered", registered).Msg("Provisioning complete")
	if s.opts.OnProvisioned != nil {
		s.opts.OnProvisioned()
	}
}

func (s *Service) provision(ctx context.Context, logger zerolog.Logger, req ProvisionRequest, registered *bool) error {
	ssid := req.WiFiSSID

	s.state.TransitionToWithProgress(StateConnecting, fmt.Sprintf("Saving credentials for %s...", ssid), 10)
	if err := s.opts.Credentials.Save(ssid, req.WiFiPassword); err != nil {
		return fmt.Errorf("failed to save WiFi credentials: %w", err)
	}

	s.state.TransitionToWithProgress(StateConnecting, fmt.Sprintf("Connecting to %s...", ssid), 30)
	if !s.opts.WiFi.StopAPMode(ctx) {
		logger.Warn().Msg("Failed to stop AP mode cleanly")
	}
	if !s.opts.WiFi.Connect(ctx, ssid, req.WiFiPassword) {
		s.restoreAccessPoint(ctx, logger)
		return fmt.Errorf("failed to connect to %s", ssid)
	}
	s.state.TransitionToWithProgress(StateConnecting, fmt.Sprintf("Connected to %s", ssid), 50)

	s.state.TransitionToWithProgress(StateRegistering, "Updating configuration...", 60)
	if err := s.opts.Config.Update(map[string]any{
		nodeconfig.KeyCommandCenterURL: req.CommandCenterURL,
		nodeconfig.KeyRoom:             req.Room,
	}); err != nil {
		return fmt.Errorf("failed to update configuration: %w", err)
	}

	s.state.TransitionToWithProgress(StateRegistering, "Registering with command center...", 70)
	*registered = s.register(ctx, logger, req)

	s.state.TransitionToWithProgress(StateRegistering, "Finalizing...", 90)
	if err := s.opts.Marker.Mark(); err != nil {
		return fmt.Errorf("failed to mark node provisioned: %w", err)
	}

	s.state.TransitionToWithProgress(StateProvisioned, completeMessage, 100)
	return nil
}

// restoreAccessPoint brings the setup network back after a failed join.
// The attempt still ends in ERROR; nothing is retried.
func (s *Service) restoreAccessPoint(ctx context.Context, logger zerolog.Logger) {
	if s.opts.APSSID == "" {
		return
	}
	if !s.opts.WiFi.StartAPMode(ctx, s.opts.APSSID) {
		logger.Error().Str("ap_ssid", s.opts.APSSID).Msg("Failed to restore access point")
		return
	}
	logger.Info().Str("ap_ssid", s.opts.APSSID).Msg("Access point restored after failed connection")
}

// register exchanges the provisioning token. Failure does not stop the
// flow: the node may already be registered from an earlier run.
func (s *Service) register(ctx context.Context, logger zerolog.Logger, req ProvisionRequest) bool {
	reg, err := s.opts.Registrar.RegisterWithToken(ctx, req.CommandCenterURL, req.NodeID, req.ProvisioningToken, req.Room)
	if err != nil || reg == nil {
		logger.Warn().Err(err).Str("command_center", req.CommandCenterURL).Msg("Registration failed, continuing")
		return false
	}

	if err := s.opts.Config.Update(map[string]any{
		nodeconfig.KeyNodeID:  reg.NodeID,
		nodeconfig.KeyNodeKey: reg.NodeKey,
	}); err != nil {
		logger.Warn().Err(err).Msg("Failed to store node credentials")
	}
	logger.Info().Str("node_id", reg.NodeID).Msg("Registered with command center")
	return true
}

// ProvisionK2 stores the K2 key sent by the companion app. It is accepted
// only for this node and only while pairing (AP_MODE or ERROR); a later
// key in the same session replaces the earlier one.
func (s *Service) ProvisionK2(req K2Request) K2Result {
	res := K2Result{NodeID: req.NodeID, KID: req.KID}

	switch {
	case strings.TrimSpace(req.NodeID) == "" || strings.TrimSpace(req.KID) == "" || strings.TrimSpace(req.K2) == "":
		res.Error = "node_id, kid and k2 are required"
	case req.NodeID != s.opts.Info.NodeID:
		res.Error = fmt.Sprintf("node_id mismatch: expected %s, got %s", s.opts.Info.NodeID, req.NodeID)
	case !pairing(s.state.State()):
		res.Error = fmt.Sprintf("not in pairing mode (state %s)", s.state.State())
	case s.opts.K2 == nil:
		res.Error = "K2 storage unavailable"
	default:
		if err := s.opts.K2.Save(req.K2, req.KID, req.CreatedAt); err != nil {
			res.Error = err.Error()
			break
		}
		res.Success = true
		log.Info().Str("kid", req.KID).Msg("K2 key stored")
	}

	if !res.Success {
		log.Warn().Str("node_id", req.NodeID).Str("reason", res.Error).Msg("K2 rejected")
	}
	return res
}

func pairing(state State) bool {
	return state == StateAPMode || state == StateError
}

// Attempts lists recent provisioning attempts, newest first.
func (s *Service) Attempts(ctx context.Context, limit int) ([]Attempt, error) {
	if s.opts.Journal == nil {
		return []Attempt{}, nil
	}
	return s.opts.Journal.ListAttempts(ctx, limit)
}

func (s *Service) startAttempt(ctx context.Context, logger zerolog.Logger, id string, req ProvisionRequest) {
	if s.opts.Journal == nil {
		return
	}
	err := s.opts.Journal.StartAttempt(ctx, Attempt{
		ID:               id,
		SSID:             req.WiFiSSID,
		Room:             req.Room,
		CommandCenterURL: req.CommandCenterURL,
		NodeID:           req.NodeID,
		State:            StateConnecting,
		StartedAt:        time.Now().UTC(),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to journal attempt start")
	}
}

func (s *Service) finishAttempt(ctx context.Context, logger zerolog.Logger, id string, registered bool) {
	if s.opts.Journal == nil {
		return
	}
	status := s.state.Status()
	detail := ""
	if status.Error != nil {
		detail = *status.Error
	}
	if err := s.opts.Journal.FinishAttempt(ctx, id, status.State, detail, registered); err != nil {
		logger.Warn().Err(err).Msg("Failed to journal attempt result")
	}
}

package provisioning

import "sync"

const (
	initialMessage = "Waiting for mobile app connection..."
	failedMessage  = "Provisioning failed"
)

// StateMachine tracks the current phase of provisioning. It is safe for
// concurrent use; callers never lock around it.
type StateMachine struct {
	mu     sync.Mutex
	status Status
}

// NewStateMachine returns a state machine in AP_MODE.
func NewStateMachine() *StateMachine {
	m := &StateMachine{}
	m.Reset()
	return m
}

// TransitionTo moves to state with message, keeping the current progress.
func (m *StateMachine) TransitionTo(state State, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transition(state, message, m.status.ProgressPercent)
}

// TransitionToWithProgress moves to state with message and progress clamped to [0,100].
func (m *StateMachine) TransitionToWithProgress(state State, message string, progress int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transition(state, message, clampProgress(progress))
}

func (m *StateMachine) transition(state State, message string, progress int) {
	m.status.State = state
	m.status.Message = message
	m.status.ProgressPercent = progress
	if state != StateError {
		m.status.Error = nil
	}
}

// SetError moves to ERROR. The message shown to users is fixed; detail is kept in Error.
func (m *StateMachine) SetError(detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.State = StateError
	m.status.Message = failedMessage
	m.status.Error = &detail
}

// Status returns a snapshot of the current status.
func (m *StateMachine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status
	if s.Error != nil {
		e := *s.Error
		s.Error = &e
	}
	return s
}

// State returns the current state.
func (m *StateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.State
}

// Reset returns to the initial AP_MODE status.
func (m *StateMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = Status{
		State:   StateAPMode,
		Message: initialMessage,
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

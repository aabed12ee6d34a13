package engine

import "time"

// ---------------------------------------------------------------------------
// Telephony engine port
// ---------------------------------------------------------------------------
//
// The engine (a SIP stack in production, a scripted fake in tests and demo
// mode) is an external collaborator: it emits discrete call and registration
// events and accepts one-way commands. Events may arrive on any goroutine;
// the orchestrator loop marshals them before they touch shared state.

// CallPhase is the lifecycle phase of one call or conference.
// Phases only ever advance; Ended and Failed are terminal.
type CallPhase int

const (
	PhaseIncoming CallPhase = iota
	PhaseOutgoing
	PhaseConnected
	PhaseEnded
	PhaseFailed
)

func (p CallPhase) String() string {
	switch p {
	case PhaseIncoming:
		return "incoming"
	case PhaseOutgoing:
		return "outgoing"
	case PhaseConnected:
		return "connected"
	case PhaseEnded:
		return "ended"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the phase ends the session.
func (p CallPhase) Terminal() bool {
	return p == PhaseEnded || p == PhaseFailed
}

// CallKind distinguishes a plain call from a conference.
type CallKind int

const (
	KindSingle CallKind = iota
	KindConference
)

func (k CallKind) String() string {
	if k == KindConference {
		return "conference"
	}
	return "single"
}

// CallEvent is one state change for one session. Message carries the
// engine's human-readable cause for terminal events; it is empty when the
// local user ended the call.
type CallEvent struct {
	SessionID string
	Kind      CallKind
	Phase     CallPhase
	Remote    string
	Video     bool
	Message   string
	Time      time.Time
}

// RegistrationPhase is the state of one account registration cycle.
type RegistrationPhase int

const (
	RegPending RegistrationPhase = iota
	RegOk
	RegFailed
)

func (p RegistrationPhase) String() string {
	switch p {
	case RegPending:
		return "pending"
	case RegOk:
		return "ok"
	case RegFailed:
		return "failed"
	}
	return "unknown"
}

// RegistrationEvent reports a registration state change for one account.
type RegistrationEvent struct {
	AccountRef string
	Phase      RegistrationPhase
	Message    string
}

// AudioDevice is one selectable audio route.
type AudioDevice struct {
	ID      string
	Name    string
	Current bool
}

// Account is the SIP identity handed to the engine after provisioning.
type Account struct {
	Ref       string
	Username  string
	Password  string
	Domain    string
	Port      string
	Transport string
}

// Engine is the command surface of the telephony stack. Commands are
// one-way from the orchestrator's point of view: outcomes come back as
// events, never as return values beyond immediate rejection.
type Engine interface {
	// Ready is closed once the engine can accept commands. The orchestrator
	// consumes no signal before then.
	Ready() <-chan struct{}

	CallEvents() <-chan CallEvent
	RegistrationEvents() <-chan RegistrationEvent

	Register(acct Account) error
	Dial(address string) error
	Accept(sessionID string) error
	Decline(sessionID string) error
	HangUp(sessionID string) error
	SetMicMuted(sessionID string, muted bool) error
	SetVideoEnabled(sessionID string, enabled bool) error
	Transfer(sessionID, destination string) error
	SetConferenceLayout(sessionID, layout string) error

	AudioDevices() []AudioDevice
	SetAudioRoute(deviceID string) error

	Close() error
}

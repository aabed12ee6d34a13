package orchestrator

import "github.com/okurt/santral/internal/session"

// ---------------------------------------------------------------------------
// ScreenState: the single source of navigational truth
// ---------------------------------------------------------------------------

// Screen is the authoritative screen. Exactly one is current at any time;
// it is only ever set by the state machine, never directly from an engine
// callback.
type Screen int

const (
	ScreenNoSession Screen = iota
	ScreenIncoming
	ScreenOutgoing
	ScreenActiveSingle
	ScreenActiveConference
	ScreenCallsList
	ScreenEnded
)

func (s Screen) String() string {
	switch s {
	case ScreenNoSession:
		return "no-session"
	case ScreenIncoming:
		return "incoming"
	case ScreenOutgoing:
		return "outgoing"
	case ScreenActiveSingle:
		return "active"
	case ScreenActiveConference:
		return "conference"
	case ScreenCallsList:
		return "calls-list"
	case ScreenEnded:
		return "ended"
	}
	return "unknown"
}

// Active reports membership in the active superstate: single and conference
// screens swap between each other without resetting fullscreen or PiP.
func (s Screen) Active() bool {
	return s == ScreenActiveSingle || s == ScreenActiveConference
}

// Posture is the device fold state. A layout hint only: it annotates the
// effect list and never selects a screen.
type Posture int

const (
	PostureUnknown Posture = iota
	PostureFlat
	PostureHalfOpen
)

func (p Posture) String() string {
	switch p {
	case PostureFlat:
		return "flat"
	case PostureHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Permission names the OS grants the orchestrator cares about.
type Permission string

const (
	PermCamera     Permission = "camera"
	PermMicrophone Permission = "microphone"
)

// Grants is the set of permissions currently held.
type Grants struct {
	Camera     bool
	Microphone bool
}

// ScreenState is the full frame handed to the presenter: the authoritative
// screen, the session it presents, UI flags that survive transitions inside
// the active superstate, and a presenter-safe session snapshot.
type ScreenState struct {
	Screen     Screen
	SessionID  string
	Cause      string // Ended only; empty when the user hung up
	FullScreen bool
	PiPActive  bool
	Posture    Posture
	Grants     Grants
	MultiCall  bool
	Sessions   []session.View
	Seq        uint64
}

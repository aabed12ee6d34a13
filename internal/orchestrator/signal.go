package orchestrator

import "github.com/okurt/santral/internal/engine"

// ---------------------------------------------------------------------------
// Signals
// ---------------------------------------------------------------------------
//
// Every input to the orchestrator — engine callback, user action, OS
// result, environment change — is a typed signal posted into one queue and
// applied by a single consumer, in arrival order.

// Signal is a marker for orchestrator inputs.
type Signal interface{ isSignal() }

// EngineCall wraps a raw engine call event. The loop applies it to the
// registry first, then runs the transition as a registry-changed signal.
type EngineCall struct {
	Event engine.CallEvent
}

// SessionChanged tells the machine the registry content changed and the
// screen must be re-evaluated.
type SessionChanged struct{}

// UserRequestedList is the explicit "show calls list" navigation action.
// Explicit user navigation always wins over automatic selection.
type UserRequestedList struct{}

// UserOp enumerates non-navigational user actions.
type UserOp int

const (
	OpAccept UserOp = iota
	OpDecline
	OpHangUp
	OpToggleMute
	OpToggleVideo
	OpOpenAudioRoutes
	OpPickAudioRoute
	OpOpenLayoutMenu
	OpPickLayout
	OpSelectCall
	OpDismissOverlay
	OpToggleFullScreen
	OpDial
	OpTransfer
	OpLeaveHint
	OpDismissEnded
)

func (o UserOp) String() string {
	switch o {
	case OpAccept:
		return "accept"
	case OpDecline:
		return "decline"
	case OpHangUp:
		return "hangup"
	case OpToggleMute:
		return "toggle-mute"
	case OpToggleVideo:
		return "toggle-video"
	case OpOpenAudioRoutes:
		return "open-audio-routes"
	case OpPickAudioRoute:
		return "pick-audio-route"
	case OpOpenLayoutMenu:
		return "open-layout-menu"
	case OpPickLayout:
		return "pick-layout"
	case OpSelectCall:
		return "select-call"
	case OpDismissOverlay:
		return "dismiss-overlay"
	case OpToggleFullScreen:
		return "toggle-fullscreen"
	case OpDial:
		return "dial"
	case OpTransfer:
		return "transfer"
	case OpLeaveHint:
		return "leave-hint"
	case OpDismissEnded:
		return "dismiss-ended"
	}
	return "unknown"
}

// UserAction carries one user operation aimed at the current session unless
// SessionID says otherwise.
type UserAction struct {
	Op        UserOp
	SessionID string
	DeviceID  string // OpPickAudioRoute
	Address   string // OpDial, OpTransfer
	Layout    string // OpPickLayout
}

// PermissionResult closes the permission loop: the dispatcher requested a
// grant, the OS answered, the answer comes back through the queue.
type PermissionResult struct {
	Name    Permission
	Granted bool
}

// PiPLifecycle reports picture-in-picture entry/exit from the window
// system. Never changes the screen.
type PiPLifecycle struct {
	Active bool
}

// FoldStateChanged reports device posture. Never changes the screen.
type FoldStateChanged struct {
	Posture Posture
}

// RegistrationChanged reports an account registration phase change. Gen is
// the attempt generation; the loop drops signals from superseded attempts
// before they reach the machine.
type RegistrationChanged struct {
	AccountRef string
	Phase      engine.RegistrationPhase
	Message    string
	Gen        uint64
}

func (EngineCall) isSignal()          {}
func (SessionChanged) isSignal()      {}
func (UserRequestedList) isSignal()   {}
func (UserAction) isSignal()          {}
func (PermissionResult) isSignal()    {}
func (PiPLifecycle) isSignal()        {}
func (FoldStateChanged) isSignal()    {}
func (RegistrationChanged) isSignal() {}

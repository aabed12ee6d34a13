package orchestrator

import (
	"fmt"

	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/session"
)

// ---------------------------------------------------------------------------
// Navigation state machine
// ---------------------------------------------------------------------------
//
// Transition maps (screen state, signal, registry truth) to (next screen
// state, effects). It never performs I/O: engine commands, overlays, toasts
// and log writes all leave as effects for the dispatcher. Registry truth
// always wins over cached user intent.

// Machine computes transitions. The only state it owns is the transition
// sequence number used for effect deduplication.
type Machine struct {
	seq uint64
}

// Transition applies one signal. Invalid signals for the current screen
// degrade to a no-op plus a diagnostic effect; they never corrupt state.
func (m *Machine) Transition(cur ScreenState, sig Signal, reg *session.Registry) (ScreenState, []Effect) {
	m.seq++
	next := cur
	next.Seq = m.seq

	var fx []Effect
	eff := func(e Effect) {
		e.Seq = m.seq
		if e.SessionID == "" {
			e.SessionID = next.SessionID
		}
		fx = append(fx, e)
	}

	switch sig := sig.(type) {
	case SessionChanged:
		m.onSessionChanged(cur, &next, eff, reg)
	case UserRequestedList:
		if cur.Screen.Active() {
			next.Screen = ScreenCallsList
		} else {
			eff(Effect{Kind: EffectDiag, Text: fmt.Sprintf("list request ignored on %s screen", cur.Screen)})
		}
	case UserAction:
		m.onUserAction(cur, &next, eff, reg, sig)
	case PermissionResult:
		m.onPermissionResult(cur, &next, eff, reg, sig)
	case PiPLifecycle:
		// Window signals annotate; they never select a screen.
		next.PiPActive = sig.Active
		eff(Effect{Kind: EffectRelayout, Posture: cur.Posture})
	case FoldStateChanged:
		next.Posture = sig.Posture
		eff(Effect{Kind: EffectRelayout, Posture: sig.Posture})
	case RegistrationChanged:
		m.onRegistrationChanged(eff, sig)
	default:
		eff(Effect{Kind: EffectDiag, Text: fmt.Sprintf("unhandled signal %T", sig)})
	}

	next.Sessions = reg.Snapshot()
	multi := reg.LiveCount() > 1
	if multi != cur.MultiCall {
		eff(Effect{Kind: EffectAccent, On: multi})
	}
	next.MultiCall = multi
	return next, fx
}

func (m *Machine) onSessionChanged(cur ScreenState, next *ScreenState, eff func(Effect), reg *session.Registry) {
	// Resolve the current session first: a lone fresh incoming call gets
	// promoted here, so the sweep's secondary-call announcement skips it.
	curSess, ok := reg.Current()
	m.sweepTerminal(cur, eff, reg)

	if !ok {
		if cur.Screen != ScreenNoSession && cur.Screen != ScreenEnded {
			// The presented session vanished without a terminal event.
			next.Screen = ScreenEnded
			next.Cause = "call lost"
			m.leaveActive(cur, next, eff)
			eff(Effect{Kind: EffectToast, Severity: SeverityError, Text: "call lost"})
		}
		return
	}

	if curSess.Terminal() {
		if others := reg.Others(curSess.ID); len(others) > 0 {
			// Another live session takes over: most recently connected wins.
			pick := others[0]
			for _, o := range others[1:] {
				if o.ConnectedAt.After(pick.ConnectedAt) {
					pick = o
				}
			}
			eff(logCall(curSess))
			reg.Remove(curSess.ID)
			if err := reg.SetCurrent(pick.ID); err != nil {
				eff(Effect{Kind: EffectDiag, Text: err.Error()})
				return
			}
			m.present(pick, cur, next, eff, reg)
			return
		}
		if cur.Screen != ScreenEnded {
			eff(logCall(curSess))
			next.Screen = ScreenEnded
			next.SessionID = curSess.ID
			next.Cause = curSess.Cause
			m.leaveActive(cur, next, eff)
			if curSess.Cause != "" {
				eff(Effect{Kind: EffectToast, Severity: SeverityError, Text: curSess.Cause, SessionID: curSess.ID})
			}
		}
		return
	}

	m.present(curSess, cur, next, eff, reg)
}

// present selects the screen for a non-terminal current session.
func (m *Machine) present(s *session.Session, cur ScreenState, next *ScreenState, eff func(Effect), reg *session.Registry) {
	next.SessionID = s.ID
	next.Cause = ""

	switch s.Phase {
	case engine.PhaseIncoming:
		if cur.Screen != ScreenIncoming {
			next.Screen = ScreenIncoming
			eff(Effect{Kind: EffectNotifyIncoming, SessionID: s.ID})
		}
	case engine.PhaseOutgoing:
		next.Screen = ScreenOutgoing
	case engine.PhaseConnected:
		target := ScreenActiveSingle
		if s.Kind == engine.KindConference {
			target = ScreenActiveConference
		}
		if cur.Screen == ScreenCallsList && reg.LiveCount() > 1 {
			// Explicit list view holds until a single session remains.
			next.Screen = ScreenCallsList
			return
		}
		// Single and conference swap inside the active superstate and keep
		// fullscreen and PiP flags; entering from outside starts plain.
		if !cur.Screen.Active() {
			next.FullScreen = false
			next.PiPActive = false
		}
		next.Screen = target
	}
}

// sweepTerminal logs and purges terminal sessions no screen references, and
// announces fresh incoming sessions that are not the presented one.
func (m *Machine) sweepTerminal(cur ScreenState, eff func(Effect), reg *session.Registry) {
	known := make(map[string]bool, len(cur.Sessions))
	for _, v := range cur.Sessions {
		known[v.ID] = true
	}
	for _, v := range reg.Snapshot() {
		if v.Phase.Terminal() && !v.Current && v.ID != cur.SessionID {
			if s, ok := reg.Get(v.ID); ok {
				eff(logCall(s))
			}
			reg.Remove(v.ID)
			continue
		}
		if !known[v.ID] && v.Phase == engine.PhaseIncoming && !v.Current {
			// Second incoming call while another session is presented.
			eff(Effect{Kind: EffectNotifyIncoming, SessionID: v.ID})
			eff(Effect{Kind: EffectToast, Severity: SeverityInfo, Text: "incoming call " + v.Remote, SessionID: v.ID})
		}
	}
}

// leaveActive clears active-superstate flags when navigation leaves it.
func (m *Machine) leaveActive(cur ScreenState, next *ScreenState, eff func(Effect)) {
	if cur.PiPActive {
		eff(Effect{Kind: EffectExitPiP})
	}
	if cur.FullScreen {
		eff(Effect{Kind: EffectFullScreen, On: false})
	}
	next.PiPActive = false
	next.FullScreen = false
}

func (m *Machine) onUserAction(cur ScreenState, next *ScreenState, eff func(Effect), reg *session.Registry, act UserAction) {
	id := act.SessionID
	if id == "" {
		id = cur.SessionID
	}
	diag := func(why string) {
		eff(Effect{Kind: EffectDiag, Text: fmt.Sprintf("%s ignored: %s", act.Op, why)})
	}

	switch act.Op {
	case OpAccept:
		if cur.Screen != ScreenIncoming {
			diag("no incoming call")
			return
		}
		eff(Effect{Kind: EffectEngineAccept, SessionID: id})
	case OpDecline:
		if cur.Screen != ScreenIncoming {
			diag("no incoming call")
			return
		}
		eff(Effect{Kind: EffectEngineDecline, SessionID: id})
	case OpHangUp:
		if _, ok := reg.Get(id); !ok {
			diag("no such session")
			return
		}
		eff(Effect{Kind: EffectEngineHangUp, SessionID: id})
	case OpToggleMute:
		s, ok := reg.Get(id)
		if !ok {
			diag("no such session")
			return
		}
		if s.Muted && !cur.Grants.Microphone {
			eff(Effect{Kind: EffectRequestPermission, Permission: PermMicrophone})
			return
		}
		s.Muted = !s.Muted
		eff(Effect{Kind: EffectEngineMute, SessionID: id, On: s.Muted})
	case OpToggleVideo:
		s, ok := reg.Get(id)
		if !ok {
			diag("no such session")
			return
		}
		if !s.Video && !cur.Grants.Camera {
			eff(Effect{Kind: EffectRequestPermission, Permission: PermCamera})
			return
		}
		eff(Effect{Kind: EffectEngineVideo, SessionID: id, On: !s.Video})
	case OpOpenAudioRoutes:
		if !cur.Screen.Active() {
			diag("no active call")
			return
		}
		eff(Effect{Kind: EffectOpenAudioRoutes})
	case OpPickAudioRoute:
		eff(Effect{Kind: EffectEngineRoute, DeviceID: act.DeviceID})
		eff(Effect{Kind: EffectCloseOverlay})
	case OpOpenLayoutMenu:
		if cur.Screen != ScreenActiveConference {
			diag("not in a conference")
			return
		}
		eff(Effect{Kind: EffectOpenLayoutMenu})
	case OpPickLayout:
		if cur.Screen != ScreenActiveConference {
			diag("not in a conference")
			return
		}
		eff(Effect{Kind: EffectEngineLayout, SessionID: id, Layout: act.Layout})
		eff(Effect{Kind: EffectCloseOverlay})
	case OpSelectCall:
		s, ok := reg.Get(act.SessionID)
		if !ok || s.Terminal() {
			diag("no such live session")
			return
		}
		if err := reg.SetCurrent(s.ID); err != nil {
			diag(err.Error())
			return
		}
		// Explicit selection leaves the list even with other live calls.
		next.SessionID = s.ID
		next.Cause = ""
		switch s.Phase {
		case engine.PhaseIncoming:
			next.Screen = ScreenIncoming
		case engine.PhaseOutgoing:
			next.Screen = ScreenOutgoing
		default:
			if !cur.Screen.Active() {
				next.FullScreen = false
				next.PiPActive = false
			}
			if s.Kind == engine.KindConference {
				next.Screen = ScreenActiveConference
			} else {
				next.Screen = ScreenActiveSingle
			}
		}
	case OpDismissOverlay:
		eff(Effect{Kind: EffectCloseOverlay})
	case OpToggleFullScreen:
		if !cur.Screen.Active() {
			diag("no active call")
			return
		}
		next.FullScreen = !cur.FullScreen
		eff(Effect{Kind: EffectFullScreen, On: next.FullScreen})
	case OpDial:
		if cur.Screen != ScreenNoSession && cur.Screen != ScreenCallsList {
			diag("cannot dial here")
			return
		}
		eff(Effect{Kind: EffectEngineDial, Address: act.Address})
	case OpTransfer:
		if !cur.Screen.Active() {
			diag("no active call")
			return
		}
		eff(Effect{Kind: EffectEngineTransfer, SessionID: id, Address: act.Address})
		eff(Effect{Kind: EffectToast, Severity: SeveritySuccess, Text: "call transfer in progress"})
	case OpLeaveHint:
		// PiP auto-entry: active screen, video enabled, not already in PiP.
		s, ok := reg.Get(id)
		if cur.Screen.Active() && ok && s.Video && !cur.PiPActive {
			eff(Effect{Kind: EffectEnterPiP, SessionID: id})
		}
	case OpDismissEnded:
		if cur.Screen != ScreenEnded {
			diag("nothing to dismiss")
			return
		}
		reg.Remove(cur.SessionID)
		next.Screen = ScreenNoSession
		next.SessionID = ""
		next.Cause = ""
		if reg.LiveCount() == 0 {
			eff(Effect{Kind: EffectFinish})
		}
	default:
		diag("unknown operation")
	}
}

func (m *Machine) onPermissionResult(cur ScreenState, next *ScreenState, eff func(Effect), reg *session.Registry, res PermissionResult) {
	switch res.Name {
	case PermCamera:
		next.Grants.Camera = res.Granted
		if !res.Granted {
			eff(Effect{Kind: EffectToast, Severity: SeverityError, Text: "camera permission denied"})
			return
		}
		// Grant consequence: enable video on the presented session.
		if s, ok := reg.Get(cur.SessionID); ok && !s.Terminal() {
			eff(Effect{Kind: EffectEngineVideo, SessionID: s.ID, On: true})
		}
	case PermMicrophone:
		next.Grants.Microphone = res.Granted
		if !res.Granted {
			eff(Effect{Kind: EffectToast, Severity: SeverityError, Text: "microphone permission denied"})
			return
		}
		if s, ok := reg.Get(cur.SessionID); ok && !s.Terminal() && s.Muted {
			s.Muted = false
			eff(Effect{Kind: EffectEngineMute, SessionID: s.ID, On: false})
		}
	}
}

func (m *Machine) onRegistrationChanged(eff func(Effect), sig RegistrationChanged) {
	switch sig.Phase {
	case engine.RegPending:
		eff(Effect{Kind: EffectToast, Severity: SeverityInfo, Text: "registering " + sig.AccountRef})
	case engine.RegOk:
		eff(Effect{Kind: EffectToast, Severity: SeveritySuccess, Text: "registered " + sig.AccountRef})
	case engine.RegFailed:
		msg := sig.Message
		if msg == "" {
			msg = "registration failed"
		}
		eff(Effect{Kind: EffectToast, Severity: SeverityError, Text: msg})
	}
}

func logCall(s *session.Session) Effect {
	outcome := "completed"
	switch {
	case s.Phase == engine.PhaseFailed:
		outcome = "failed"
	case s.ConnectedAt.IsZero():
		outcome = "missed"
	}
	return Effect{
		Kind:      EffectLogCall,
		SessionID: s.ID,
		Record: &CallRecord{
			SessionID: s.ID,
			Remote:    s.Remote,
			Incoming:  s.Incoming,
			Started:   s.StartedAt,
			Connected: s.ConnectedAt,
			Ended:     s.EndedAt,
			Outcome:   outcome,
		},
	}
}

package dispatch

import (
	"fmt"

	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/orchestrator"
)

// ---------------------------------------------------------------------------
// Side-effect dispatcher
// ---------------------------------------------------------------------------
//
// Translates the machine's effect list into external actions and owns the
// stateful guarantees around them:
//   - identical effect tokens execute once (dedup by kind+session+sequence)
//   - at most one modal overlay is open; opening another closes it, and it
//     is released on every screen exit regardless of the exit path
//   - PiP entry failure is a toast, never a navigation change
//   - permission requests are fire-and-forget; the OS answer loops back
//     into the queue as a PermissionResult signal
//   - engine command failures on call setup/teardown are fatal to that
//     session only, surfaced as a synthesized failed event

// Presenter renders one frame: the authoritative screen state plus the
// ordered effects addressed to the UI. Purely reactive.
type Presenter interface {
	Present(frame orchestrator.ScreenState, effects []orchestrator.Effect)
}

// PermissionRequester asks the OS for a grant and calls result exactly once
// later, on any goroutine.
type PermissionRequester interface {
	Request(name orchestrator.Permission, result func(granted bool))
}

// PiPController enters and leaves picture-in-picture.
type PiPController interface {
	Enter() error
	Exit()
}

// HistoryWriter persists finished calls.
type HistoryWriter interface {
	Record(rec orchestrator.CallRecord) error
}

// Overlay identifies the single modal overlay the dispatcher may hold open.
type Overlay string

const (
	OverlayNone        Overlay = ""
	OverlayAudioRoutes Overlay = "audio-routes"
	OverlayLayoutMenu  Overlay = "layout-menu"
)

// Sinks are the external surfaces the dispatcher drives. Presenter is the
// only one that must be set; the others degrade to diagnostics.
type Sinks struct {
	Engine      engine.Engine
	Presenter   Presenter
	Permissions PermissionRequester
	PiP         PiPController
	History     HistoryWriter
	Post        func(orchestrator.Signal)
	Diag        func(format string, args ...any)
}

// Dispatcher executes effects for the orchestrator loop. Apply is only
// called from the loop goroutine, so its state needs no lock.
type Dispatcher struct {
	sinks   Sinks
	overlay Overlay
	seen    map[string]struct{}
}

func New(sinks Sinks) *Dispatcher {
	if sinks.Diag == nil {
		sinks.Diag = func(string, ...any) {}
	}
	return &Dispatcher{sinks: sinks, seen: map[string]struct{}{}}
}

// OpenOverlay reports the currently held overlay.
func (d *Dispatcher) OpenOverlay() Overlay { return d.overlay }

// Apply executes one transition's effects in order, then hands the frame
// and the UI-addressed remainder to the presenter.
func (d *Dispatcher) Apply(prev, next orchestrator.ScreenState, effects []orchestrator.Effect) {
	var ui []orchestrator.Effect

	for _, e := range effects {
		if !d.first(e) {
			continue
		}
		switch e.Kind {
		case orchestrator.EffectEngineAccept, orchestrator.EffectEngineDecline,
			orchestrator.EffectEngineHangUp, orchestrator.EffectEngineMute,
			orchestrator.EffectEngineVideo, orchestrator.EffectEngineRoute,
			orchestrator.EffectEngineDial, orchestrator.EffectEngineTransfer,
			orchestrator.EffectEngineLayout:
			if fb := d.engineCommand(e); fb != nil {
				ui = append(ui, *fb)
			}
		case orchestrator.EffectRequestPermission:
			d.requestPermission(e.Permission)
		case orchestrator.EffectLogCall:
			d.logCall(e)
		case orchestrator.EffectEnterPiP:
			if fb := d.enterPiP(next); fb != nil {
				ui = append(ui, *fb)
			}
		case orchestrator.EffectExitPiP:
			if d.sinks.PiP != nil {
				d.sinks.PiP.Exit()
			}
			ui = append(ui, e)
		case orchestrator.EffectOpenAudioRoutes:
			ui = append(ui, d.open(OverlayAudioRoutes, e)...)
		case orchestrator.EffectOpenLayoutMenu:
			ui = append(ui, d.open(OverlayLayoutMenu, e)...)
		case orchestrator.EffectCloseOverlay:
			if d.overlay != OverlayNone {
				d.overlay = OverlayNone
				ui = append(ui, e)
			}
		case orchestrator.EffectDiag:
			d.sinks.Diag("%s", e.Text)
		default:
			ui = append(ui, e)
		}
	}

	// Scoped-resource guarantee: any screen exit releases the overlay, no
	// matter which path caused it.
	if next.Screen != prev.Screen && d.overlay != OverlayNone {
		d.overlay = OverlayNone
		ui = append(ui, orchestrator.Effect{Kind: orchestrator.EffectCloseOverlay, Seq: next.Seq})
	}

	if d.sinks.Presenter != nil {
		d.sinks.Presenter.Present(next, ui)
	}
}

// first records the effect token and reports whether it is new. A repeated
// token means the same transition was delivered twice; it executes once.
func (d *Dispatcher) first(e orchestrator.Effect) bool {
	tok := e.Token()
	if _, dup := d.seen[tok]; dup {
		d.sinks.Diag("duplicate effect %s suppressed", tok)
		return false
	}
	if len(d.seen) > 8192 {
		d.seen = map[string]struct{}{}
	}
	d.seen[tok] = struct{}{}
	return true
}

// open tracks overlay exclusivity: a new overlay implicitly closes the old.
func (d *Dispatcher) open(kind Overlay, e orchestrator.Effect) []orchestrator.Effect {
	var out []orchestrator.Effect
	if d.overlay != OverlayNone && d.overlay != kind {
		out = append(out, orchestrator.Effect{Kind: orchestrator.EffectCloseOverlay, Seq: e.Seq, SessionID: e.SessionID})
	}
	d.overlay = kind
	if kind == OverlayAudioRoutes && d.sinks.Engine != nil {
		e.Devices = d.sinks.Engine.AudioDevices()
	}
	return append(out, e)
}

func (d *Dispatcher) engineCommand(e orchestrator.Effect) *orchestrator.Effect {
	eng := d.sinks.Engine
	if eng == nil {
		d.sinks.Diag("no engine bound, dropping %s", e.Kind)
		return nil
	}

	var err error
	switch e.Kind {
	case orchestrator.EffectEngineAccept:
		err = eng.Accept(e.SessionID)
	case orchestrator.EffectEngineDecline:
		err = eng.Decline(e.SessionID)
	case orchestrator.EffectEngineHangUp:
		err = eng.HangUp(e.SessionID)
	case orchestrator.EffectEngineMute:
		err = eng.SetMicMuted(e.SessionID, e.On)
	case orchestrator.EffectEngineVideo:
		err = eng.SetVideoEnabled(e.SessionID, e.On)
	case orchestrator.EffectEngineRoute:
		err = eng.SetAudioRoute(e.DeviceID)
	case orchestrator.EffectEngineDial:
		err = eng.Dial(e.Address)
	case orchestrator.EffectEngineTransfer:
		err = eng.Transfer(e.SessionID, e.Address)
	case orchestrator.EffectEngineLayout:
		err = eng.SetConferenceLayout(e.SessionID, e.Layout)
	}
	if err == nil {
		return nil
	}

	d.sinks.Diag("engine %s: %v", e.Kind, err)
	switch e.Kind {
	case orchestrator.EffectEngineAccept, orchestrator.EffectEngineDecline, orchestrator.EffectEngineHangUp:
		// Call setup/teardown cannot proceed: fatal to this session only.
		if d.sinks.Post != nil && e.SessionID != "" {
			d.sinks.Post(orchestrator.EngineCall{Event: engine.CallEvent{
				SessionID: e.SessionID,
				Phase:     engine.PhaseFailed,
				Message:   fmt.Sprintf("engine unavailable: %v", err),
			}})
		}
		return nil
	case orchestrator.EffectEngineTransfer:
		return &orchestrator.Effect{Kind: orchestrator.EffectToast, Seq: e.Seq, SessionID: e.SessionID,
			Severity: orchestrator.SeverityError, Text: "call transfer failed"}
	default:
		return &orchestrator.Effect{Kind: orchestrator.EffectToast, Seq: e.Seq, SessionID: e.SessionID,
			Severity: orchestrator.SeverityError, Text: fmt.Sprintf("%s failed: %v", e.Kind, err)}
	}
}

// requestPermission is fire-and-forget: the OS answer re-enters the queue
// as a PermissionResult signal, closing the loop.
func (d *Dispatcher) requestPermission(name orchestrator.Permission) {
	if d.sinks.Permissions == nil {
		d.sinks.Diag("no permission requester bound, %s stays denied", name)
		if d.sinks.Post != nil {
			d.sinks.Post(orchestrator.PermissionResult{Name: name, Granted: false})
		}
		return
	}
	d.sinks.Permissions.Request(name, func(granted bool) {
		if d.sinks.Post != nil {
			d.sinks.Post(orchestrator.PermissionResult{Name: name, Granted: granted})
		}
	})
}

func (d *Dispatcher) enterPiP(next orchestrator.ScreenState) *orchestrator.Effect {
	unavailable := &orchestrator.Effect{Kind: orchestrator.EffectToast, Seq: next.Seq, SessionID: next.SessionID,
		Severity: orchestrator.SeverityError, Text: "picture-in-picture unavailable"}

	// Only from an active screen; the machine guards this too, but the
	// dispatcher is the last line before the window system.
	if d.sinks.PiP == nil || !(next.Screen == orchestrator.ScreenActiveSingle || next.Screen == orchestrator.ScreenActiveConference) {
		return unavailable
	}
	if err := d.sinks.PiP.Enter(); err != nil {
		d.sinks.Diag("pip enter: %v", err)
		if d.sinks.Post != nil {
			d.sinks.Post(orchestrator.PiPLifecycle{Active: false})
		}
		return unavailable
	}
	if d.sinks.Post != nil {
		d.sinks.Post(orchestrator.PiPLifecycle{Active: true})
	}
	return nil
}

func (d *Dispatcher) logCall(e orchestrator.Effect) {
	if e.Record == nil {
		return
	}
	if d.sinks.History == nil {
		d.sinks.Diag("no history writer bound, dropping record for %s", e.SessionID)
		return
	}
	if err := d.sinks.History.Record(*e.Record); err != nil {
		d.sinks.Diag("call log: %v", err)
	}
}

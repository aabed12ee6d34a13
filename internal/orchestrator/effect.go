package orchestrator

import (
	"fmt"
	"time"

	"github.com/okurt/santral/internal/engine"
)

// ---------------------------------------------------------------------------
// Effects
// ---------------------------------------------------------------------------
//
// An effect is a non-navigational side action produced alongside a
// transition: toasts, overlay opens, PiP and fullscreen toggles, engine
// commands, permission requests, call-log writes. The dispatcher executes
// them in order and deduplicates on Token.

// EffectKind tags one effect variant.
type EffectKind string

const (
	EffectNotifyIncoming    EffectKind = "notify-incoming"
	EffectToast             EffectKind = "toast"
	EffectDiag              EffectKind = "diag"
	EffectOpenAudioRoutes   EffectKind = "open-audio-routes"
	EffectOpenLayoutMenu    EffectKind = "open-layout-menu"
	EffectCloseOverlay      EffectKind = "close-overlay"
	EffectEnterPiP          EffectKind = "enter-pip"
	EffectExitPiP           EffectKind = "exit-pip"
	EffectFullScreen        EffectKind = "fullscreen"
	EffectRequestPermission EffectKind = "request-permission"
	EffectRelayout          EffectKind = "relayout"
	EffectAccent            EffectKind = "accent"
	EffectFinish            EffectKind = "finish"
	EffectLogCall           EffectKind = "log-call"

	EffectEngineAccept   EffectKind = "engine-accept"
	EffectEngineDecline  EffectKind = "engine-decline"
	EffectEngineHangUp   EffectKind = "engine-hangup"
	EffectEngineMute     EffectKind = "engine-mute"
	EffectEngineVideo    EffectKind = "engine-video"
	EffectEngineRoute    EffectKind = "engine-route"
	EffectEngineDial     EffectKind = "engine-dial"
	EffectEngineTransfer EffectKind = "engine-transfer"
	EffectEngineLayout   EffectKind = "engine-layout"
)

// Severity grades a toast.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

// CallRecord is the payload of a log-call effect, written to the call
// history by the dispatcher.
type CallRecord struct {
	SessionID string
	Remote    string
	Incoming  bool
	Started   time.Time
	Connected time.Time
	Ended     time.Time
	Outcome   string
}

// Effect is one side action. Only the fields its Kind names are meaningful.
type Effect struct {
	Kind       EffectKind
	SessionID  string
	Seq        uint64
	Text       string
	Severity   Severity
	On         bool
	Permission Permission
	Posture    Posture
	DeviceID   string
	Address    string
	Layout     string
	Devices    []engine.AudioDevice // filled in by the dispatcher for open-audio-routes
	Record     *CallRecord
}

// Token is the deduplication key: effect kind + session id + transition
// sequence. Delivering the same token twice must execute once.
func (e Effect) Token() string {
	return fmt.Sprintf("%s/%s/%d", e.Kind, e.SessionID, e.Seq)
}

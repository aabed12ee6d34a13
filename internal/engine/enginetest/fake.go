package enginetest

import (
	"fmt"
	"sync"
	"time"

	"github.com/okurt/santral/internal/engine"
)

// Fake is a scripted in-memory engine. Tests push events directly; demo
// mode plays a canned incoming-call script. Commands are recorded and, where
// it keeps the fake believable, echoed back as events (HangUp produces an
// Ended event the way a real stack would).
type Fake struct {
	mu        sync.Mutex
	ready     chan struct{}
	calls     chan engine.CallEvent
	regs      chan engine.RegistrationEvent
	commands  []string
	devices   []engine.AudioDevice
	route     string
	unavail   bool
	lastKind  map[string]engine.CallKind
	lastVideo map[string]bool
}

func New() *Fake {
	f := &Fake{
		ready: make(chan struct{}),
		calls: make(chan engine.CallEvent, 64),
		regs:  make(chan engine.RegistrationEvent, 16),
		devices: []engine.AudioDevice{
			{ID: "earpiece", Name: "Earpiece", Current: true},
			{ID: "speaker", Name: "Speaker"},
			{ID: "headset", Name: "Headset"},
		},
		route:     "earpiece",
		lastKind:  map[string]engine.CallKind{},
		lastVideo: map[string]bool{},
	}
	close(f.ready)
	return f
}

// NewUnready returns a fake whose Ready channel stays open until Start is
// called, for readiness-gating tests.
func NewUnready() *Fake {
	f := New()
	f.ready = make(chan struct{})
	return f
}

func (f *Fake) Start() {
	close(f.ready)
}

// SetUnavailable makes every subsequent command fail, simulating a dead
// engine core.
func (f *Fake) SetUnavailable(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unavail = v
}

func (f *Fake) Ready() <-chan struct{}                             { return f.ready }
func (f *Fake) CallEvents() <-chan engine.CallEvent               { return f.calls }
func (f *Fake) RegistrationEvents() <-chan engine.RegistrationEvent { return f.regs }

// Push emits a call event as if the stack produced it.
func (f *Fake) Push(ev engine.CallEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	f.mu.Lock()
	f.lastKind[ev.SessionID] = ev.Kind
	if ev.Phase == engine.PhaseConnected {
		f.lastVideo[ev.SessionID] = ev.Video
	}
	f.mu.Unlock()
	f.calls <- ev
}

// PushRegistration emits a registration event.
func (f *Fake) PushRegistration(ev engine.RegistrationEvent) {
	f.regs <- ev
}

// Commands returns the commands recorded so far.
func (f *Fake) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

func (f *Fake) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavail {
		return fmt.Errorf("engine core unavailable")
	}
	f.commands = append(f.commands, fmt.Sprintf(format, args...))
	return nil
}

func (f *Fake) Register(acct engine.Account) error {
	if err := f.record("register %s@%s", acct.Username, acct.Domain); err != nil {
		return err
	}
	f.regs <- engine.RegistrationEvent{AccountRef: acct.Ref, Phase: engine.RegPending}
	return nil
}

func (f *Fake) Dial(address string) error {
	return f.record("dial %s", address)
}

func (f *Fake) Accept(sessionID string) error {
	return f.record("accept %s", sessionID)
}

func (f *Fake) Decline(sessionID string) error {
	return f.record("decline %s", sessionID)
}

func (f *Fake) HangUp(sessionID string) error {
	if err := f.record("hangup %s", sessionID); err != nil {
		return err
	}
	f.mu.Lock()
	kind := f.lastKind[sessionID]
	f.mu.Unlock()
	// Deliberate local hang-up: terminal event with no cause message.
	f.calls <- engine.CallEvent{SessionID: sessionID, Kind: kind, Phase: engine.PhaseEnded, Time: time.Now()}
	return nil
}

func (f *Fake) SetMicMuted(sessionID string, muted bool) error {
	return f.record("mute %s %t", sessionID, muted)
}

func (f *Fake) SetVideoEnabled(sessionID string, enabled bool) error {
	if err := f.record("video %s %t", sessionID, enabled); err != nil {
		return err
	}
	f.mu.Lock()
	f.lastVideo[sessionID] = enabled
	kind := f.lastKind[sessionID]
	f.mu.Unlock()
	f.calls <- engine.CallEvent{SessionID: sessionID, Kind: kind, Phase: engine.PhaseConnected, Video: enabled, Time: time.Now()}
	return nil
}

func (f *Fake) Transfer(sessionID, destination string) error {
	return f.record("transfer %s %s", sessionID, destination)
}

func (f *Fake) SetConferenceLayout(sessionID, layout string) error {
	return f.record("layout %s %s", sessionID, layout)
}

func (f *Fake) AudioDevices() []engine.AudioDevice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]engine.AudioDevice, len(f.devices))
	copy(out, f.devices)
	for i := range out {
		out[i].Current = out[i].ID == f.route
	}
	return out
}

func (f *Fake) SetAudioRoute(deviceID string) error {
	if err := f.record("route %s", deviceID); err != nil {
		return err
	}
	f.mu.Lock()
	f.route = deviceID
	f.mu.Unlock()
	return nil
}

func (f *Fake) Close() error {
	return nil
}

// PlayDemo feeds a short scripted scenario: registration, an incoming call
// that connects, then ends. Used by the -demo flag.
func (f *Fake) PlayDemo() {
	go func() {
		f.regs <- engine.RegistrationEvent{AccountRef: "demo", Phase: engine.RegPending}
		time.Sleep(600 * time.Millisecond)
		f.regs <- engine.RegistrationEvent{AccountRef: "demo", Phase: engine.RegOk}
		time.Sleep(time.Second)
		f.Push(engine.CallEvent{SessionID: "demo-1", Phase: engine.PhaseIncoming, Remote: "sip:101@demo.local"})
		time.Sleep(3 * time.Second)
		f.Push(engine.CallEvent{SessionID: "demo-1", Phase: engine.PhaseConnected, Remote: "sip:101@demo.local"})
		time.Sleep(15 * time.Second)
		f.Push(engine.CallEvent{SessionID: "demo-1", Phase: engine.PhaseEnded, Message: "remote hung up"})
	}()
}

package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/engine/enginetest"
)

// recordingDispatcher captures every applied transition. Apply can be told
// to panic once to exercise the loop's containment.
type recordingDispatcher struct {
	mu        sync.Mutex
	frames    []ScreenState
	effects   [][]Effect
	panicNext bool
	applied   chan struct{}
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{applied: make(chan struct{}, 64)}
}

func (d *recordingDispatcher) Apply(prev, next ScreenState, fx []Effect) {
	d.mu.Lock()
	if d.panicNext {
		d.panicNext = false
		d.mu.Unlock()
		panic("dispatcher blew up")
	}
	d.frames = append(d.frames, next)
	d.effects = append(d.effects, fx)
	d.mu.Unlock()
	d.applied <- struct{}{}
}

func (d *recordingDispatcher) wait(t *testing.T) ScreenState {
	t.Helper()
	select {
	case <-d.applied:
	case <-time.After(2 * time.Second):
		t.Fatal("no transition applied")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames[len(d.frames)-1]
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

func startLoop(t *testing.T, cfg Config) (*Loop, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoop(cfg)
	go func() { _ = l.Run(ctx) }()
	t.Cleanup(cancel)
	return l, cancel
}

func TestLoopAppliesSignalsInPostOrder(t *testing.T) {
	d := newRecordingDispatcher()
	l, _ := startLoop(t, Config{Dispatcher: d})

	l.Post(EngineCall{Event: engine.CallEvent{SessionID: "a", Phase: engine.PhaseIncoming, Time: time.Now()}})
	frame := d.wait(t)
	if frame.Screen != ScreenIncoming {
		t.Fatalf("screen = %s, want incoming", frame.Screen)
	}

	l.Post(EngineCall{Event: engine.CallEvent{SessionID: "a", Phase: engine.PhaseConnected, Time: time.Now()}})
	frame = d.wait(t)
	if frame.Screen != ScreenActiveSingle {
		t.Fatalf("screen = %s, want active", frame.Screen)
	}

	if frame.Seq != 2 {
		t.Fatalf("Seq = %d, want 2 (one transition per signal)", frame.Seq)
	}
}

func TestLoopWaitsForEngineReadiness(t *testing.T) {
	eng := enginetest.NewUnready()
	d := newRecordingDispatcher()
	l, _ := startLoop(t, Config{Dispatcher: d, Ready: eng.Ready()})

	l.Post(EngineCall{Event: engine.CallEvent{SessionID: "a", Phase: engine.PhaseIncoming, Time: time.Now()}})
	select {
	case <-d.applied:
		t.Fatal("signal applied before engine readiness")
	case <-time.After(100 * time.Millisecond):
	}

	eng.Start()
	frame := d.wait(t)
	if frame.Screen != ScreenIncoming {
		t.Fatalf("screen = %s, want incoming", frame.Screen)
	}
}

func TestLoopDropsUnknownSessionEvents(t *testing.T) {
	var diags []string
	var mu sync.Mutex
	d := newRecordingDispatcher()
	l, _ := startLoop(t, Config{Dispatcher: d, Diag: func(format string, args ...any) {
		mu.Lock()
		diags = append(diags, format)
		mu.Unlock()
	}})

	// A connected event for a session that was never created.
	l.Post(EngineCall{Event: engine.CallEvent{SessionID: "ghost", Phase: engine.PhaseConnected, Time: time.Now()}})
	l.Post(EngineCall{Event: engine.CallEvent{SessionID: "a", Phase: engine.PhaseIncoming, Time: time.Now()}})

	frame := d.wait(t)
	if frame.Screen != ScreenIncoming || frame.SessionID != "a" {
		t.Fatalf("frame = %+v", frame)
	}
	if d.count() != 1 {
		t.Fatalf("applied %d transitions, want 1 (ghost dropped)", d.count())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(diags) == 0 {
		t.Fatal("dropped event should be diagnosed")
	}
}

func TestLoopDropsStaleRegistrationGenerations(t *testing.T) {
	d := newRecordingDispatcher()
	live := uint64(3)
	l, _ := startLoop(t, Config{Dispatcher: d, Accepts: func(ref string, gen uint64) bool {
		return gen == live
	}})

	l.Post(RegistrationChanged{AccountRef: "user@pbx", Phase: engine.RegOk, Gen: 2})
	l.Post(RegistrationChanged{AccountRef: "user@pbx", Phase: engine.RegOk, Gen: 3})

	d.wait(t)
	if d.count() != 1 {
		t.Fatalf("applied %d transitions, want 1 (stale generation dropped)", d.count())
	}
}

func TestLoopSurvivesDispatcherPanic(t *testing.T) {
	d := newRecordingDispatcher()
	var diagged bool
	var mu sync.Mutex
	l, _ := startLoop(t, Config{Dispatcher: d, Diag: func(string, ...any) {
		mu.Lock()
		diagged = true
		mu.Unlock()
	}})

	d.mu.Lock()
	d.panicNext = true
	d.mu.Unlock()

	l.Post(EngineCall{Event: engine.CallEvent{SessionID: "a", Phase: engine.PhaseIncoming, Time: time.Now()}})
	l.Post(EngineCall{Event: engine.CallEvent{SessionID: "a", Phase: engine.PhaseConnected, Time: time.Now()}})

	frame := d.wait(t)
	if frame.Screen != ScreenActiveSingle {
		t.Fatalf("screen = %s, want active (loop should keep consuming)", frame.Screen)
	}
	mu.Lock()
	defer mu.Unlock()
	if !diagged {
		t.Fatal("panic should surface as a diagnostic")
	}
}

func TestPostNeverBlocksOnFullQueue(t *testing.T) {
	// No consumer running: the queue fills and stays full. Post must still
	// return, or the dispatcher's self-posts could deadlock the loop.
	var diags []string
	l := NewLoop(Config{QueueSize: 2, Diag: func(format string, args ...any) {
		diags = append(diags, format)
	}})

	for i := 0; i < 5; i++ {
		l.Post(UserRequestedList{})
	}
	if len(diags) != 3 {
		t.Fatalf("dropped %d signals, want 3 diagnosed overflow drops", len(diags))
	}
}

func TestPumpForwardsEngineEvents(t *testing.T) {
	eng := enginetest.New()
	d := newRecordingDispatcher()
	l, cancel := startLoop(t, Config{Dispatcher: d, Ready: eng.Ready()})
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	l.Pump(ctx, eng, func(string) uint64 { return 7 })

	eng.Push(engine.CallEvent{SessionID: "a", Phase: engine.PhaseIncoming, Remote: "sip:101@pbx"})
	frame := d.wait(t)
	if frame.Screen != ScreenIncoming {
		t.Fatalf("screen = %s", frame.Screen)
	}

	eng.PushRegistration(engine.RegistrationEvent{AccountRef: "user@pbx", Phase: engine.RegOk})
	d.wait(t)
	d.mu.Lock()
	last := d.effects[len(d.effects)-1]
	d.mu.Unlock()
	found := false
	for _, e := range last {
		if e.Kind == EffectToast {
			found = true
		}
	}
	if !found {
		t.Fatal("registration event should surface as a toast effect")
	}
}

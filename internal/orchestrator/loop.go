package orchestrator

import (
	"context"
	"errors"

	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/session"
)

// ---------------------------------------------------------------------------
// Signal loop
// ---------------------------------------------------------------------------
//
// One goroutine owns the registry and the screen state. Producers on any
// goroutine post signals; the loop applies them one at a time in arrival
// order, so Transition never races with itself and the one-current-session
// invariant holds without locks. A panic while applying a signal is
// contained: it surfaces as a diagnostic and the next signal proceeds on
// uncorrupted state.

// Dispatcher executes the effects of one transition.
type Dispatcher interface {
	Apply(prev, next ScreenState, effects []Effect)
}

// GenerationCheck reports whether a registration signal's generation is
// still the live attempt for its account. Stale generations are dropped
// before they reach the machine.
type GenerationCheck func(accountRef string, gen uint64) bool

// Config wires a Loop.
type Config struct {
	Registry   *session.Registry
	Dispatcher Dispatcher
	Ready      <-chan struct{} // engine readiness; gates the first signal
	Accepts    GenerationCheck
	Diag       func(format string, args ...any)
	QueueSize  int
}

// Loop is the orchestrator's single consumer.
type Loop struct {
	signals    chan Signal
	reg        *session.Registry
	machine    Machine
	dispatcher Dispatcher
	ready      <-chan struct{}
	accepts    GenerationCheck
	diag       func(format string, args ...any)
	screen     ScreenState
}

func NewLoop(cfg Config) *Loop {
	if cfg.Registry == nil {
		cfg.Registry = session.NewRegistry()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Diag == nil {
		cfg.Diag = func(string, ...any) {}
	}
	return &Loop{
		signals:    make(chan Signal, cfg.QueueSize),
		reg:        cfg.Registry,
		dispatcher: cfg.Dispatcher,
		ready:      cfg.Ready,
		accepts:    cfg.Accepts,
		diag:       cfg.Diag,
	}
}

// Post marshals a signal into the queue. Safe from any goroutine, including
// the loop's own: the dispatcher posts permission results and PiP lifecycle
// signals while the consumer is mid-apply, so a blocking send on a full
// queue would deadlock the loop on itself. Overflow drops the signal with a
// diagnostic instead.
func (l *Loop) Post(sig Signal) {
	select {
	case l.signals <- sig:
	default:
		l.diag("queue full, dropping %T", sig)
	}
}

// Run consumes signals until ctx is done. No signal is applied before the
// readiness channel closes; nothing ever polls for it.
func (l *Loop) Run(ctx context.Context) error {
	if l.ready != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.ready:
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-l.signals:
			l.apply(sig)
		}
	}
}

// Pump forwards engine events into the queue until ctx is done. Gen tags
// registration events with the account's live attempt generation.
func (l *Loop) Pump(ctx context.Context, eng engine.Engine, gen func(accountRef string) uint64) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-eng.CallEvents():
				if !ok {
					return
				}
				l.Post(EngineCall{Event: ev})
			}
		}
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-eng.RegistrationEvents():
				if !ok {
					return
				}
				sig := RegistrationChanged{AccountRef: ev.AccountRef, Phase: ev.Phase, Message: ev.Message}
				if gen != nil {
					sig.Gen = gen(ev.AccountRef)
				}
				l.Post(sig)
			}
		}
	}()
}

// apply runs one signal through the machine. Errors and panics stay here.
func (l *Loop) apply(sig Signal) {
	defer func() {
		if r := recover(); r != nil {
			l.diag("signal %T panicked: %v", sig, r)
		}
	}()

	if ec, ok := sig.(EngineCall); ok {
		if err := l.reg.Upsert(ec.Event); err != nil {
			if errors.Is(err, session.ErrUnknownSession) {
				l.diag("dropping event: %v", err)
				return
			}
			l.diag("registry: %v", err)
			return
		}
		sig = SessionChanged{}
	}

	if rc, ok := sig.(RegistrationChanged); ok && l.accepts != nil && !l.accepts(rc.AccountRef, rc.Gen) {
		l.diag("dropping stale registration signal gen %d for %s", rc.Gen, rc.AccountRef)
		return
	}

	prev := l.screen
	next, fx := l.machine.Transition(prev, sig, l.reg)
	l.screen = next
	if l.dispatcher != nil {
		l.dispatcher.Apply(prev, next, fx)
	}
}

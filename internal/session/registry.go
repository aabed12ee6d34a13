package session

import (
	"errors"
	"fmt"

	"github.com/okurt/santral/internal/engine"
)

// ErrUnknownSession marks an event that references a session the registry
// has never seen and that does not create one. Engines are assumed to
// deliver redundant or late events; callers log and move on.
var ErrUnknownSession = errors.New("unknown session")

// Registry tracks every known session and which one is current. All
// mutation happens on the orchestrator loop goroutine, so the registry
// itself carries no lock (see the loop's ownership contract).
type Registry struct {
	sessions  map[string]*Session
	order     []string // insertion order, for stable snapshots
	currentID string
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*Session{}}
}

// Upsert applies an engine event: it creates a session on a new-call event
// and advances an existing one otherwise. Phase regressions from late or
// duplicate events are dropped. The returned error is diagnostic only;
// the registry is never left inconsistent.
func (r *Registry) Upsert(ev engine.CallEvent) error {
	s, ok := r.sessions[ev.SessionID]
	if !ok {
		if phaseRank(ev.Phase) != 0 {
			return fmt.Errorf("%w: %s event for %q", ErrUnknownSession, ev.Phase, ev.SessionID)
		}
		s = &Session{
			ID:        ev.SessionID,
			Kind:      ev.Kind,
			Phase:     ev.Phase,
			Incoming:  ev.Phase == engine.PhaseIncoming,
			Remote:    ev.Remote,
			Video:     ev.Video,
			StartedAt: ev.Time,
		}
		r.sessions[ev.SessionID] = s
		r.order = append(r.order, ev.SessionID)
		return nil
	}

	if phaseRank(ev.Phase) < phaseRank(s.Phase) {
		return nil // late event, already past this phase
	}
	if s.Terminal() {
		return nil // terminal phases never change
	}

	if ev.Phase == engine.PhaseConnected && s.Phase != engine.PhaseConnected {
		s.ConnectedAt = ev.Time
	}
	if ev.Phase.Terminal() {
		s.EndedAt = ev.Time
		s.Cause = ev.Message
	}
	s.Phase = ev.Phase
	s.Kind = ev.Kind // a single call can be merged into a conference in place
	s.Video = ev.Video
	if ev.Remote != "" {
		s.Remote = ev.Remote
	}
	return nil
}

// Current returns the current session, applying the automatic selection
// rule when no session holds the mark: a lone non-terminal session is
// promoted; with several, the most recently connected is proposed. An
// explicit list request overrides this at the screen level, not here.
func (r *Registry) Current() (*Session, bool) {
	if s, ok := r.sessions[r.currentID]; ok && s.current {
		return s, true
	}

	var candidate *Session
	for _, id := range r.order {
		s := r.sessions[id]
		if s.Terminal() {
			continue
		}
		if candidate == nil || s.ConnectedAt.After(candidate.ConnectedAt) {
			candidate = s
		}
	}
	if candidate == nil {
		return nil, false
	}
	r.promote(candidate.ID)
	return candidate, true
}

// SetCurrent promotes id, demoting any previous holder in the same step.
func (r *Registry) SetCurrent(id string) error {
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	r.promote(id)
	return nil
}

func (r *Registry) promote(id string) {
	if prev, ok := r.sessions[r.currentID]; ok {
		prev.current = false
	}
	r.sessions[id].current = true
	r.currentID = id
}

// Remove purges a terminal session. Idempotent; removing the current
// session clears the mark so the selection rule can run afresh.
func (r *Registry) Remove(id string) {
	s, ok := r.sessions[id]
	if !ok {
		return
	}
	if !s.Terminal() {
		return
	}
	delete(r.sessions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.currentID == id {
		r.currentID = ""
	}
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of tracked sessions, terminal included.
func (r *Registry) Len() int { return len(r.sessions) }

// LiveCount returns the number of non-terminal sessions.
func (r *Registry) LiveCount() int {
	n := 0
	for _, s := range r.sessions {
		if !s.Terminal() {
			n++
		}
	}
	return n
}

// Others returns the non-terminal sessions other than id, in insertion
// order. Used when the current session ends and another must take over.
func (r *Registry) Others(id string) []*Session {
	var out []*Session
	for _, oid := range r.order {
		if oid == id {
			continue
		}
		if s := r.sessions[oid]; !s.Terminal() {
			out = append(out, s)
		}
	}
	return out
}

// Snapshot returns presenter-safe copies in insertion order.
func (r *Registry) Snapshot() []View {
	out := make([]View, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sessions[id].view())
	}
	return out
}

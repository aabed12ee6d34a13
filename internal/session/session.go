package session

import (
	"time"

	"github.com/okurt/santral/internal/engine"
)

// Session is one call or conference tracked by the registry. Phase only
// moves forward; Ended and Failed are terminal. The current mark is managed
// exclusively by the registry so at most one session carries it.
type Session struct {
	ID          string
	Kind        engine.CallKind
	Phase       engine.CallPhase
	Incoming    bool // direction fixed at creation
	Remote      string
	Video       bool
	Muted       bool
	Cause       string
	StartedAt   time.Time
	ConnectedAt time.Time
	EndedAt     time.Time

	current bool
}

// Current reports whether this session holds the registry's current mark.
func (s *Session) Current() bool { return s.current }

// Terminal reports whether the session has ended or failed.
func (s *Session) Terminal() bool { return s.Phase.Terminal() }

// phaseRank orders phases so Upsert can reject regressions from late or
// duplicate engine events. Incoming and Outgoing share a rank: they are
// alternative starting points, never a progression.
func phaseRank(p engine.CallPhase) int {
	switch p {
	case engine.PhaseIncoming, engine.PhaseOutgoing:
		return 0
	case engine.PhaseConnected:
		return 1
	default:
		return 2
	}
}

// View is an immutable copy handed to the presenter. The presenter never
// touches registry-owned state directly.
type View struct {
	ID          string
	Kind        engine.CallKind
	Phase       engine.CallPhase
	Incoming    bool
	Remote      string
	Video       bool
	Muted       bool
	Cause       string
	Current     bool
	StartedAt   time.Time
	ConnectedAt time.Time
}

func (s *Session) view() View {
	return View{
		ID:          s.ID,
		Kind:        s.Kind,
		Phase:       s.Phase,
		Incoming:    s.Incoming,
		Remote:      s.Remote,
		Video:       s.Video,
		Muted:       s.Muted,
		Cause:       s.Cause,
		Current:     s.current,
		StartedAt:   s.StartedAt,
		ConnectedAt: s.ConnectedAt,
	}
}

package account

import "sync"

// Tracker hands out registration attempt generations. Beginning a new
// attempt for an account supersedes the previous one: callbacks tagged with
// an older generation are no longer of interest and get dropped by the
// orchestrator loop. Producers call this from arbitrary goroutines.
type Tracker struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func NewTracker() *Tracker {
	return &Tracker{gens: map[string]uint64{}}
}

// Begin starts a new attempt for the account and returns its generation.
func (t *Tracker) Begin(accountRef string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gens[accountRef]++
	return t.gens[accountRef]
}

// Current returns the live generation for the account (zero if none).
func (t *Tracker) Current(accountRef string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gens[accountRef]
}

// Accepts reports whether gen is still the live attempt for the account.
func (t *Tracker) Accepts(accountRef string, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gens[accountRef]
}

package account

import "testing"

func TestTrackerGenerations(t *testing.T) {
	tr := NewTracker()

	if tr.Current("a@pbx") != 0 {
		t.Fatal("fresh account should have generation 0")
	}

	g1 := tr.Begin("a@pbx")
	g2 := tr.Begin("a@pbx")
	if g1 != 1 || g2 != 2 {
		t.Fatalf("generations = %d, %d", g1, g2)
	}

	// The new attempt supersedes the first.
	if tr.Accepts("a@pbx", g1) {
		t.Fatal("superseded generation should be rejected")
	}
	if !tr.Accepts("a@pbx", g2) {
		t.Fatal("live generation should be accepted")
	}
	if tr.Current("a@pbx") != g2 {
		t.Fatalf("Current = %d, want %d", tr.Current("a@pbx"), g2)
	}
}

func TestTrackerAccountsAreIndependent(t *testing.T) {
	tr := NewTracker()
	ga := tr.Begin("a@pbx")
	gb := tr.Begin("b@pbx")

	if ga != 1 || gb != 1 {
		t.Fatalf("generations = %d, %d", ga, gb)
	}
	tr.Begin("a@pbx")
	if !tr.Accepts("b@pbx", gb) {
		t.Fatal("another account's attempt must not supersede this one")
	}
}

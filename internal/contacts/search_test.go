package contacts

import (
	"testing"

	"github.com/okurt/santral/internal/database/repository"
)

func directory() []repository.Contact {
	return []repository.Contact{
		{DisplayName: "Ayse Demir", Extension: "1001"},
		{DisplayName: "Mehmet Kaya", Extension: "1002"},
		{DisplayName: "Ayhan Kara", Extension: "2001"},
		{DisplayName: "Reception", Extension: "100"},
	}
}

func TestSearchExactExtensionWinsOverPrefix(t *testing.T) {
	got := Search(directory(), "100", 10)
	if len(got) < 3 {
		t.Fatalf("got %d matches, want the 100* extensions", len(got))
	}
	if got[0].Contact.Extension != "100" || got[0].Score != 1 {
		t.Fatalf("top match = %+v, want the exact extension", got[0])
	}
	for _, m := range got[1:] {
		if m.Score >= 1 {
			t.Errorf("prefix match %q scored %v", m.Contact.Extension, m.Score)
		}
	}
}

func TestSearchRanksNameMatches(t *testing.T) {
	got := Search(directory(), "ay", 10)
	if len(got) < 2 {
		t.Fatalf("got %d matches, want both Ay* names", len(got))
	}
	for _, m := range got[:2] {
		if m.Score != 0.9 {
			t.Errorf("prefix match %q scored %v, want 0.9", m.Contact.DisplayName, m.Score)
		}
	}

	got = Search(directory(), "kaya", 10)
	if len(got) == 0 || got[0].Contact.DisplayName != "Mehmet Kaya" {
		t.Fatalf("substring match = %+v", got)
	}
	if got[0].Score != 0.7 {
		t.Errorf("substring score = %v, want 0.7", got[0].Score)
	}
}

func TestSearchToleratesTypos(t *testing.T) {
	got := Search(directory(), "ayse demor", 10)
	if len(got) == 0 || got[0].Contact.DisplayName != "Ayse Demir" {
		t.Fatalf("typo search = %+v, want Ayse Demir on top", got)
	}
}

func TestSearchDropsNoise(t *testing.T) {
	if got := Search(directory(), "zzzzzzzzzz", 10); len(got) != 0 {
		t.Fatalf("noise query matched %+v", got)
	}
	if got := Search(directory(), "   ", 10); got != nil {
		t.Fatalf("blank query matched %+v", got)
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	if got := Search(directory(), "100", 1); len(got) != 1 {
		t.Fatalf("limit 1 returned %d matches", len(got))
	}
}

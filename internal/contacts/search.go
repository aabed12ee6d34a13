package contacts

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/okurt/santral/internal/database/repository"
)

// Fuzzy lookup over the local directory for the dial screen. Exact
// extension and prefix hits rank first, then levenshtein-close names.

// Match is one ranked search hit.
type Match struct {
	Contact repository.Contact
	Score   float64 // 1 is exact, 0 is no similarity
}

// Search ranks contacts against query. Results below minScore are dropped.
func Search(contacts []repository.Contact, query string, limit int) []Match {
	const minScore = 0.3

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	var out []Match
	for _, c := range contacts {
		s := score(c, q)
		if s < minScore {
			continue
		}
		out = append(out, Match{Contact: c, Score: s})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func score(c repository.Contact, q string) float64 {
	name := strings.ToLower(c.DisplayName)
	if c.Extension == q || name == q {
		return 1
	}
	if strings.HasPrefix(c.Extension, q) || strings.HasPrefix(name, q) {
		return 0.9
	}
	if strings.Contains(name, q) {
		return 0.7
	}
	dist := levenshtein.ComputeDistance(name, q)
	maxlen := len(name)
	if len(q) > maxlen {
		maxlen = len(q)
	}
	if maxlen == 0 {
		return 0
	}
	return 1 - float64(dist)/float64(maxlen)
}

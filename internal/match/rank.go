package match

import (
	"cmp"
	"slices"
)

// RankedMatch is a name that matched the query, with its score.
type RankedMatch struct {
	Name  string
	Score Score
}

// RankAll scores every name, drops the ones that do not match and returns the
// rest best first. Repeated names are ranked once.
func RankAll(m *Matcher, names []string) []RankedMatch {
	seen := make(map[string]struct{}, len(names))
	out := make([]RankedMatch, 0, len(names)/4)
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if s, ok := m.Match(name); ok {
			out = append(out, RankedMatch{Name: name, Score: s})
		}
	}
	SortMatches(out)
	return out
}

// SortMatches sorts by score (descending), then by name (ascending).
func SortMatches(ms []RankedMatch) {
	slices.SortFunc(ms, func(a, b RankedMatch) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

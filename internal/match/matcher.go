// Package match scores package names against a query and ranks them.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Score is the quality of a match in (0, 1]; higher is better. A full-length
// exact match scores 1.
type Score float64

// Less orders scores ascending.
func (s Score) Less(o Score) bool { return s < o }

// Matcher matches names against one query.
// A Matcher is not safe for concurrent use.
type Matcher struct {
	words  []string
	fuzzy  bool
	folder transform.Transformer
}

// Option configures a Matcher.
type Option func(*Matcher)

// Fuzzy allows each query word to match a name word with up to len/4 edits.
func Fuzzy(on bool) Option {
	return func(m *Matcher) { m.fuzzy = on }
}

// New prepares a matcher for query.
func New(query string, opts ...Option) *Matcher {
	m := &Matcher{folder: newFolder()}
	for _, o := range opts {
		o(m)
	}
	m.words = words(m.normalize(query))
	return m
}

// Match reports whether every query word is a prefix of some word in name,
// and how well. An empty query matches everything with score 0.
func (m *Matcher) Match(name string) (Score, bool) {
	if len(m.words) == 0 {
		return 0, true
	}
	n := m.normalize(name)
	total := len([]rune(n))
	if total == 0 {
		return 0, false
	}
	nameWords := words(n)

	matched := 0
	for _, qw := range m.words {
		best := -1
		for _, nw := range nameWords {
			if got, ok := m.matchWord(qw, nw); ok && got > best {
				best = got
			}
		}
		if best < 0 {
			return 0, false
		}
		matched += best
	}
	if matched > total {
		matched = total
	}
	return Score(float64(matched) / float64(total)), true
}

// matchWord returns how many query runes count towards the score when q
// matches a prefix of w.
func (m *Matcher) matchWord(q, w string) (int, bool) {
	if strings.HasPrefix(w, q) {
		return len([]rune(q)), true
	}
	if !m.fuzzy {
		return 0, false
	}
	qr := []rune(q)
	allowed := len(qr) / 4
	if allowed == 0 {
		return 0, false
	}
	d := prefixDistance(qr, []rune(w))
	if d > allowed {
		return 0, false
	}
	return len(qr) - d, true
}

// prefixDistance is the smallest edit distance between q and any prefix of w.
func prefixDistance(q, w []rune) int {
	prev := make([]int, len(q)+1)
	cur := make([]int, len(q)+1)
	for i := range prev {
		prev[i] = i
	}
	best := prev[len(q)]
	for j := 1; j <= len(w); j++ {
		cur[0] = j
		for i := 1; i <= len(q); i++ {
			cost := 1
			if q[i-1] == w[j-1] {
				cost = 0
			}
			cur[i] = min(prev[i]+1, cur[i-1]+1, prev[i-1]+cost)
		}
		best = min(best, cur[len(q)])
		prev, cur = cur, prev
	}
	return best
}

func newFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
}

// normalize strips diacritics and folds case.
func (m *Matcher) normalize(s string) string {
	out, _, err := transform.String(m.folder, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// words splits on every rune that is neither a letter nor a digit.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

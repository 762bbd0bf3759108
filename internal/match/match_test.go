package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatch_Prefix(t *testing.T) {
	cases := []struct {
		query string
		name  string
		ok    bool
		score Score
	}{
		{"wg", "wget", true, 0.5},
		{"wget", "wget", true, 1},
		{"WGET", "wget", true, 1},
		{"cu", "wget", false, 0},
		{"lfs", "git-lfs", true, 3.0 / 7},
		{"node 18", "node@18", true, 6.0 / 7},
		{"node@1", "node@18", true, 5.0 / 7},
		{"get", "wget", false, 0},
		{"cafe", "Café", true, 1},
		{"", "anything", true, 0},
	}
	for _, c := range cases {
		s, ok := New(c.query).Match(c.name)
		if ok != c.ok || s != c.score {
			t.Errorf("Match(%q, %q) = (%v, %v), want (%v, %v)", c.query, c.name, s, ok, c.score, c.ok)
		}
	}
}

func TestMatch_Fuzzy(t *testing.T) {
	strict := New("firefxo")
	if _, ok := strict.Match("firefox"); ok {
		t.Fatalf("strict matcher accepted a typo")
	}
	fuzzy := New("firefxo", Fuzzy(true))
	s, ok := fuzzy.Match("firefox")
	if !ok {
		t.Fatalf("fuzzy matcher rejected a one-edit typo")
	}
	exact, _ := fuzzy.Match("firefxo-nightly")
	if !(s < 1) || !(exact > 0) {
		t.Fatalf("unexpected fuzzy scores: typo=%v exact=%v", s, exact)
	}
	if _, ok := New("abc", Fuzzy(true)).Match("xyz"); ok {
		t.Fatalf("short words must not fuzzy match")
	}
}

func TestPrefixDistance(t *testing.T) {
	cases := []struct {
		q, w string
		want int
	}{
		{"abc", "abcdef", 0},
		{"abd", "abcdef", 1},
		{"acb", "abcdef", 1},
		{"xyz", "ab", 3},
	}
	for _, c := range cases {
		if got := prefixDistance([]rune(c.q), []rune(c.w)); got != c.want {
			t.Errorf("prefixDistance(%q, %q) = %d, want %d", c.q, c.w, got, c.want)
		}
	}
}

func TestRankAll_OrderAndTies(t *testing.T) {
	names := []string{"git-lfs", "gitui", "git", "gh", "wget", "git", "gitleaks", "gitg"}
	got := RankAll(New("git"), names)

	want := []RankedMatch{
		{"git", 1},
		{"gitg", 0.75},
		{"gitui", 0.6},
		{"git-lfs", 3.0 / 7},
		{"gitleaks", 3.0 / 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RankAll mismatch (-want +got):\n%s", diff)
	}
}

func TestRankAll_TieBreakIsLexicographic(t *testing.T) {
	got := RankAll(New("a"), []string{"ad", "ac", "ab"})
	var order []string
	for _, m := range got {
		order = append(order, m.Name)
	}
	if diff := cmp.Diff([]string{"ab", "ac", "ad"}, order); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestRankAll_Example(t *testing.T) {
	got := RankAll(New("wg"), []string{"wget", "curl", "git"})
	if len(got) != 1 || got[0].Name != "wget" {
		t.Fatalf("unexpected ranking: %+v", got)
	}
}

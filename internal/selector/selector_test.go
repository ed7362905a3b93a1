package selector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankDeterministic(t *testing.T) {
	t.Parallel()

	s := New()
	task := "Refactor the session store to cache tokens"
	symbols := []string{"SessionStore", "TokenCache", "formatOutput", "Session"}

	first := s.Rank(task, symbols)
	second := s.Rank(task, symbols)
	require.Equal(t, first, second)
}

func TestRankIsPermutation(t *testing.T) {
	t.Parallel()

	s := New()
	symbols := []string{"Alpha", "Beta", "Gamma", "Delta"}
	ranked := s.Rank("Rewrite alpha and gamma", symbols)

	require.Len(t, ranked, len(symbols))
	require.ElementsMatch(t, symbols, ranked)
}

func TestRankBlankTaskKeepsInputOrder(t *testing.T) {
	t.Parallel()

	s := New()
	symbols := []string{"Zeta", "Alpha", "Mu"}

	require.Equal(t, symbols, s.Rank("", symbols))
	require.Equal(t, symbols, s.Rank("   \t", symbols))

	for _, sc := range s.RankDetailed("", symbols) {
		require.Zero(t, sc.Score)
	}
}

func TestRankEmptySymbols(t *testing.T) {
	t.Parallel()

	s := New()
	require.Empty(t, s.Rank("anything", nil))
	require.Empty(t, s.RankDetailed("anything", []string{}))
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	s := New()
	// None of these match, so every score is zero and the sort must be
	// stable.
	symbols := []string{"Charlie", "Bravo", "Alpha"}
	require.Equal(t, symbols, s.Rank("Update the billing report", symbols))
}

func TestRankScoresTokenOverlap(t *testing.T) {
	t.Parallel()

	s := New()
	task := "Fix the session timeout in the session store"
	scored := s.RankDetailed(task, []string{"formatOutput", "SessionStore"})

	require.Equal(t, "SessionStore", scored[0].Name)
	// "session" appears twice in the task and "store" once.
	require.Equal(t, 3, scored[0].Score)
	require.Equal(t, "formatOutput", scored[1].Name)
	require.Zero(t, scored[1].Score)
}

func TestRankVerbatimSubstringBonus(t *testing.T) {
	t.Parallel()

	s := New()
	task := "Rework processPayment to retry on failure"
	scored := s.RankDetailed(task, []string{"ProcessPayment", "PaymentGateway"})

	// Token overlap alone would tie payment-related symbols; the verbatim
	// mention of ProcessPayment must break that tie.
	require.Equal(t, "ProcessPayment", scored[0].Name)
	require.Greater(t, scored[0].Score, scored[1].Score)

	// With the bonus disabled the verbatim mention carries no extra weight.
	flat := New(WithSubstringBonus(0))
	flatScored := flat.RankDetailed(task, []string{"ProcessPayment", "PaymentGateway"})
	require.Equal(t, flatScored[0].Score, flatScored[1].Score)
}

func TestSplitSymbol(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{"SessionStore", []string{"session", "store"}},
		{"parse_config_file", []string{"parse", "config", "file"}},
		{"kebab-case-name", []string{"kebab", "case", "name"}},
		{"HTTPServer", []string{"http", "server"}},
		{"parseHTTPResponse", []string{"parse", "http", "response"}},
		{"x", []string{"x"}},
		{"", nil},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, splitSymbol(tc.in), "symbol %q", tc.in)
	}
}

func TestPrimaryTargets(t *testing.T) {
	t.Parallel()

	s := New()
	task := "Find and fix the race condition in session processing"
	symbols := []string{"Session", "RaceDetector", "authenticate", "formatOutput"}

	ranked := s.Rank(task, symbols)
	targets := s.PrimaryTargets(task, ranked)

	require.LessOrEqual(t, len(targets), DefaultTopK)
	require.Equal(t, []string{"Session", "RaceDetector"}, targets)
	// Symbols the task never mentions are context, not targets.
	require.NotContains(t, targets, "authenticate")
	require.NotContains(t, targets, "formatOutput")
}

func TestPrimaryTargetsTopKBound(t *testing.T) {
	t.Parallel()

	s := New(WithTopK(2))
	task := "Refactor alpha beta gamma delta"
	ranked := s.Rank(task, []string{"Alpha", "Beta", "Gamma", "Delta"})

	targets := s.PrimaryTargets(task, ranked)
	require.Len(t, targets, 2)
}

func TestPrimaryTargetsBlankInputs(t *testing.T) {
	t.Parallel()

	s := New()
	require.Nil(t, s.PrimaryTargets("", []string{"Session"}))
	require.Nil(t, s.PrimaryTargets("fix session", nil))
}

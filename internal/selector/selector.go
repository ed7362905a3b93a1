// Package selector ranks candidate symbols against a task description and
// picks out the ones that are direct edit targets rather than incidental
// context. Every function is pure: no state is shared between calls, so a
// single Selector is safe to use from any number of concurrent requests.
package selector

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// DefaultTopK bounds how many symbols can be primary edit targets.
	DefaultTopK = 3
	// DefaultSubstringBonus is added when a symbol name appears verbatim in
	// the task description. A whole-name match should outrank any single
	// token collision.
	DefaultSubstringBonus = 3
)

// ScoredSymbol is one ranked symbol with its relevance score.
type ScoredSymbol struct {
	Name  string
	Score int
}

// Selector holds the triage tuning knobs.
type Selector struct {
	topK           int
	substringBonus int
}

// Option configures a Selector.
type Option func(*Selector)

// WithTopK sets the primary-target bound.
func WithTopK(k int) Option {
	return func(s *Selector) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithSubstringBonus sets the verbatim-match bonus.
func WithSubstringBonus(n int) Option {
	return func(s *Selector) {
		if n >= 0 {
			s.substringBonus = n
		}
	}
}

// New creates a selector with the given options applied over defaults.
func New(opts ...Option) *Selector {
	s := &Selector{
		topK:           DefaultTopK,
		substringBonus: DefaultSubstringBonus,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank returns a permutation of symbols ordered by descending relevance to
// the task description. Ties keep their original relative order, so the
// result is deterministic for identical inputs. A blank task description
// carries no information to rank on and returns the input order unchanged.
func (s *Selector) Rank(task string, symbols []string) []string {
	scored := s.RankDetailed(task, symbols)
	out := make([]string, len(scored))
	for i, sc := range scored {
		out[i] = sc.Name
	}
	return out
}

// RankDetailed is Rank with the scores attached, for display and telemetry.
func (s *Selector) RankDetailed(task string, symbols []string) []ScoredSymbol {
	out := make([]ScoredSymbol, len(symbols))
	for i, name := range symbols {
		out[i] = ScoredSymbol{Name: name}
	}
	if strings.TrimSpace(task) == "" {
		return out
	}

	taskTokens := tokenize(task)
	taskLower := strings.ToLower(task)
	for i := range out {
		out[i].Score = s.score(taskTokens, taskLower, out[i].Name)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// PrimaryTargets returns the prefix of ranked symbols judged to be direct
// edit targets: at most topK of them, and never one with a zero score. A
// symbol the task does not mention at all is context, not a target.
func (s *Selector) PrimaryTargets(task string, ranked []string) []string {
	if strings.TrimSpace(task) == "" || len(ranked) == 0 {
		return nil
	}

	taskTokens := tokenize(task)
	taskLower := strings.ToLower(task)

	var targets []string
	for _, name := range ranked {
		if len(targets) >= s.topK {
			break
		}
		if s.score(taskTokens, taskLower, name) > 0 {
			targets = append(targets, name)
		}
	}
	return targets
}

// score counts case-insensitive matches between the task's tokens and the
// symbol's own name tokens, plus the bonus for a verbatim appearance of the
// whole symbol name in the task.
func (s *Selector) score(taskTokens map[string]int, taskLower, symbol string) int {
	score := 0
	for _, tok := range splitSymbol(symbol) {
		score += taskTokens[tok]
	}
	if strings.Contains(taskLower, strings.ToLower(symbol)) {
		score += s.substringBonus
	}
	return score
}

// tokenize lowercases the text and counts its word tokens.
func tokenize(text string) map[string]int {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	return counts
}

// splitSymbol breaks a symbol name into lowercase word tokens, splitting on
// underscores, dashes and CamelCase boundaries. Acronym runs stay together:
// HTTPServer becomes [http server].
func splitSymbol(name string) []string {
	var tokens []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = nil
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				flush()
			} else if i > 0 && unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush()
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return tokens
}

package assembly

import (
	"fmt"
	"strings"
	"time"
)

// Escalation is one recorded tier transition.
type Escalation struct {
	From   Tier      `json:"from"`
	To     Tier      `json:"to"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Metadata describes what an assembly session ended up including. It is read
// for logging and telemetry only and drives no control flow.
type Metadata struct {
	Tier             string       `json:"tier"`
	TokensUsed       int          `json:"tokens_used"`
	SymbolsProcessed int          `json:"symbols_processed"`
	Escalations      []Escalation `json:"escalations"`
}

// Builder assembles context fragments in escalating tiers under a hard token
// budget. One builder serves exactly one code-generation request: create it,
// feed it fragments, render, read metadata, discard. It is not safe for
// concurrent use.
//
// The budget is not enforced at insertion time. AddContext always succeeds
// (tier precondition aside) so the caller can observe the true accumulated
// cost before deciding whether escalation is still affordable; trimming
// happens only in BuildFinalContext.
type Builder struct {
	maxTokens int
	estimator TokenEstimator
	policy    EscalationPolicy

	tier      Tier
	fragments []Fragment
	total     int

	primary      map[string]bool
	primaryOrder []string

	log            []Escalation
	renderedTokens int
	rendered       bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithEstimator replaces the default token estimator.
func WithEstimator(est TokenEstimator) Option {
	return func(b *Builder) {
		if est != nil {
			b.estimator = est
		}
	}
}

// WithPolicy replaces the default escalation policy.
func WithPolicy(p EscalationPolicy) Option {
	return func(b *Builder) {
		if p != nil {
			b.policy = p
		}
	}
}

// New creates a builder for a single request with the given token budget.
func New(maxTokens int, opts ...Option) *Builder {
	b := &Builder{
		maxTokens: maxTokens,
		estimator: EstimateTokens,
		policy:    NewSignalPolicy(nil),
		tier:      TierStub,
		primary:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetPrimaryTargets records which symbols are direct edit targets. Their
// stub-tier fragments are the floor BuildFinalContext never trims away.
func (b *Builder) SetPrimaryTargets(symbols []string) {
	b.primary = make(map[string]bool, len(symbols))
	b.primaryOrder = append([]string(nil), symbols...)
	for _, s := range symbols {
		b.primary[s] = true
	}
}

// CurrentTier returns the tier the builder has escalated to so far.
func (b *Builder) CurrentTier() Tier { return b.tier }

// MaxTokens returns the budget the builder was created with.
func (b *Builder) MaxTokens() int { return b.maxTokens }

// CurrentTokens returns the exact sum of token costs across all fragments
// added so far, before any trimming.
func (b *Builder) CurrentTokens() int { return b.total }

// Fragments returns a copy of the fragments in insertion order.
func (b *Builder) Fragments() []Fragment {
	return append([]Fragment(nil), b.fragments...)
}

// AddContext appends one fragment at the given tier. The fragment's token
// cost is computed here, once, from its content. Fragments can only be added
// at or above the builder's current tier; anything lower returns an
// *OutOfOrderTierError, which means the caller's own orchestration is
// violating the staged-disclosure protocol.
func (b *Builder) AddContext(content string, tier Tier, symbol, kind string) error {
	if tier < b.tier {
		return &OutOfOrderTierError{Fragment: tier, Current: b.tier}
	}
	cost := b.estimator(content)
	b.fragments = append(b.fragments, Fragment{
		Content:   content,
		Tier:      tier,
		Symbol:    symbol,
		Kind:      kind,
		TokenCost: cost,
	})
	b.total += cost
	return nil
}

// Escalate moves the builder to a strictly higher tier and records why.
// Escalation is monotonic: a target at or below the current tier is a no-op
// that returns false, not an error, so callers can retry the decision safely.
// The budget is deliberately not checked here; it is advisory information the
// caller reads via CurrentTokens before deciding to escalate.
func (b *Builder) Escalate(target Tier, reason string) bool {
	if target <= b.tier {
		return false
	}
	b.log = append(b.log, Escalation{
		From:   b.tier,
		To:     target,
		Reason: reason,
		At:     time.Now(),
	})
	b.tier = target
	return true
}

// ShouldEscalate asks the escalation policy whether the task warrants a
// richer tier. contextSoFar may be the provisional render at the current
// tier, or empty. Does not mutate state and is safe to call before any
// fragment exists.
func (b *Builder) ShouldEscalate(task, contextSoFar string) bool {
	return b.policy.Evaluate(EscalationRequest{
		Task:              task,
		ContextSoFar:      contextSoFar,
		StubOnlyPrimaries: b.stubOnlyPrimaries(),
	})
}

// stubOnlyPrimaries lists primary targets that have a stub fragment but no
// full body yet, in primary order.
func (b *Builder) stubOnlyPrimaries() []string {
	hasStub := make(map[string]bool)
	hasBody := make(map[string]bool)
	for _, f := range b.fragments {
		switch f.Tier {
		case TierStub:
			hasStub[f.Symbol] = true
		case TierLocalBody:
			hasBody[f.Symbol] = true
		}
	}

	var out []string
	for _, s := range b.primaryOrder {
		if hasStub[s] && !hasBody[s] {
			out = append(out, s)
		}
	}
	return out
}

// BuildFinalContext renders the assembled context: an optional traceability
// header, then tier-labeled sections with fragments in insertion order within
// each tier. The budget is enforced here. When the accumulated cost exceeds
// maxTokens, fragments are dropped from the highest tier first and, within a
// tier, the most recently added first. Stub fragments of primary targets are
// exempt and always survive, so a render is always producible.
//
// The fragment list is never mutated; trimming is recomputed fresh on every
// call, so repeated calls with unchanged state yield identical output.
func (b *Builder) BuildFinalContext(prompt, milestoneID string) string {
	kept, used := b.selectWithinBudget()
	b.renderedTokens = used
	b.rendered = true

	var sb strings.Builder
	if prompt != "" {
		fmt.Fprintf(&sb, "// Task: %s\n", prompt)
	}
	if milestoneID != "" {
		fmt.Fprintf(&sb, "// Milestone: %s\n", milestoneID)
	}
	if prompt != "" || milestoneID != "" {
		sb.WriteString("\n")
	}

	for tier := TierStub; tier <= TierDependencies; tier++ {
		section := kept[tier]
		if len(section) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "### %s\n\n", tier.Label())
		for _, f := range section {
			fmt.Fprintf(&sb, "// %s (%s)\n%s\n\n", f.Symbol, f.Kind, f.Content)
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// selectWithinBudget decides which fragments survive the budget. Returns the
// survivors grouped by tier (insertion order preserved) and their summed
// token cost.
func (b *Builder) selectWithinBudget() (map[Tier][]Fragment, int) {
	keep := make([]bool, len(b.fragments))
	used := 0
	for i, f := range b.fragments {
		keep[i] = true
		used += f.TokenCost
	}

	// Trim from the most expendable end first: dependency fragments before
	// local bodies before stubs, newest first within a tier. Primary-target
	// stubs are the floor and are never dropped.
	for tier := TierDependencies; tier >= TierStub && used > b.maxTokens; tier-- {
		for i := len(b.fragments) - 1; i >= 0 && used > b.maxTokens; i-- {
			f := b.fragments[i]
			if !keep[i] || f.Tier != tier {
				continue
			}
			if f.Tier == TierStub && b.primary[f.Symbol] {
				continue
			}
			keep[i] = false
			used -= f.TokenCost
		}
	}

	byTier := make(map[Tier][]Fragment)
	for i, f := range b.fragments {
		if keep[i] {
			byTier[f.Tier] = append(byTier[f.Tier], f)
		}
	}
	return byTier, used
}

// Metadata reports the session outcome: final tier, post-render token count
// (pre-trim total if no render has happened yet), distinct symbols seen, and
// the escalation log.
func (b *Builder) Metadata() Metadata {
	symbols := make(map[string]bool)
	for _, f := range b.fragments {
		symbols[f.Symbol] = true
	}

	used := b.total
	if b.rendered {
		used = b.renderedTokens
	}

	return Metadata{
		Tier:             b.tier.String(),
		TokensUsed:       used,
		SymbolsProcessed: len(symbols),
		Escalations:      append([]Escalation(nil), b.log...),
	}
}

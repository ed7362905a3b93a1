package assembly

import "strings"

// EscalationPolicy decides whether an assembly session needs to move to a
// richer tier. It is deliberately narrow: the default is keyword-based and
// inherently fuzzy, and keeping it behind this interface means it can be
// swapped (for a learned classifier, say) without touching budget or
// rendering logic.
type EscalationPolicy interface {
	Name() string
	Evaluate(req EscalationRequest) bool
}

// EscalationRequest carries everything a policy may consult. ContextSoFar is
// the provisional render at the current tier and may be empty.
// StubOnlyPrimaries lists primary-target symbols that are present in the
// builder only as stubs, with no full body yet.
type EscalationRequest struct {
	Task              string
	ContextSoFar      string
	StubOnlyPrimaries []string
}

// DefaultSignals are the complexity signals the default policy looks for:
// refactor/rewrite verbs and cross-cutting nouns. The set is tuned
// empirically, not a stable contract, so it stays configurable.
var DefaultSignals = []string{
	"refactor",
	"rewrite",
	"redesign",
	"restructure",
	"migrate",
	"optimize",
	"race condition",
	"deadlock",
	"dependency",
	"architecture",
	"integration",
	"concurrency",
	"authentication",
	"security",
	"cross-cutting",
}

// SignalPolicy is the default keyword-based escalation policy.
type SignalPolicy struct {
	signals []string
}

// NewSignalPolicy creates a policy over the given signal set. An empty set
// falls back to DefaultSignals.
func NewSignalPolicy(signals []string) *SignalPolicy {
	if len(signals) == 0 {
		signals = DefaultSignals
	}
	lowered := make([]string, len(signals))
	for i, s := range signals {
		lowered[i] = strings.ToLower(s)
	}
	return &SignalPolicy{signals: lowered}
}

func (p *SignalPolicy) Name() string { return "signal" }

// Evaluate returns true when the task description contains a complexity
// signal, or when the provisional render still shows a primary target only
// as a stub.
func (p *SignalPolicy) Evaluate(req EscalationRequest) bool {
	task := strings.ToLower(req.Task)
	for _, signal := range p.signals {
		if strings.Contains(task, signal) {
			return true
		}
	}

	if req.ContextSoFar == "" {
		return false
	}
	for _, symbol := range req.StubOnlyPrimaries {
		if strings.Contains(req.ContextSoFar, symbol) {
			return true
		}
	}
	return false
}

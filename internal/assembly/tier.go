package assembly

// Tier is an escalation level for assembled context. Tiers are totally
// ordered: each one is strictly more detailed (and more expensive) than the
// previous, and a builder only ever moves upward through them.
type Tier int

const (
	// TierStub includes signatures and declarations only.
	TierStub Tier = iota
	// TierLocalBody adds full implementations of primary edit targets.
	TierLocalBody
	// TierDependencies adds implementations of symbols the primary targets
	// call into or are called by.
	TierDependencies
)

func (t Tier) String() string {
	switch t {
	case TierStub:
		return "stub"
	case TierLocalBody:
		return "local_body"
	case TierDependencies:
		return "dependencies"
	default:
		return "unknown"
	}
}

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	return t >= TierStub && t <= TierDependencies
}

// Label returns the section heading used when rendering this tier.
func (t Tier) Label() string {
	switch t {
	case TierStub:
		return "STUB CONTEXT"
	case TierLocalBody:
		return "IMPLEMENTATION CONTEXT"
	case TierDependencies:
		return "DEPENDENCY CONTEXT"
	default:
		return "UNKNOWN"
	}
}

package assembly

import "fmt"

// Fragment kinds as recorded on added context.
const (
	KindStub       = "stub"
	KindFullBody   = "full_body"
	KindDependency = "dependency"
)

// Fragment is one unit of assembled text. Fragments are owned by the builder
// that holds them and are immutable once added; TokenCost is computed from
// Content at insertion time and never recomputed.
type Fragment struct {
	Content   string
	Tier      Tier
	Symbol    string
	Kind      string
	TokenCost int
}

// OutOfOrderTierError reports an attempt to add a fragment at a tier below
// the builder's current tier. It signals a protocol violation in the caller's
// orchestration and should be treated as fatal for the current assembly.
type OutOfOrderTierError struct {
	Fragment Tier
	Current  Tier
}

func (e *OutOfOrderTierError) Error() string {
	return fmt.Sprintf("cannot add %s fragment: builder already escalated to %s", e.Fragment, e.Current)
}

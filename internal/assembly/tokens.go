package assembly

// TokenEstimator estimates the token cost of a piece of content. The builder
// uses one estimator everywhere it accounts for tokens, so totals stay
// consistent with any external estimate made with the same function. A real
// tokenizer can be plugged in without touching the state machine.
type TokenEstimator func(content string) int

// EstimateTokens is the default estimator: four characters per token,
// rounded up. Matches common tokenizer approximations for English and code.
func EstimateTokens(content string) int {
	if len(content) == 0 {
		return 0
	}
	return (len(content) + 3) / 4
}

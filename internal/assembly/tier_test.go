package assembly

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTierOrdering(t *testing.T) {
	t.Parallel()

	require.True(t, TierStub < TierLocalBody)
	require.True(t, TierLocalBody < TierDependencies)
}

func TestTierString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tier Tier
		want string
	}{
		{TierStub, "stub"},
		{TierLocalBody, "local_body"},
		{TierDependencies, "dependencies"},
		{Tier(99), "unknown"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.tier.String())
	}
}

func TestTierValid(t *testing.T) {
	t.Parallel()

	require.True(t, TierStub.Valid())
	require.True(t, TierDependencies.Valid())
	require.False(t, Tier(-1).Valid())
	require.False(t, Tier(3).Valid())
}

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, EstimateTokens(tc.content), "content %q", tc.content)
	}
}

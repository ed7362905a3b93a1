package config

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"weft/internal/assembly"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.Equal(t, 1800, cfg.Assembly.MaxTokens)
	require.Equal(t, 8, cfg.Assembly.StubCount)
	require.Equal(t, 3, cfg.Assembly.PrimaryTopK)
	require.True(t, cfg.LLM.Local)
	require.Equal(t, "ollama", cfg.LLM.Provider)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.True(t, cfg.Cache.SQL.Enabled)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	_, err := toml.Decode(`
[assembly]
max_tokens = 600
stub_count = 4
escalation_signals = ["frobnicate"]

[llm]
local = false
provider = "anthropic"
model = "claude-sonnet-4-5"

[cache.redis]
enabled = true
ttl_hours = 12
`, cfg)
	require.NoError(t, err)

	require.Equal(t, 600, cfg.Assembly.MaxTokens)
	require.Equal(t, 4, cfg.Assembly.StubCount)
	require.Equal(t, []string{"frobnicate"}, cfg.Assembly.EscalationSignals)
	require.False(t, cfg.LLM.Local)
	require.Equal(t, "anthropic", cfg.LLM.Provider)
	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, 12, cfg.Cache.Redis.TTLHours)

	// Untouched sections keep their defaults.
	require.True(t, cfg.Cache.SQL.Enabled)
	require.Equal(t, 1800, Default().Assembly.MaxTokens)
}

func TestSelectorFromSettings(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Assembly.PrimaryTopK = 1

	sel := cfg.Selector()
	task := "Refactor alpha and beta"
	targets := sel.PrimaryTargets(task, sel.Rank(task, []string{"Alpha", "Beta"}))
	require.Len(t, targets, 1)
}

func TestPolicyFromSettings(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Assembly.EscalationSignals = []string{"frobnicate"}

	p := cfg.Policy()
	require.True(t, p.Evaluate(assembly.EscalationRequest{Task: "frobnicate the store"}))
	require.False(t, p.Evaluate(assembly.EscalationRequest{Task: "refactor the store"}))
}

package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"weft/internal/assembly"
	"weft/internal/selector"
)

type Config struct {
	Project  ProjectConfig  `toml:"project"`
	Assembly AssemblyConfig `toml:"assembly"`
	LLM      LLMConfig      `toml:"llm"`
	Cache    CacheConfig    `toml:"cache"`
}

type ProjectConfig struct {
	Path string `toml:"path"`
}

type AssemblyConfig struct {
	// MaxTokens is the hard budget for one rendered context.
	MaxTokens int `toml:"max_tokens"`
	// StubCount is how many top-ranked symbols get stub fragments.
	StubCount int `toml:"stub_count"`
	// PrimaryTopK bounds how many symbols can be primary edit targets.
	PrimaryTopK int `toml:"primary_top_k"`
	// SubstringBonus is the relevance bonus for a verbatim symbol mention.
	SubstringBonus int `toml:"substring_bonus"`
	// EscalationSignals overrides the built-in complexity keyword set.
	EscalationSignals []string `toml:"escalation_signals"`
}

type LLMConfig struct {
	Local       bool    `toml:"local"`
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	BaseURL     string  `toml:"baseURL"`
}

type CacheConfig struct {
	Redis RedisConfig `toml:"redis"`
	SQL   SQLConfig   `toml:"sql"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	TTLHours int    `toml:"ttl_hours"`
}

type SQLConfig struct {
	Enabled bool   `toml:"enabled"`
	DSN     string `toml:"dsn"`
}

// Load reads weft.toml from the current directory, falling back to defaults
// when it is missing. The Anthropic key can come from the environment.
func Load() (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile("weft.toml", cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return cfg, nil
}

// Default returns the configuration used when no weft.toml exists.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Path: ".",
		},
		Assembly: AssemblyConfig{
			MaxTokens:      1800,
			StubCount:      8,
			PrimaryTopK:    selector.DefaultTopK,
			SubstringBonus: selector.DefaultSubstringBonus,
		},
		LLM: LLMConfig{
			Local:       true,
			Provider:    "ollama",
			Model:       "llama3.2:3b",
			MaxTokens:   8192,
			Temperature: 0.2,
			BaseURL:     "http://localhost:11434",
		},
		Cache: CacheConfig{
			Redis: RedisConfig{
				Enabled:  false,
				URL:      "redis://localhost:6379",
				TTLHours: 6,
			},
			SQL: SQLConfig{
				Enabled: true,
				DSN:     ".weft/history.db",
			},
		},
	}
}

// Selector builds a selector from the assembly settings.
func (c *Config) Selector() *selector.Selector {
	return selector.New(
		selector.WithTopK(c.Assembly.PrimaryTopK),
		selector.WithSubstringBonus(c.Assembly.SubstringBonus),
	)
}

// Policy builds the escalation policy from the assembly settings.
func (c *Config) Policy() assembly.EscalationPolicy {
	return assembly.NewSignalPolicy(c.Assembly.EscalationSignals)
}

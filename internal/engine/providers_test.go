package engine

import (
	"testing"

	"github.com/GuiArSt/kronus/internal/config"
)

func llmConfig(anthropicKey, openaiKey, googleKey string) config.LLMConfig {
	return config.LLMConfig{
		Anthropic:     config.ProviderConfig{APIKey: anthropicKey, Model: "claude-sonnet-4-5"},
		OpenAI:        config.ProviderConfig{APIKey: openaiKey, Model: "gpt-5"},
		Google:        config.ProviderConfig{APIKey: googleKey, Model: "gemini-2.5-pro"},
		FallbackOrder: []string{"anthropic", "openai", "google"},
	}
}

func TestBuildChainCredentialGated(t *testing.T) {
	chain := buildChain(llmConfig("ak", "", "gk"))
	if len(chain) != 2 {
		t.Fatalf("chain = %+v", chain)
	}
	if chain[0].name != "anthropic" || chain[1].name != "google" {
		t.Fatalf("order = %s, %s", chain[0].name, chain[1].name)
	}

	if chain := buildChain(llmConfig("", "", "")); len(chain) != 0 {
		t.Fatalf("keyless chain = %+v", chain)
	}
}

func TestBuildChainHonorsConfiguredOrder(t *testing.T) {
	cfg := llmConfig("ak", "ok", "gk")
	cfg.FallbackOrder = []string{"google", "anthropic", "google", "nonsense"}
	chain := buildChain(cfg)
	if len(chain) != 2 || chain[0].name != "google" || chain[1].name != "anthropic" {
		t.Fatalf("chain = %+v", chain)
	}
}

func TestProviderModelName(t *testing.T) {
	cases := map[provider]string{
		{name: "anthropic", model: "claude-sonnet-4-5"}: "anthropic/claude-sonnet-4-5",
		{name: "openai", model: "gpt-5"}:                "openai/gpt-5",
		{name: "google", model: "gemini-2.5-pro"}:       "googleai/gemini-2.5-pro",
	}
	for p, want := range cases {
		if got := p.modelName(); got != want {
			t.Errorf("modelName(%+v) = %q, want %q", p, got, want)
		}
	}
}

func TestReasoningConfig(t *testing.T) {
	if got := reasoningConfig("anthropic", false); got != nil {
		t.Fatalf("disabled reasoning produced config: %v", got)
	}

	rc := reasoningConfig("anthropic", true)
	thinking, ok := rc["thinking"].(map[string]any)
	if !ok {
		t.Fatalf("anthropic config = %v", rc)
	}
	if thinking["type"] != "enabled" || thinking["budget_tokens"] != 4096 {
		t.Errorf("thinking = %v", thinking)
	}

	if rc := reasoningConfig("openai", true); rc["reasoning_effort"] != "medium" {
		t.Errorf("openai config = %v", rc)
	}

	if rc := reasoningConfig("google", true); rc != nil {
		t.Errorf("google config = %v, want nil", rc)
	}
}

func TestResolveModel(t *testing.T) {
	chain := buildChain(llmConfig("ak", "", "gk"))

	p, err := resolveModel(chain, "anthropic/claude-opus-4-5")
	if err != nil || p.name != "anthropic" || p.model != "claude-opus-4-5" {
		t.Fatalf("p = %+v, err = %v", p, err)
	}

	p, err = resolveModel(chain, "googleai/gemini-2.5-flash")
	if err != nil || p.name != "google" {
		t.Fatalf("googleai alias not resolved: %+v, %v", p, err)
	}

	if _, err := resolveModel(chain, "openai/gpt-5"); err == nil {
		t.Fatal("uncredentialed provider accepted")
	}
	if _, err := resolveModel(chain, "claude-sonnet-4-5"); err == nil {
		t.Fatal("unqualified model accepted")
	}
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/anthropic"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/GuiArSt/kronus/internal/config"
)

// provider is one credentialed entry in the fallback chain.
type provider struct {
	name  string // anthropic, openai, google
	model string
}

// modelName returns the fully qualified Genkit model name.
func (p provider) modelName() string {
	switch p.name {
	case "anthropic":
		return "anthropic/" + p.model
	case "openai":
		return "openai/" + p.model
	case "google":
		return "googleai/" + p.model
	default:
		return p.model
	}
}

// buildChain returns the credential-gated provider chain in configured
// order. Providers without an API key are skipped up front, so every entry
// is callable.
func buildChain(cfg config.LLMConfig) []provider {
	byName := map[string]config.ProviderConfig{
		"anthropic": cfg.Anthropic,
		"openai":    cfg.OpenAI,
		"google":    cfg.Google,
	}
	var chain []provider
	seen := map[string]bool{}
	for _, name := range cfg.FallbackOrder {
		name = strings.ToLower(strings.TrimSpace(name))
		pc, ok := byName[name]
		if !ok || seen[name] || pc.APIKey == "" {
			continue
		}
		seen[name] = true
		chain = append(chain, provider{name: name, model: pc.Model})
	}
	return chain
}

// initGenkit initializes one Genkit instance carrying every credentialed
// plugin. Tools are defined against this instance once; per-turn provider
// choice happens through the model name.
func initGenkit(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) *genkit.Genkit {
	var plugins []api.Plugin
	if cfg.Anthropic.APIKey != "" {
		baseURL := cfg.Anthropic.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv("ANTHROPIC_BASE_URL")
		}
		plugins = append(plugins, &anthropic.Anthropic{
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: baseURL,
		})
	}
	if cfg.OpenAI.APIKey != "" {
		baseURL := cfg.OpenAI.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv("OPENAI_BASE_URL")
		}
		plugins = append(plugins, &compat_oai.OpenAICompatible{
			Provider: "openai",
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  baseURL,
		})
	}
	if cfg.Google.APIKey != "" {
		_ = os.Setenv("GEMINI_API_KEY", cfg.Google.APIKey)
		plugins = append(plugins, &googlegenai.GoogleAI{})
	}
	if len(plugins) == 0 {
		logger.Warn("no LLM provider credentialed, chat turns will fail until a key is configured")
		return genkit.Init(ctx)
	}
	g := genkit.Init(ctx, genkit.WithPlugins(plugins...))
	logger.Info("genkit initialized", "providers", len(plugins))
	return g
}

// reasoningConfig builds the provider call options for a turn with
// reasoning requested: extended thinking for Anthropic, reasoning effort
// for OpenAI. Gemini models reason by default, so google stays nil.
func reasoningConfig(providerName string, enabled bool) map[string]any {
	if !enabled {
		return nil
	}
	switch providerName {
	case "anthropic":
		return map[string]any{
			"thinking": map[string]any{"type": "enabled", "budget_tokens": 4096},
		}
	case "openai":
		return map[string]any{"reasoning_effort": "medium"}
	default:
		return nil
	}
}

// resolveModel picks the provider for an explicit model request like
// "anthropic/claude-sonnet-4-5", or errors when its provider is not in
// the chain.
func resolveModel(chain []provider, requested string) (provider, error) {
	if requested == "" {
		return provider{}, fmt.Errorf("empty model")
	}
	name, model, ok := strings.Cut(requested, "/")
	if !ok {
		return provider{}, fmt.Errorf("model %q must be provider-qualified, like anthropic/claude-sonnet-4-5", requested)
	}
	if name == "googleai" {
		name = "google"
	}
	for _, p := range chain {
		if p.name == name {
			return provider{name: name, model: model}, nil
		}
	}
	return provider{}, fmt.Errorf("provider %q is not credentialed", name)
}

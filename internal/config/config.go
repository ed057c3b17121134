// Package config loads the Kronus daemon configuration from
// $KRONUS_HOME/config.yaml with environment-variable overrides for
// provider credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GuiArSt/kronus/internal/otel"
)

// ProviderConfig holds per-provider model settings. Keys come from the
// environment (ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY) unless
// set here explicitly.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// LLMConfig selects providers and the fallback order.
type LLMConfig struct {
	Anthropic ProviderConfig `yaml:"anthropic"`
	OpenAI    ProviderConfig `yaml:"openai"`
	Google    ProviderConfig `yaml:"google"`

	// FallbackOrder is the credential-gated provider chain tried when the
	// requested provider has no key. At most the three named providers.
	FallbackOrder []string `yaml:"fallback_order"`
}

// LinearConfig holds the fixed Linear identity injected into the prompt
// context plus the mirror policy knobs.
type LinearConfig struct {
	APIKey string `yaml:"api_key"`
	UserID string `yaml:"user_id"`
	TeamID string `yaml:"team_id"`

	// ExcludedStates are workflow state names whose items never render into
	// repository sections. Free-text state matching is provider-specific,
	// so the list is configuration rather than a code constant.
	ExcludedStates []string `yaml:"excluded_states"`

	// CompletedStates mark issues that only render when the caller opted
	// into completed items.
	CompletedStates []string `yaml:"completed_states"`
}

// SliteConfig holds the Slite mirror credentials.
type SliteConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// MirrorConfig controls the Linear/Slite cache refresh cadence.
type MirrorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"` // 5-field cron expression
}

// CORSConfig controls browser access to the gateway.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// GatewayConfig holds the HTTP listener settings.
type GatewayConfig struct {
	Addr      string     `yaml:"addr"`
	AuthToken string     `yaml:"auth_token"`
	CORS      CORSConfig `yaml:"cors"`
}

// SearchConfig holds web-search provider keys.
type SearchConfig struct {
	BraveAPIKey      string `yaml:"brave_api_key"`
	PerplexityAPIKey string `yaml:"perplexity_api_key"`
	Preferred        string `yaml:"preferred"`
}

// Config is the root configuration.
type Config struct {
	HomeDir  string `yaml:"home_dir"`
	SoulFile string `yaml:"soul_file"`
	LogLevel string `yaml:"log_level"`
	Quiet    bool   `yaml:"quiet"`

	LLM     LLMConfig     `yaml:"llm"`
	Linear  LinearConfig  `yaml:"linear"`
	Slite   SliteConfig   `yaml:"slite"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Gateway GatewayConfig `yaml:"gateway"`
	Search  SearchConfig  `yaml:"search"`
	OTel    otel.Config   `yaml:"otel"`

	// GitRepos are the local repositories the git tool group may read.
	GitRepos []string `yaml:"git_repos"`
}

// DefaultHomeDir returns $KRONUS_HOME or ~/.kronus.
func DefaultHomeDir() string {
	if h := strings.TrimSpace(os.Getenv("KRONUS_HOME")); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kronus"
	}
	return filepath.Join(home, ".kronus")
}

// Load reads config.yaml under homeDir. A missing file yields the defaults;
// a malformed file is an error.
func Load(homeDir string) (*Config, error) {
	cfg := defaults(homeDir)

	path := filepath.Join(homeDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config (%s): %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config (%s): %w", path, err)
	}
	cfg.normalize(homeDir)
	cfg.applyEnv()
	return cfg, nil
}

func defaults(homeDir string) *Config {
	return &Config{
		HomeDir:  homeDir,
		SoulFile: filepath.Join(homeDir, "SOUL.md"),
		LogLevel: "info",
		LLM: LLMConfig{
			Anthropic:     ProviderConfig{Model: "claude-sonnet-4-5"},
			OpenAI:        ProviderConfig{Model: "gpt-5"},
			Google:        ProviderConfig{Model: "gemini-2.5-pro"},
			FallbackOrder: []string{"anthropic", "openai", "google"},
		},
		Linear: LinearConfig{
			ExcludedStates:  []string{"canceled", "cancelled", "duplicate"},
			CompletedStates: []string{"completed", "done"},
		},
		Slite: SliteConfig{
			BaseURL: "https://api.slite.com",
		},
		Mirror: MirrorConfig{
			Enabled: true,
			Cron:    "*/30 * * * *",
		},
		Gateway: GatewayConfig{
			Addr: "127.0.0.1:8471",
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"http://localhost:3000"},
			},
		},
	}
}

func (c *Config) normalize(homeDir string) {
	if strings.TrimSpace(c.HomeDir) == "" {
		c.HomeDir = homeDir
	}
	if strings.TrimSpace(c.SoulFile) == "" {
		c.SoulFile = filepath.Join(c.HomeDir, "SOUL.md")
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
	if len(c.LLM.FallbackOrder) == 0 {
		c.LLM.FallbackOrder = []string{"anthropic", "openai", "google"}
	}
	// The Linear state lists keep their defaults only when the file omits
	// the keys entirely; yaml leaves absent keys untouched, so an explicit
	// empty list stays empty.
	if strings.TrimSpace(c.Gateway.Addr) == "" {
		c.Gateway.Addr = "127.0.0.1:8471"
	}
}

// applyEnv fills credentials from the environment when the file left them
// empty. Env values never override explicit file values.
func (c *Config) applyEnv() {
	fill := func(dst *string, envs ...string) {
		if strings.TrimSpace(*dst) != "" {
			return
		}
		for _, e := range envs {
			if v := strings.TrimSpace(os.Getenv(e)); v != "" {
				*dst = v
				return
			}
		}
	}
	fill(&c.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	fill(&c.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	fill(&c.LLM.Google.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	fill(&c.Linear.APIKey, "LINEAR_API_KEY")
	fill(&c.Slite.APIKey, "SLITE_API_KEY")
	fill(&c.Search.BraveAPIKey, "BRAVE_API_KEY")
	fill(&c.Search.PerplexityAPIKey, "PERPLEXITY_API_KEY")
	fill(&c.Gateway.AuthToken, "KRONUS_AUTH_TOKEN")
}

// DBPath returns the sqlite database path under the home dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.HomeDir, "kronus.db")
}

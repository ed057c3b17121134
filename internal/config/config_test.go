package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.Addr != "127.0.0.1:8471" {
		t.Errorf("default addr = %q", cfg.Gateway.Addr)
	}
	if got := cfg.SoulFile; got != filepath.Join(home, "SOUL.md") {
		t.Errorf("default soul file = %q", got)
	}
	if len(cfg.LLM.FallbackOrder) != 3 || cfg.LLM.FallbackOrder[0] != "anthropic" {
		t.Errorf("fallback order = %v", cfg.LLM.FallbackOrder)
	}
	if len(cfg.Linear.ExcludedStates) == 0 {
		t.Error("expected default excluded states")
	}
}

func TestLoadFileOverridesAndNormalizes(t *testing.T) {
	home := t.TempDir()
	body := `
log_level: debug
gateway:
  addr: "0.0.0.0:9000"
linear:
  user_id: usr_123
  team_id: team_456
`
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Gateway.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.Gateway.Addr)
	}
	if cfg.Linear.UserID != "usr_123" || cfg.Linear.TeamID != "team_456" {
		t.Errorf("linear identity = %+v", cfg.Linear)
	}
	// Unset fields still get defaults after normalize.
	if len(cfg.LLM.FallbackOrder) != 3 {
		t.Errorf("fallback order = %v", cfg.LLM.FallbackOrder)
	}
}

func TestLoadKeepsExplicitEmptyStateLists(t *testing.T) {
	home := t.TempDir()
	body := `
linear:
  excluded_states: []
  completed_states: []
`
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Linear.ExcludedStates) != 0 {
		t.Errorf("explicit empty excluded_states refilled: %v", cfg.Linear.ExcludedStates)
	}
	if len(cfg.Linear.CompletedStates) != 0 {
		t.Errorf("explicit empty completed_states refilled: %v", cfg.Linear.CompletedStates)
	}

	// Omitting the keys keeps the defaults.
	body = "linear:\n  user_id: usr_1\n"
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Linear.ExcludedStates) != 3 || len(cfg.Linear.CompletedStates) != 2 {
		t.Errorf("omitted keys lost defaults: %v / %v", cfg.Linear.ExcludedStates, cfg.Linear.CompletedStates)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("gateway: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(home); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnvDoesNotOverrideFileValues(t *testing.T) {
	home := t.TempDir()
	body := "linear:\n  api_key: from_file\n"
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LINEAR_API_KEY", "from_env")
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Linear.APIKey != "from_file" {
		t.Errorf("env overrode file value: %q", cfg.Linear.APIKey)
	}
}

func TestApplyEnvFillsEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Anthropic.APIKey != "sk-ant-test" {
		t.Errorf("anthropic key = %q", cfg.LLM.Anthropic.APIKey)
	}
}

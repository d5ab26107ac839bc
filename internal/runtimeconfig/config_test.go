package runtimeconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) (cwd, home string) {
	t.Helper()
	cwd = t.TempDir()
	home = t.TempDir()
	t.Chdir(cwd)
	t.Setenv("HOME", home)
	for _, key := range []string{
		"CONDUIT_PROVIDER", "CONDUIT_MODEL", "CONDUIT_API_KEY", "CONDUIT_BASE_URL",
		"CONDUIT_OLLAMA_BASE_URL", "CONDUIT_TEMPERATURE", "CONDUIT_MAX_TOKENS",
	} {
		t.Setenv(key, "")
	}
	return cwd, home
}

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", cfg.MaxTokens)
	}
	if cfg.PersonalityName != "default" {
		t.Errorf("PersonalityName = %q, want default", cfg.PersonalityName)
	}
	if cfg.Routing.Strategy != "channel" {
		t.Errorf("Routing.Strategy = %q, want channel", cfg.Routing.Strategy)
	}
}

func TestLoadFromCwd(t *testing.T) {
	cwd, _ := isolate(t)
	writeFile(t, filepath.Join(cwd, configFileName), `
provider: anthropic
model: claude-sonnet
temperature: 0.3
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != "anthropic" || cfg.Model != "claude-sonnet" {
		t.Errorf("cfg = %+v, want provider/model loaded from cwd", cfg)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", cfg.Temperature)
	}
}

func TestLoadLayersOverlayInOrder(t *testing.T) {
	cwd, home := isolate(t)
	writeFile(t, filepath.Join(cwd, configFileName), `
provider: anthropic
model: claude-sonnet
`)
	userConfigDir := filepath.Join(home, ".config", appName)
	if err := os.MkdirAll(userConfigDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeFile(t, filepath.Join(userConfigDir, configFileName), `
model: claude-opus
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic preserved from the cwd layer", cfg.Provider)
	}
	if cfg.Model != "claude-opus" {
		t.Errorf("Model = %q, want claude-opus from the higher-precedence user layer", cfg.Model)
	}
}

func TestLoadEnvOverridesFileAndDefaults(t *testing.T) {
	cwd, _ := isolate(t)
	writeFile(t, filepath.Join(cwd, configFileName), `
provider: anthropic
`)
	t.Setenv("CONDUIT_PROVIDER", "openai")
	t.Setenv("CONDUIT_TEMPERATURE", "1.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want env override to win", cfg.Provider)
	}
	if cfg.Temperature != 1.1 {
		t.Errorf("Temperature = %v, want 1.1 from env", cfg.Temperature)
	}
}

func TestLoadExpandsEnvVarsInFile(t *testing.T) {
	cwd, _ := isolate(t)
	t.Setenv("TEST_API_KEY", "secret-123")
	writeFile(t, filepath.Join(cwd, configFileName), `
api_key: "${TEST_API_KEY}"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "secret-123" {
		t.Errorf("APIKey = %q, want expanded env var", cfg.APIKey)
	}
}

func TestLoadRejectsInvalidTemperature(t *testing.T) {
	cwd, _ := isolate(t)
	writeFile(t, filepath.Join(cwd, configFileName), `
temperature: 5
`)

	_, err := Load()
	if err == nil {
		t.Fatalf("expected a validation error")
	}
	if !strings.Contains(err.Error(), "temperature") {
		t.Fatalf("expected temperature error, got %v", err)
	}
}

func TestLoadRejectsInvalidRoutingStrategy(t *testing.T) {
	cwd, _ := isolate(t)
	writeFile(t, filepath.Join(cwd, configFileName), `
routing:
  strategy: nonsense
`)

	_, err := Load()
	if err == nil {
		t.Fatalf("expected a validation error")
	}
	if !strings.Contains(err.Error(), "routing.strategy") {
		t.Fatalf("expected routing.strategy error, got %v", err)
	}
}

func TestEffectiveAgentInheritsGlobals(t *testing.T) {
	cfg := &Config{
		Provider:    "anthropic",
		Model:       "claude-sonnet",
		Temperature: 0.5,
		MaxTokens:   2048,
		Agents: map[string]AgentConfig{
			"researcher": {Model: "claude-opus"},
		},
	}

	agent, ok := cfg.EffectiveAgent("researcher")
	if !ok {
		t.Fatalf("EffectiveAgent() miss")
	}
	if agent.Provider != "anthropic" {
		t.Errorf("Provider = %q, want inherited anthropic", agent.Provider)
	}
	if agent.Model != "claude-opus" {
		t.Errorf("Model = %q, want the agent's own override", agent.Model)
	}
	if agent.Temperature == nil || *agent.Temperature != 0.5 {
		t.Errorf("Temperature = %v, want inherited 0.5", agent.Temperature)
	}
}

func TestEffectiveAgentUnknownName(t *testing.T) {
	cfg := &Config{Agents: map[string]AgentConfig{}}
	if _, ok := cfg.EffectiveAgent("missing"); ok {
		t.Fatalf("EffectiveAgent() = ok for an unknown name")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

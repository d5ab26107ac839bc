// Package runtimeconfig loads the runtime configuration file: default LLM
// selection, loop parameters, tool-group gates, gateway and routing setup,
// and the per-agent overrides layered on top of them. It is read once at
// startup by the composition root and handed to the packages it wires
// together; it holds no behavior of its own.
package runtimeconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "conduit"
	configFileName = "conduit.yaml"
)

// Config is the full set of recognized top-level configuration keys.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`

	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	PersonalityName string `yaml:"personality_name"`

	EnableTerminal bool `yaml:"enable_terminal"`
	EnableWeb      bool `yaml:"enable_web"`
	EnableSkills   bool `yaml:"enable_skills"`
	EnableCron     bool `yaml:"enable_cron"`
	EnableRegistry bool `yaml:"enable_registry"`

	GatewayEnabled  bool                     `yaml:"gateway_enabled"`
	GatewayChannels map[string]ChannelConfig `yaml:"gateway_channels"`

	Agents  map[string]AgentConfig `yaml:"agents"`
	Routing RoutingConfig          `yaml:"routing"`

	OllamaBaseURL string `yaml:"ollama_base_url"`

	// RegistryCatalogPath and Outreach are supplemented additions beyond
	// spec.md's recognized-key table (SPEC_FULL 4.10).
	RegistryCatalogPath string         `yaml:"registry_catalog_path"`
	Outreach            OutreachConfig `yaml:"outreach"`
}

// ChannelConfig holds one gateway channel's settings. Shape varies per
// channel (bot token, webhook secret, allowed senders, ...), so it is kept
// as a flexible string map rather than one struct per channel type.
type ChannelConfig map[string]string

// AgentConfig is one named entry under the top-level agents map. Empty
// fields inherit from the corresponding global key.
type AgentConfig struct {
	Provider        string          `yaml:"provider"`
	Model           string          `yaml:"model"`
	APIKey          string          `yaml:"api_key"`
	Temperature     *float64        `yaml:"temperature"`
	MaxTokens       *int            `yaml:"max_tokens"`
	PersonalitySpec string          `yaml:"personality_spec"`
	ToolFlags       map[string]bool `yaml:"tool_flags"`
}

// RoutingConfig selects how the router picks an agent name for an inbound
// message.
type RoutingConfig struct {
	Strategy string       `yaml:"strategy"`
	Rules    []RuleConfig `yaml:"rules"`
	Default  string       `yaml:"default"`
}

// RuleConfig is one ordered (key, agent name) routing rule.
type RuleConfig struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

// OutreachConfig configures the outreach pipeline's on-disk state and the
// gateway channel it sends composed emails through.
type OutreachConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DataRoot string `yaml:"data_root"`
	Channel  string `yaml:"channel"`
}

// searchPaths returns the three candidate config file locations in
// increasing precedence order: cwd, then ~/.config/<app>/, then ~/.<app>/.
// Each later layer overlays the fields the earlier ones set.
func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		home = "."
	}
	return []string{
		configFileName,
		filepath.Join(home, ".config", appName, configFileName),
		filepath.Join(home, "."+appName, configFileName),
	}
}

// Load reads and merges every present layer, applies environment overrides
// and defaults, validates the result, and returns it. A missing layer is
// skipped; a malformed one is a configuration error.
func Load() (*Config, error) {
	var cfg Config

	for _, path := range searchPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	// A missing config file at every layer is not an error: an all-defaults
	// config still runs with whatever env overrides apply.

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.PersonalityName == "" {
		cfg.PersonalityName = "default"
	}
	if cfg.OllamaBaseURL == "" {
		cfg.OllamaBaseURL = "http://localhost:11434"
	}
	if cfg.Routing.Strategy == "" {
		cfg.Routing.Strategy = "channel"
	}
	if cfg.Routing.Default == "" {
		cfg.Routing.Default = "default"
	}
	if cfg.RegistryCatalogPath == "" {
		cfg.RegistryCatalogPath = "registry/catalog.json"
	}
	if cfg.Outreach.DataRoot == "" {
		cfg.Outreach.DataRoot = "."
	}
}

func applyEnvOverrides(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("CONDUIT_PROVIDER")); value != "" {
		cfg.Provider = value
	}
	if value := strings.TrimSpace(os.Getenv("CONDUIT_MODEL")); value != "" {
		cfg.Model = value
	}
	if value := strings.TrimSpace(os.Getenv("CONDUIT_API_KEY")); value != "" {
		cfg.APIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("CONDUIT_BASE_URL")); value != "" {
		cfg.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("CONDUIT_OLLAMA_BASE_URL")); value != "" {
		cfg.OllamaBaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("CONDUIT_TEMPERATURE")); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			cfg.Temperature = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("CONDUIT_MAX_TOKENS")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			cfg.MaxTokens = parsed
		}
	}
}

// ValidationError aggregates every configuration problem found in one pass
// so an operator fixes them all at once instead of one per run.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validate(cfg *Config) error {
	var issues []string

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		issues = append(issues, "temperature must be between 0 and 2")
	}
	if cfg.MaxTokens < 0 {
		issues = append(issues, "max_tokens must be >= 0")
	}
	if !validStrategy(cfg.Routing.Strategy) {
		issues = append(issues, "routing.strategy must be \"channel\", \"sender\", \"content\", or \"prefix\"")
	}
	for name, agent := range cfg.Agents {
		if agent.Temperature != nil && (*agent.Temperature < 0 || *agent.Temperature > 2) {
			issues = append(issues, fmt.Sprintf("agents.%s.temperature must be between 0 and 2", name))
		}
		if agent.MaxTokens != nil && *agent.MaxTokens < 0 {
			issues = append(issues, fmt.Sprintf("agents.%s.max_tokens must be >= 0", name))
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validStrategy(strategy string) bool {
	switch strategy {
	case "channel", "sender", "content", "prefix":
		return true
	default:
		return false
	}
}

// EffectiveAgent resolves the named agent's settings against the global
// defaults, falling back to "default" with a logged warning left to the
// caller if the name is absent entirely.
func (c *Config) EffectiveAgent(name string) (AgentConfig, bool) {
	agent, ok := c.Agents[name]
	if !ok {
		return AgentConfig{}, false
	}
	if agent.Provider == "" {
		agent.Provider = c.Provider
	}
	if agent.Model == "" {
		agent.Model = c.Model
	}
	if agent.APIKey == "" {
		agent.APIKey = c.APIKey
	}
	if agent.Temperature == nil {
		t := c.Temperature
		agent.Temperature = &t
	}
	if agent.MaxTokens == nil {
		m := c.MaxTokens
		agent.MaxTokens = &m
	}
	return agent, true
}

// EffectiveRouting builds a routing description ready for routerpool.New.
func (c *Config) EffectiveRouting() (strategy string, rules []RuleConfig, defaultName string) {
	return c.Routing.Strategy, c.Routing.Rules, c.Routing.Default
}

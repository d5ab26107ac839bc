package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conduitrun/conduit/internal/agentcore"
	"github.com/conduitrun/conduit/internal/compactor"
	"github.com/conduitrun/conduit/internal/convo"
	"github.com/conduitrun/conduit/internal/runtimeconfig"
	"github.com/conduitrun/conduit/internal/timer"
	"github.com/conduitrun/conduit/internal/toolreg"
)

// agentBuilder mints a fresh *agentcore.Agent for a named agent
// configuration, sharing the registry, compactor, and metrics across every
// instance it builds. It backs both the router pool's Factory (cache-aware,
// keyed by sender) and the scheduler's AgentFactory (always fresh).
type agentBuilder struct {
	cfg       *runtimeconfig.Config
	registry  *toolreg.Registry
	comp      *compactor.Compactor
	metrics   *agentcore.Metrics
	logger    *slog.Logger
}

func (b *agentBuilder) build(name string) (*agentcore.Agent, error) {
	agentCfg, ok := b.cfg.EffectiveAgent(name)
	if !ok {
		agentCfg = runtimeconfig.AgentConfig{
			Provider:    b.cfg.Provider,
			Model:       b.cfg.Model,
			APIKey:      b.cfg.APIKey,
			Temperature: &b.cfg.Temperature,
			MaxTokens:   &b.cfg.MaxTokens,
		}
	}

	provider, err := buildProvider(context.Background(), agentCfg.Provider, agentCfg.APIKey, agentCfg.Model, b.cfg.BaseURL, b.cfg.OllamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("build provider for agent %q: %w", name, err)
	}

	personality := buildPersonality(name, agentCfg.PersonalitySpec, b.cfg.PersonalityName)

	agent := agentcore.New(provider, agentCfg.Model, b.registry, b.comp, personality, b.metrics)
	if agentCfg.Temperature != nil {
		agent.Temperature = *agentCfg.Temperature
	}
	if agentCfg.MaxTokens != nil {
		agent.MaxTokens = *agentCfg.MaxTokens
	}
	return agent, nil
}

// routerPoolFactory adapts build to routerpool.Factory's any-returning shape.
func (b *agentBuilder) routerPoolFactory(name, sender string) (any, error) {
	return b.build(name)
}

// schedulerFactory adapts build to timer.AgentFactory, always minting the
// default agent: scheduled jobs have no sender to route on.
func (b *agentBuilder) schedulerFactory() (timer.Agent, error) {
	return b.build(b.cfg.Routing.Default)
}

// buildPersonality resolves the system prompt for one named agent. spec, if
// set, overrides the shared name's rendered context verbatim; otherwise one
// fixed default personality is used, whatever personalityName is (it only
// sets the Name field; there is no per-name catalog).
func buildPersonality(agentName, spec, personalityName string) convo.Personality {
	if spec != "" {
		return convo.Personality{Name: personalityName, Role: agentName, Context: spec}
	}
	return convo.Personality{
		Name: personalityName,
		Role: "a helpful assistant",
		Tone: "direct and concise",
		Rules: []string{
			"Use the available tools when a task needs them instead of guessing.",
			"State uncertainty plainly rather than inventing an answer.",
		},
	}
}

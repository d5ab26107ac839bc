package main

import (
	"context"
	"fmt"

	"github.com/conduitrun/conduit/internal/llm"
)

// buildProvider selects and constructs the llm.Provider for one resolved
// agent configuration. Recognized families are anthropic, openai, gemini,
// and ollama; anything else is treated as an OpenAI-compatible endpoint
// (Azure OpenAI, OpenRouter, a local proxy) named after the provider string.
func buildProvider(ctx context.Context, providerName, apiKey, model, baseURL, ollamaBaseURL string) (llm.Provider, error) {
	switch providerName {
	case "", "anthropic":
		return llm.NewAnthropicAdapter(apiKey, model), nil
	case "openai":
		if baseURL != "" {
			return llm.NewCompatibleAdapter("openai", apiKey, baseURL), nil
		}
		return llm.NewOpenAIAdapter(apiKey), nil
	case "gemini":
		return llm.NewGeminiAdapter(ctx, apiKey, model)
	case "ollama":
		url := ollamaBaseURL
		if baseURL != "" {
			url = baseURL
		}
		return llm.NewOllamaAdapter(url, model), nil
	default:
		if apiKey == "" && baseURL == "" {
			return nil, fmt.Errorf("provider %q needs either an api_key or a base_url", providerName)
		}
		return llm.NewCompatibleAdapter(providerName, apiKey, baseURL), nil
	}
}

package registrycatalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conduitrun/conduit/internal/convo"
	"github.com/conduitrun/conduit/internal/toolreg"
)

// RegisterTools installs registry_search/add/get/stats/remove against
// registry, backed by store.
func RegisterTools(registry *toolreg.Registry, store *Store) {
	registry.Register("registry_search", searchHandler(store), searchSchema)
	registry.Register("registry_add", addHandler(store), addSchema)
	registry.Register("registry_get", getHandler(store), getSchema)
	registry.Register("registry_stats", statsHandler(store), statsSchema)
	registry.Register("registry_remove", removeHandler(store), removeSchema)
}

func searchHandler(store *Store) toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			Query    string `json:"query"`
			Category string `json:"category"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		if store.Count() == 0 {
			return "API registry is empty. Use registry_add to register APIs.", nil
		}

		scored := store.Search(input.Query, input.Category)
		if len(scored) == 0 {
			cats := store.Categories()
			msg := fmt.Sprintf("No APIs match '%s'.", input.Query)
			if input.Category != "" {
				msg += fmt.Sprintf(" Category '%s' applied.", input.Category)
			}
			msg += fmt.Sprintf("\nAvailable categories: %s", strings.Join(cats, ", "))
			msg += fmt.Sprintf("\nTotal APIs in registry: %d", store.Count())
			return msg, nil
		}

		out := fmt.Sprintf("Found %d API(s) matching '%s':", len(scored), input.Query)
		top := scored
		if len(top) > 10 {
			top = top[:10]
		}
		for rank, s := range top {
			entry := s.Entry
			tags := entry.Tags
			if len(tags) > 5 {
				tags = tags[:5]
			}
			successStr := ""
			if entry.Stats.SuccessRate != nil {
				successStr = fmt.Sprintf(", %.0f%% success", *entry.Stats.SuccessRate*100)
			}
			out += fmt.Sprintf("\n  %d. %s (%s) — %s\n     Tags: [%s] | Pricing: %s%s",
				rank+1, entry.Name, entry.Category, entry.Description, strings.Join(tags, ", "), entry.Pricing, successStr)
		}
		if len(scored) > 10 {
			out += fmt.Sprintf("\n  ... and %d more.", len(scored)-10)
		}
		return out, nil
	}
}

func addHandler(store *Store) toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input AddInput
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		entry, err := store.Add(input)
		if err != nil {
			return err.Error(), nil
		}
		return fmt.Sprintf("Registered '%s' (%s) in category '%s'. Tags: %s",
			entry.Name, entry.URL, entry.Category, strings.Join(entry.Tags, ", ")), nil
	}
}

func getHandler(store *Store) toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		entry, suggestions, ok := store.Get(input.Name)
		if !ok {
			if len(suggestions) > 0 {
				return fmt.Sprintf("API '%s' not found. Did you mean: %s?", input.Name, strings.Join(suggestions, ", ")), nil
			}
			return fmt.Sprintf("API '%s' not found. Use registry_search to find APIs.", input.Name), nil
		}

		authStr := "(no token)"
		if entry.AuthToken != "" {
			authStr = "(token configured)"
		}
		lastUsed := "never"
		if entry.LastUsedAt != nil {
			lastUsed = entry.LastUsedAt.Format("2006-01-02T15:04:05")
		}
		lastChecked := "never"
		if entry.Stats.LastCheckedAt != nil {
			lastChecked = entry.Stats.LastCheckedAt.Format("2006-01-02T15:04:05")
		}

		return fmt.Sprintf("API: %s\n  URL: %s\n  Description: %s\n  Category: %s\n  Tags: %s\n  Auth: %s %s\n  Pricing: %s\n  Endpoints discovered: %d\n  Added: %s\n  Last used: %s\n  Stats:\n    Total calls: %d\n    Success rate: %s\n    Avg latency: %s\n    Last checked: %s",
			entry.Name, entry.URL, entry.Description, entry.Category, strings.Join(entry.Tags, ", "),
			entry.AuthType, authStr, entry.Pricing, entry.EndpointsDiscovered,
			entry.AddedAt.Format("2006-01-02T15:04"), lastUsed,
			entry.Stats.TotalCalls, formatPct(entry.Stats.SuccessRate), formatMs(entry.Stats.AvgLatencyMs), lastChecked), nil
	}
}

func statsHandler(store *Store) toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		entry, _, ok := store.Get(input.Name)
		if !ok {
			return fmt.Sprintf("API '%s' not found in registry.", input.Name), nil
		}
		if entry.Stats.TotalCalls == 0 {
			return fmt.Sprintf("No usage data for '%s' yet.", entry.Name), nil
		}

		lastChecked := "never"
		if entry.Stats.LastCheckedAt != nil {
			lastChecked = entry.Stats.LastCheckedAt.Format("2006-01-02T15:04:05")
		}
		lastUsed := "never"
		if entry.LastUsedAt != nil {
			lastUsed = entry.LastUsedAt.Format("2006-01-02T15:04:05")
		}

		out := fmt.Sprintf("Quality report for '%s' (%s):\n  Total API calls tracked: %d\n  Success rate: %s\n  Average latency: %s\n  Last checked: %s\n  Last used: %s\n  Endpoints discovered: %d",
			entry.Name, entry.URL, entry.Stats.TotalCalls, formatPct(entry.Stats.SuccessRate), formatMs(entry.Stats.AvgLatencyMs),
			lastChecked, lastUsed, entry.EndpointsDiscovered)

		if entry.Stats.SuccessRate != nil {
			rate := *entry.Stats.SuccessRate
			switch {
			case rate >= 0.95:
				out += "\n  Health: EXCELLENT"
			case rate >= 0.80:
				out += "\n  Health: GOOD"
			case rate >= 0.50:
				out += "\n  Health: DEGRADED"
			default:
				out += "\n  Health: POOR"
			}
		}
		if entry.Stats.AvgLatencyMs != nil {
			lat := *entry.Stats.AvgLatencyMs
			switch {
			case lat < 200:
				out += "\n  Speed: FAST"
			case lat < 1000:
				out += "\n  Speed: NORMAL"
			default:
				out += "\n  Speed: SLOW"
			}
		}
		return out, nil
	}
}

func removeHandler(store *Store) toolreg.Handler {
	return func(arguments json.RawMessage) (string, error) {
		var input struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		entry, err := store.Remove(input.Name)
		if err != nil {
			return err.Error(), nil
		}
		return fmt.Sprintf("Removed '%s' (%s) from the registry.", entry.Name, entry.URL), nil
	}
}

func formatPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func formatMs(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0fms", *v)
}

var searchSchema = convo.ToolSchema{
	Name: "registry_search",
	Description: "Search the API catalog by capability. Describe what you need in plain English " +
		"(e.g. 'send SMS', 'geocoding', 'payment processing') and get matching APIs ranked by relevance. " +
		"Optionally filter by category.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "What capability you need"},
			"category": {"type": "string", "description": "Filter by category. Optional."}
		},
		"required": ["query"]
	}`),
}

var addSchema = convo.ToolSchema{
	Name: "registry_add",
	Description: "Register a new API in the catalog for future reuse. Provide the name, URL, description, " +
		"category, and comma-separated tags. Optionally include auth configuration and pricing info.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Short name for the API"},
			"url": {"type": "string", "description": "Base URL of the API"},
			"description": {"type": "string", "description": "What the API does, in one sentence"},
			"category": {"type": "string", "description": "Category (e.g. communication, maps, payments, ai)"},
			"tags": {"type": "string", "description": "Comma-separated tags for search"},
			"auth_type": {"type": "string", "enum": ["bearer", "basic", "api_key", "none"]},
			"auth_token": {"type": "string", "description": "Auth token or API key (stored with the entry)"},
			"pricing": {"type": "string", "enum": ["free", "freemium", "pay-per-use", "subscription"]}
		},
		"required": ["name", "url", "description", "category", "tags"]
	}`),
}

var getSchema = convo.ToolSchema{
	Name: "registry_get",
	Description: "Get full details on a specific API from the registry including its URL, auth configuration, " +
		"discovered endpoints, and quality stats.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {"name": {"type": "string", "description": "Name of the API to look up"}},
		"required": ["name"]
	}`),
}

var statsSchema = convo.ToolSchema{
	Name:        "registry_stats",
	Description: "Report quality metrics for a registered API: average latency, success rate, total calls, and health assessment.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {"name": {"type": "string", "description": "Name of the API to get stats for"}},
		"required": ["name"]
	}`),
}

var removeSchema = convo.ToolSchema{
	Name:        "registry_remove",
	Description: "Remove an API from the catalog.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {"name": {"type": "string", "description": "Name of the API to remove"}},
		"required": ["name"]
	}`),
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/conduitrun/conduit/internal/convo"
	"github.com/conduitrun/conduit/internal/registrycatalog"
	"github.com/conduitrun/conduit/internal/runtimeconfig"
	"github.com/conduitrun/conduit/internal/skills"
	"github.com/conduitrun/conduit/internal/toolreg"
	"github.com/conduitrun/conduit/internal/tools/websearch"
)

// executableTool is the shape both websearch tools share: a name, a
// description, a JSON Schema, and a context-aware executor. registerTool
// bridges it into toolreg, which has no notion of context.
type executableTool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, params json.RawMessage) (string, error)
}

func registerTool(registry *toolreg.Registry, tool executableTool) {
	registry.Register(tool.Name(), func(arguments json.RawMessage) (string, error) {
		return tool.Execute(context.Background(), arguments)
	}, convo.ToolSchema{
		Name:        tool.Name(),
		Description: tool.Description(),
		Parameters:  tool.Schema(),
	})
}

// builtinGroups assembles the tool groups gated by the configured flags.
// search is passed in rather than built here since the outreach pipeline
// also needs it as an outreach.Searcher.
func builtinGroups(registryStore *registrycatalog.Store, search *websearch.WebSearchTool, fetch *websearch.WebFetchTool, skillsManager *skills.Manager) []toolreg.BuiltinGroup {
	groups := []toolreg.BuiltinGroup{
		{
			Name:    "web",
			Enabled: func(f toolreg.Flags) bool { return f.Web },
			Install: func(r *toolreg.Registry) {
				registerTool(r, search)
				registerTool(r, fetch)
			},
		},
	}
	if registryStore != nil {
		groups = append(groups, toolreg.BuiltinGroup{
			Name:    "registry",
			Enabled: func(f toolreg.Flags) bool { return f.Registry },
			Install: func(r *toolreg.Registry) {
				registrycatalog.RegisterTools(r, registryStore)
			},
		})
	}
	if skillsManager != nil {
		groups = append(groups, toolreg.BuiltinGroup{
			Name:    "skills",
			Enabled: func(f toolreg.Flags) bool { return f.Skills },
			Install: func(r *toolreg.Registry) {
				registerSkillTools(r, skillsManager)
			},
		})
	}
	return groups
}

// newSkillsManager discovers and gates the on-disk skill catalog, logging
// but not failing startup on a discovery error so one bad skill file
// doesn't take down the gateway.
func newSkillsManager(logger *slog.Logger) *skills.Manager {
	manager, err := skills.NewManager(nil, "", nil)
	if err != nil {
		logger.Warn("skills manager init failed", "error", err)
		return nil
	}
	if err := manager.Discover(context.Background()); err != nil {
		logger.Warn("skill discovery failed", "error", err)
	}
	return manager
}

type skillReadParams struct {
	Name string `json:"name"`
}

// registerSkillTools exposes the eligible skill catalog as two tools:
// listing names/descriptions, and reading one skill's full instructions on
// demand. Skills here are prompt content, not executable code, since this
// gateway carries no shell-exec tool surface for skills.BuildSkillTools to
// drive.
func registerSkillTools(r *toolreg.Registry, manager *skills.Manager) {
	r.Register("skill_list", func(json.RawMessage) (string, error) {
		entries := manager.ListEligible()
		if len(entries) == 0 {
			return "no eligible skills installed", nil
		}
		out := ""
		for _, entry := range entries {
			out += fmt.Sprintf("- %s: %s\n", entry.Name, entry.Description)
		}
		return out, nil
	}, convo.ToolSchema{
		Name:        "skill_list",
		Description: "List the names and descriptions of eligible skills.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
	})

	r.Register("skill_read", func(arguments json.RawMessage) (string, error) {
		var params skillReadParams
		if err := json.Unmarshal(arguments, &params); err != nil {
			return "", err
		}
		entry, ok := manager.GetEligible(params.Name)
		if !ok {
			return "", fmt.Errorf("skill %q is not installed or not eligible", params.Name)
		}
		content, err := manager.LoadContent(entry.Name)
		if err != nil {
			return "", err
		}
		return content, nil
	}, convo.ToolSchema{
		Name:        "skill_read",
		Description: "Read the full instructions for one eligible skill by name.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`),
	})
}

func toolFlags(cfg *runtimeconfig.Config) toolreg.Flags {
	return toolreg.Flags{
		Terminal: cfg.EnableTerminal,
		Web:      cfg.EnableWeb,
		Skills:   cfg.EnableSkills,
		Scheduler: cfg.EnableCron,
		Registry: cfg.EnableRegistry,
		Outreach: cfg.Outreach.Enabled,
	}
}

func newSearchTools(cfg *runtimeconfig.Config, logger *slog.Logger) (*websearch.WebSearchTool, *websearch.WebFetchTool) {
	search := websearch.NewWebSearchTool(&websearch.Config{
		DefaultBackend:     websearch.BackendDuckDuckGo,
		DefaultResultCount: 5,
		CacheTTL:           300,
	})
	fetch := websearch.NewWebFetchTool(&websearch.FetchConfig{MaxChars: 8000})
	return search, fetch
}

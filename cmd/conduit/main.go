// Package main provides the CLI entry point for the Conduit multi-channel
// AI agent gateway.
//
// Conduit connects messaging platforms (Telegram, Discord, and a roster of
// stubbed-but-SDK-wired channels) to LLM providers (Anthropic, OpenAI,
// Gemini, Ollama) with tool execution, a persistent job scheduler, and an
// outreach pipeline.
//
// # Basic Usage
//
// Start the gateway:
//
//	conduit serve --addr :8090
//
// Check the resolved configuration without starting anything:
//
//	conduit status
//
// # Environment Variables
//
//   - CONDUIT_PROVIDER, CONDUIT_MODEL, CONDUIT_API_KEY, CONDUIT_BASE_URL
//   - CONDUIT_OLLAMA_BASE_URL
//   - CONDUIT_TEMPERATURE, CONDUIT_MAX_TOKENS
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "conduit",
		Short:   "Conduit - multi-channel AI agent gateway",
		Version: version,
		Long: `Conduit connects messaging platforms to LLM providers with tool execution.

Channels: Telegram, Discord (live); Slack, WhatsApp, Matrix, Mattermost, Nostr (stubbed)
Providers: Anthropic, OpenAI, Gemini, Ollama, and OpenAI-compatible endpoints
Tools: web search/fetch, the registry catalog, and the outreach pipeline`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(buildServeCmd())
	rootCmd.AddCommand(buildStatusCmd())
	return rootCmd
}

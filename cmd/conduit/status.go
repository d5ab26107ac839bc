package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduitrun/conduit/internal/runtimeconfig"
)

func buildStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the resolved configuration without starting the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runtimeconfig.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			fmt.Printf("provider:        %s\n", orDefault(cfg.Provider, "anthropic"))
			fmt.Printf("model:           %s\n", cfg.Model)
			fmt.Printf("personality:     %s\n", cfg.PersonalityName)
			fmt.Printf("routing strategy: %s (default agent %q)\n", cfg.Routing.Strategy, cfg.Routing.Default)
			fmt.Printf("agents:          %d configured\n", len(cfg.Agents))
			fmt.Printf("gateway channels: %d configured\n", len(cfg.GatewayChannels))
			fmt.Printf("tools:           terminal=%v web=%v skills=%v cron=%v registry=%v\n",
				cfg.EnableTerminal, cfg.EnableWeb, cfg.EnableSkills, cfg.EnableCron, cfg.EnableRegistry)
			fmt.Printf("outreach:        enabled=%v data_root=%s channel=%s\n",
				cfg.Outreach.Enabled, cfg.Outreach.DataRoot, cfg.Outreach.Channel)
			return nil
		},
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

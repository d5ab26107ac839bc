package main

import (
	"log/slog"

	"github.com/conduitrun/conduit/internal/channels/discord"
	"github.com/conduitrun/conduit/internal/channels/matrix"
	"github.com/conduitrun/conduit/internal/channels/mattermost"
	"github.com/conduitrun/conduit/internal/channels/nostr"
	"github.com/conduitrun/conduit/internal/channels/slack"
	"github.com/conduitrun/conduit/internal/channels/telegram"
	"github.com/conduitrun/conduit/internal/channels/whatsapp"
	"github.com/conduitrun/conduit/internal/gatewaycore"
	"github.com/conduitrun/conduit/internal/runtimeconfig"
)

// registerChannels builds one channel instance per tag Conduit knows about
// and registers it with manager, regardless of whether it ends up
// Configured. An unconfigured channel is simply never selected by the
// gateway; building it anyway keeps the roster uniform and lets a channel's
// own Configured() logic be the single source of truth.
func registerChannels(manager *gatewaycore.Manager, cfg *runtimeconfig.Config, logger *slog.Logger) {
	settings := cfg.GatewayChannels

	manager.Register("telegram", telegram.New(telegram.Config{
		Token:  settings["telegram"]["token"],
		Logger: logger,
	}))

	manager.Register("discord", discord.New(discord.Config{
		Token:  settings["discord"]["token"],
		Logger: logger,
	}))

	manager.Register("slack", slack.New(slack.Config{
		BotToken: settings["slack"]["bot_token"],
		AppToken: settings["slack"]["app_token"],
		Logger:   logger,
	}))

	manager.Register("whatsapp", whatsapp.New(whatsapp.Config{
		SessionDBPath: settings["whatsapp"]["session_db_path"],
		Logger:        logger,
	}))

	manager.Register("matrix", matrix.New(matrix.Config{
		HomeserverURL: settings["matrix"]["homeserver_url"],
		UserID:        settings["matrix"]["user_id"],
		AccessToken:   settings["matrix"]["access_token"],
		Logger:        logger,
	}))

	manager.Register("mattermost", mattermost.New(mattermost.Config{
		ServerURL: settings["mattermost"]["server_url"],
		Token:     settings["mattermost"]["token"],
		TeamName:  settings["mattermost"]["team_name"],
		Logger:    logger,
	}))

	relays := nostr.DefaultRelays
	manager.Register("nostr", nostr.New(nostr.Config{
		PrivateKey: settings["nostr"]["private_key"],
		Relays:     relays,
		Logger:     logger,
	}))
}

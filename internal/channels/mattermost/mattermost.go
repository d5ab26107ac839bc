// Package mattermost is a placeholder Mattermost channel wired to the real
// github.com/mattermost/mattermost/server/public/model client. It is never
// Configured: the WebSocket event loop and team/channel resolution are not
// implemented yet.
package mattermost

import (
	"context"
	"log/slog"

	"github.com/mattermost/mattermost/server/public/model"

	"github.com/conduitrun/conduit/internal/gatewaycore"
)

// Config holds the settings a complete Mattermost integration would need.
type Config struct {
	ServerURL string
	Token     string
	TeamName  string
	Logger    *slog.Logger
}

// Channel is an unimplemented Mattermost channel, holding the real model
// client type so the dependency has a concrete, if dormant, home.
type Channel struct {
	config Config
	client *model.Client4
}

// New constructs a Mattermost channel. The returned channel is never
// Configured.
func New(config Config) *Channel {
	c := &Channel{config: config}
	if config.ServerURL != "" {
		c.client = model.NewAPIv4Client(config.ServerURL)
	}
	return c
}

// Configured always reports false: Mattermost support is not wired up yet.
func (c *Channel) Configured() bool {
	return false
}

func (c *Channel) Validate(raw []byte) bool {
	return false
}

func (c *Channel) ParseInbound(raw []byte) (*gatewaycore.Message, bool) {
	return nil, false
}

func (c *Channel) Send(ctx context.Context, recipientID, text string, metadata map[string]string) gatewaycore.SendResult {
	return gatewaycore.SendResult{Success: false, Error: "mattermost channel not implemented"}
}

func (c *Channel) FormatWebhookResponse(text string, inbound *gatewaycore.Message) []byte {
	return nil
}

var _ gatewaycore.Channel = (*Channel)(nil)

// Package slack is a placeholder Slack channel wired to the real
// github.com/slack-go/slack client. It is never Configured: Slack's Socket
// Mode handshake and event routing are not implemented yet, so the gateway
// manager skips it rather than attempt a half-working connection.
package slack

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/conduitrun/conduit/internal/gatewaycore"
)

// Config holds the credentials a complete Slack integration would need.
type Config struct {
	BotToken string // xoxb- token for Web API calls
	AppToken string // xapp- token for Socket Mode
	Logger   *slog.Logger
}

// Channel is an unimplemented Slack channel. It exists so the Slack client
// type and its dependency are exercised, and so a future implementation has
// a concrete home in the gateway's channel roster.
type Channel struct {
	config Config
	client *slack.Client
}

// New constructs a Slack channel. The returned channel is never Configured.
func New(config Config) *Channel {
	c := &Channel{config: config}
	if config.BotToken != "" {
		c.client = slack.New(config.BotToken)
	}
	return c
}

// Configured always reports false: Slack support is not wired up yet.
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
	return gatewaycore.SendResult{Success: false, Error: "slack channel not implemented"}
}

func (c *Channel) FormatWebhookResponse(text string, inbound *gatewaycore.Message) []byte {
	return nil
}

var _ gatewaycore.Channel = (*Channel)(nil)

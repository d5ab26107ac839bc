// Package matrix is a placeholder Matrix channel wired to the real
// maunium.net/go/mautrix client. It is never Configured: Matrix's sync loop
// and room membership handling are not implemented yet.
package matrix

import (
	"context"
	"log/slog"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"github.com/conduitrun/conduit/internal/gatewaycore"
)

// Config holds the settings a complete Matrix integration would need.
type Config struct {
	HomeserverURL string
	UserID        string
	AccessToken   string
	Logger        *slog.Logger
}

// Channel is an unimplemented Matrix channel, holding the real mautrix
// client type so the dependency has a concrete, if dormant, home.
type Channel struct {
	config Config
	client *mautrix.Client
}

// New constructs a Matrix channel. The returned channel is never
// Configured.
func New(config Config) *Channel {
	c := &Channel{config: config}
	if config.HomeserverURL != "" {
		if client, err := mautrix.NewClient(config.HomeserverURL, id.UserID(config.UserID), config.AccessToken); err == nil {
			c.client = client
		}
	}
	return c
}

// Configured always reports false: Matrix support is not wired up yet.
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
	return gatewaycore.SendResult{Success: false, Error: "matrix channel not implemented"}
}

func (c *Channel) FormatWebhookResponse(text string, inbound *gatewaycore.Message) []byte {
	return nil
}

var _ gatewaycore.Channel = (*Channel)(nil)

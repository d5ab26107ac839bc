// Package whatsapp is a placeholder WhatsApp channel wired to the real
// go.mau.fi/whatsmeow client. It is never Configured: pairing a device via
// whatsmeow's multi-device protocol and its SQLite-backed session store are
// not implemented yet.
package whatsapp

import (
	"context"
	"log/slog"

	"go.mau.fi/whatsmeow"

	"github.com/conduitrun/conduit/internal/gatewaycore"
)

// Config holds the settings a complete WhatsApp integration would need.
type Config struct {
	SessionDBPath string
	Logger        *slog.Logger
}

// Channel is an unimplemented WhatsApp channel, holding the real whatsmeow
// client type so the dependency has a concrete, if dormant, home.
type Channel struct {
	config Config
	client *whatsmeow.Client
}

// New constructs a WhatsApp channel. The returned channel is never
// Configured.
func New(config Config) *Channel {
	return &Channel{config: config}
}

// Configured always reports false: WhatsApp support is not wired up yet.
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
	return gatewaycore.SendResult{Success: false, Error: "whatsapp channel not implemented"}
}

func (c *Channel) FormatWebhookResponse(text string, inbound *gatewaycore.Message) []byte {
	return nil
}

var _ gatewaycore.Channel = (*Channel)(nil)

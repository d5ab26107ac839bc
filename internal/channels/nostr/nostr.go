// Package nostr is a placeholder Nostr channel wired to the real
// github.com/nbd-wtf/go-nostr relay client. It is never Configured: relay
// pool management and NIP-04 encrypted DM handling are not implemented yet.
package nostr

import (
	"context"
	"log/slog"

	nostrgo "github.com/nbd-wtf/go-nostr"

	"github.com/conduitrun/conduit/internal/gatewaycore"
)

// DefaultRelays are commonly used Nostr relays a future implementation
// would connect to.
var DefaultRelays = []string{
	"wss://relay.damus.io",
	"wss://nos.lol",
	"wss://relay.nostr.band",
}

// Config holds the settings a complete Nostr integration would need.
type Config struct {
	PrivateKey string
	Relays     []string
	Logger     *slog.Logger
}

// Channel is an unimplemented Nostr channel. Its relays field is typed on
// go-nostr's Relay so the dependency has a concrete home, but it is never
// populated: no relay connection is opened.
type Channel struct {
	config Config
	relays []*nostrgo.Relay
}

// New constructs a Nostr channel. The returned channel is never Configured.
func New(config Config) *Channel {
	return &Channel{config: config}
}

// Configured always reports false: Nostr support is not wired up yet.
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
	return gatewaycore.SendResult{Success: false, Error: "nostr channel not implemented"}
}

func (c *Channel) FormatWebhookResponse(text string, inbound *gatewaycore.Message) []byte {
	return nil
}

var _ gatewaycore.Channel = (*Channel)(nil)

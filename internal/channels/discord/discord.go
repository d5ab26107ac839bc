// Package discord implements gatewaycore.Channel against the real Discord
// gateway via github.com/bwmarrin/discordgo. Like Telegram, Discord is a
// long-lived websocket channel rather than a webhook one.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/conduitrun/conduit/internal/gatewaycore"
)

// Config holds the credentials for the Discord channel.
type Config struct {
	Token  string
	Logger *slog.Logger
}

// Channel implements gatewaycore.Channel and gatewaycore.LongLived for
// Discord.
type Channel struct {
	config Config
	logger *slog.Logger

	mu      sync.RWMutex
	session *discordgo.Session
}

// New constructs a Discord channel. It does not open a session until Start
// is called.
func New(config Config) *Channel {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{config: config, logger: logger.With("channel", "discord")}
}

// Configured reports whether a bot token is present.
func (c *Channel) Configured() bool {
	return strings.TrimSpace(c.config.Token) != ""
}

// Validate is unused: Discord delivers messages over its gateway websocket,
// not an inbound webhook.
func (c *Channel) Validate(raw []byte) bool {
	return false
}

// ParseInbound is unused for the same reason as Validate.
func (c *Channel) ParseInbound(raw []byte) (*gatewaycore.Message, bool) {
	return nil, false
}

// FormatWebhookResponse always returns nil: replies go through Send.
func (c *Channel) FormatWebhookResponse(text string, inbound *gatewaycore.Message) []byte {
	return nil
}

// AsyncReply reports that replies must be pushed via Send.
func (c *Channel) AsyncReply() bool {
	return true
}

// Start opens the Discord gateway session and registers a message handler
// that forwards every non-bot message to callback.
func (c *Channel) Start(ctx context.Context, callback func(*gatewaycore.Message)) error {
	session, err := discordgo.New("Bot " + c.config.Token)
	if err != nil {
		return fmt.Errorf("discord: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		msg := toGatewayMessage(m)
		if msg != nil {
			callback(msg)
		}
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	c.logger.Info("discord channel started")
	return nil
}

// Send delivers text to a Discord channel. recipientID is the Discord
// channel ID.
func (c *Channel) Send(ctx context.Context, recipientID, text string, metadata map[string]string) gatewaycore.SendResult {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return gatewaycore.SendResult{Success: false, Error: "discord: session not started"}
	}
	if r := []rune(text); len(r) > 2000 {
		text = string(r[:2000])
	}
	if _, err := session.ChannelMessageSend(recipientID, text); err != nil {
		return gatewaycore.SendResult{Success: false, Error: err.Error()}
	}
	return gatewaycore.SendResult{Success: true}
}

func toGatewayMessage(m *discordgo.MessageCreate) *gatewaycore.Message {
	if m == nil || m.Author == nil || m.Author.Bot || strings.TrimSpace(m.Content) == "" {
		return nil
	}
	return &gatewaycore.Message{
		ID:            m.ID,
		Channel:       "discord",
		SenderID:      m.Author.ID,
		SenderDisplay: m.Author.Username,
		Text:          m.Content,
		ChannelMetadata: map[string]string{
			"channel_id": m.ChannelID,
		},
	}
}

var _ gatewaycore.Channel = (*Channel)(nil)
var _ gatewaycore.AsyncReply = (*Channel)(nil)
var _ gatewaycore.LongLived = (*Channel)(nil)

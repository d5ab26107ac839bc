// Package telegram implements gatewaycore.Channel against the real Telegram
// Bot API via github.com/go-telegram/bot. It is a long-lived channel: it
// receives updates through a background long-polling connection rather than
// an inbound webhook. Webhook mode is not supported: Validate rejects every
// request and ParseInbound ignores every payload.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/conduitrun/conduit/internal/gatewaycore"
)

// Config holds the credentials and tuning knobs for the Telegram channel.
type Config struct {
	Token  string
	Logger *slog.Logger
}

// Channel implements gatewaycore.Channel and gatewaycore.LongLived for
// Telegram. Inbound updates arrive over long polling; Send uses the bot API
// directly rather than a webhook reply.
type Channel struct {
	config Config
	logger *slog.Logger

	mu  sync.RWMutex
	bot *bot.Bot
}

// New constructs a Telegram channel. It does not contact the Telegram API
// until Start is called.
func New(config Config) *Channel {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{config: config, logger: logger.With("channel", "telegram")}
}

// Configured reports whether a bot token is present.
func (c *Channel) Configured() bool {
	return strings.TrimSpace(c.config.Token) != ""
}

// Validate is unused in long-polling mode; Telegram webhooks are not
// supported, so every request is rejected.
func (c *Channel) Validate(raw []byte) bool {
	return false
}

// ParseInbound is unused in long-polling mode: inbound messages arrive via
// Start's callback instead of a webhook payload.
func (c *Channel) ParseInbound(raw []byte) (*gatewaycore.Message, bool) {
	return nil, false
}

// FormatWebhookResponse always returns nil: Telegram replies are delivered
// through Send, never inline in the webhook body.
func (c *Channel) FormatWebhookResponse(text string, inbound *gatewaycore.Message) []byte {
	return nil
}

// AsyncReply reports that replies must be pushed via Send.
func (c *Channel) AsyncReply() bool {
	return true
}

// Start opens the bot connection and begins long polling, invoking callback
// for every inbound text message. It returns once the bot is constructed;
// polling continues in the background until ctx is cancelled.
func (c *Channel) Start(ctx context.Context, callback func(*gatewaycore.Message)) error {
	opts := []bot.Option{
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			msg := toGatewayMessage(update)
			if msg != nil {
				callback(msg)
			}
		}),
	}

	b, err := bot.New(c.config.Token, opts...)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}

	c.mu.Lock()
	c.bot = b
	c.mu.Unlock()

	go b.Start(ctx)

	c.logger.Info("telegram channel started")
	return nil
}

// Send delivers text to a Telegram chat. recipientID is the chat ID;
// metadata may carry a "message_thread_id" to reply inside a forum topic.
func (c *Channel) Send(ctx context.Context, recipientID, text string, metadata map[string]string) gatewaycore.SendResult {
	c.mu.RLock()
	b := c.bot
	c.mu.RUnlock()
	if b == nil {
		return gatewaycore.SendResult{Success: false, Error: "telegram: bot not started"}
	}

	chatID, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		return gatewaycore.SendResult{Success: false, Error: fmt.Sprintf("telegram: invalid chat id %q: %v", recipientID, err)}
	}

	if r := []rune(text); len(r) > 4096 {
		text = string(r[:4096])
	}
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if raw, ok := metadata["message_thread_id"]; ok {
		if threadID, err := strconv.Atoi(raw); err == nil && threadID > 0 {
			params.MessageThreadID = threadID
		}
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		return gatewaycore.SendResult{Success: false, Error: err.Error()}
	}
	return gatewaycore.SendResult{Success: true}
}

func toGatewayMessage(update *models.Update) *gatewaycore.Message {
	if update == nil || update.Message == nil || update.Message.Text == "" {
		return nil
	}
	m := update.Message

	senderID := ""
	senderDisplay := ""
	if m.From != nil {
		senderID = strconv.FormatInt(m.From.ID, 10)
		senderDisplay = strings.TrimSpace(m.From.FirstName + " " + m.From.LastName)
	}

	meta := map[string]string{
		"chat_id": strconv.FormatInt(m.Chat.ID, 10),
	}
	if m.MessageThreadID != 0 {
		meta["message_thread_id"] = strconv.Itoa(m.MessageThreadID)
	}

	payload, _ := json.Marshal(m)

	return &gatewaycore.Message{
		ID:              strconv.Itoa(m.ID),
		Channel:         "telegram",
		SenderID:        senderID,
		SenderDisplay:   senderDisplay,
		Text:            m.Text,
		ChannelMetadata: meta,
		RawPayload:      payload,
	}
}

var _ gatewaycore.Channel = (*Channel)(nil)
var _ gatewaycore.AsyncReply = (*Channel)(nil)
var _ gatewaycore.LongLived = (*Channel)(nil)

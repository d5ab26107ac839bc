package gatewaycore

import "context"

// SendResult reports the outcome of an outbound send.
type SendResult struct {
	Success bool
	Error   string
}

// Channel is the contract every channel adapter implements: a five-method
// surface for webhook-style channels. parse_inbound must never raise for
// malformed input — adapters return (nil, false) instead.
type Channel interface {
	// Validate checks a raw inbound request's signature or shared secret.
	Validate(raw []byte) bool

	// ParseInbound normalizes raw into a Message. It returns (nil, false)
	// when the payload should be silently ignored: verification challenges,
	// echoes of the bot's own messages, non-text message types, or senders
	// not on an allow-list.
	ParseInbound(raw []byte) (*Message, bool)

	// Send delivers text to recipientID, with optional channel-specific
	// metadata (echoed from an inbound message's ChannelMetadata, when
	// replying to one). Long texts are truncated to the platform's limit by
	// the adapter itself.
	Send(ctx context.Context, recipientID, text string, metadata map[string]string) SendResult

	// FormatWebhookResponse builds the synchronous HTTP reply body for
	// channels that accept one inline (TwiML, WebChat JSON). Channels that
	// require an async Send return nil.
	FormatWebhookResponse(text string, inbound *Message) []byte

	// Configured reports whether this channel's required credentials are
	// present.
	Configured() bool
}

// AsyncReply marks channels that, in addition to any synchronous webhook
// response, must also receive an explicit Send call with the reply text.
type AsyncReply interface {
	AsyncReply() bool
}

// LongLived is implemented by channels that run a background connection
// (WebSocket bots, IRC) instead of receiving webhooks. Start returns once
// the connection is established; callback is invoked for each inbound
// message the connection receives.
type LongLived interface {
	Start(ctx context.Context, callback func(*Message)) error
}

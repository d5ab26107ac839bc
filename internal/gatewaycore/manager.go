package gatewaycore

import (
	"context"
	"fmt"
	"log/slog"
)

// Agent is the minimal surface the gateway needs from an agent instance.
type Agent interface {
	Chat(ctx context.Context, text string) (string, error)
}

// AgentPool resolves an agent instance for a (name, sender) key.
type AgentPool interface {
	Get(name, sender string) (Agent, error)
}

// MessageRouter selects an agent name for an inbound message. Implementations
// wrap the pure router in front of a multi-agent configuration.
type MessageRouter interface {
	Route(channel, senderID, text string) string
}

// InboundResult is the outcome of processing one inbound webhook request.
type InboundResult struct {
	Success         bool
	Skipped         bool
	Error           string
	ResponseText    string
	WebhookResponse []byte
}

// Manager dispatches inbound requests to agents and delivers proactive
// outbound messages. It is the aggregate referred to as "the gateway".
type Manager struct {
	channels     map[string]Channel
	pool         AgentPool
	router       MessageRouter
	defaultAgent string
	logger       *slog.Logger
}

// New builds a Manager. router may be nil, in which case every inbound
// message is dispatched to defaultAgent.
func New(pool AgentPool, router MessageRouter, defaultAgent string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default().With("component", "gatewaycore")
	}
	return &Manager{
		channels:     make(map[string]Channel),
		pool:         pool,
		router:       router,
		defaultAgent: defaultAgent,
		logger:       logger,
	}
}

// Register installs a channel under tag (e.g. "telegram", "slack").
func (m *Manager) Register(tag string, channel Channel) {
	m.channels[tag] = channel
}

// Channel returns the channel registered under tag, if any.
func (m *Manager) Channel(tag string) (Channel, bool) {
	ch, ok := m.channels[tag]
	return ch, ok
}

// StartLongLived starts the background connection for every registered
// channel that implements LongLived, feeding each inbound message through
// the same path a webhook request would take.
func (m *Manager) StartLongLived(ctx context.Context) error {
	for tag, channel := range m.channels {
		longLived, ok := channel.(LongLived)
		if !ok {
			continue
		}
		tag := tag
		if err := longLived.Start(ctx, func(msg *Message) {
			m.dispatch(ctx, tag, channel, msg)
		}); err != nil {
			return fmt.Errorf("start channel %q: %w", tag, err)
		}
	}
	return nil
}

// ProcessInbound runs the full webhook dispatch flow: lookup, validate,
// parse, route, invoke the agent, and build the synchronous reply.
func (m *Manager) ProcessInbound(ctx context.Context, channelTag string, raw []byte) InboundResult {
	channel, ok := m.channels[channelTag]
	if !ok || !channel.Configured() {
		return InboundResult{Error: fmt.Sprintf("channel %q is not configured", channelTag)}
	}

	if !channel.Validate(raw) {
		return InboundResult{Error: "Invalid signature"}
	}

	msg, ok := channel.ParseInbound(raw)
	if !ok {
		return InboundResult{Skipped: true}
	}

	result := m.dispatch(ctx, channelTag, channel, msg)

	if async, ok := channel.(AsyncReply); ok && async.AsyncReply() && result.ResponseText != "" {
		if sendResult := channel.Send(ctx, msg.SenderID, result.ResponseText, msg.ChannelMetadata); !sendResult.Success {
			m.logger.Warn("async reply send failed", "channel", channelTag, "error", sendResult.Error)
		}
	}

	return result
}

// dispatch runs an already-parsed message through routing, the agent pool,
// and the tool loop. Shared by webhook and long-lived-connection channels.
func (m *Manager) dispatch(ctx context.Context, channelTag string, channel Channel, msg *Message) InboundResult {
	name := m.defaultAgent
	if m.router != nil {
		name = m.router.Route(channelTag, msg.SenderID, msg.Text)
	}

	agent, err := m.pool.Get(name, msg.SenderID)
	if err != nil {
		m.logger.Error("failed to obtain agent instance", "agent", name, "error", err)
		return InboundResult{Error: fmt.Sprintf("agent '%s' is unavailable", name)}
	}

	text, err := agent.Chat(ctx, msg.Text)
	if err != nil {
		m.logger.Warn("agent chat failed", "agent", name, "error", err)
		text = "Sorry, something went wrong while processing your message."
	}

	return InboundResult{
		Success:         true,
		ResponseText:    text,
		WebhookResponse: channel.FormatWebhookResponse(text, msg),
	}
}

// SendProactive delivers text to recipient on channelTag, used by the
// scheduler and outreach tools. It delegates directly to the channel's Send.
func (m *Manager) SendProactive(ctx context.Context, channelTag, recipient, text string, metadata map[string]string) error {
	channel, ok := m.channels[channelTag]
	if !ok || !channel.Configured() {
		return fmt.Errorf("channel %q is not configured", channelTag)
	}
	result := channel.Send(ctx, recipient, text, metadata)
	if !result.Success {
		return fmt.Errorf("send via %q failed: %s", channelTag, result.Error)
	}
	return nil
}

package gatewaycore

import (
	"context"
	"errors"
	"testing"
)

type stubChannel struct {
	configured   bool
	validResult  bool
	parsed       *Message
	parseOK      bool
	sendResult   SendResult
	sendCalls    int
	lastSendText string
	async        bool
	webhookBody  []byte
}

func (c *stubChannel) Validate(raw []byte) bool { return c.validResult }

func (c *stubChannel) ParseInbound(raw []byte) (*Message, bool) { return c.parsed, c.parseOK }

func (c *stubChannel) Send(ctx context.Context, recipientID, text string, metadata map[string]string) SendResult {
	c.sendCalls++
	c.lastSendText = text
	return c.sendResult
}

func (c *stubChannel) FormatWebhookResponse(text string, inbound *Message) []byte { return c.webhookBody }

func (c *stubChannel) Configured() bool { return c.configured }

func (c *stubChannel) AsyncReply() bool { return c.async }

type stubAgent struct {
	reply string
	err   error
}

func (a *stubAgent) Chat(ctx context.Context, text string) (string, error) { return a.reply, a.err }

type stubPool struct {
	agent    *stubAgent
	err      error
	lastName string
}

func (p *stubPool) Get(name, sender string) (Agent, error) {
	p.lastName = name
	if p.err != nil {
		return nil, p.err
	}
	return p.agent, nil
}

type stubRouter struct {
	name string
}

func (r *stubRouter) Route(channel, senderID, text string) string { return r.name }

func TestProcessInboundUnconfiguredChannel(t *testing.T) {
	m := New(&stubPool{agent: &stubAgent{}}, nil, "default", nil)
	m.Register("telegram", &stubChannel{configured: false})

	result := m.ProcessInbound(context.Background(), "telegram", []byte("{}"))
	if result.Error == "" {
		t.Fatalf("expected an error for unconfigured channel")
	}
}

func TestProcessInboundUnknownChannel(t *testing.T) {
	m := New(&stubPool{agent: &stubAgent{}}, nil, "default", nil)

	result := m.ProcessInbound(context.Background(), "nonexistent", []byte("{}"))
	if result.Error == "" {
		t.Fatalf("expected an error for unknown channel")
	}
}

func TestProcessInboundInvalidSignature(t *testing.T) {
	m := New(&stubPool{agent: &stubAgent{}}, nil, "default", nil)
	m.Register("telegram", &stubChannel{configured: true, validResult: false})

	result := m.ProcessInbound(context.Background(), "telegram", []byte("{}"))
	if result.Error != "Invalid signature" {
		t.Fatalf("Error = %q, want 'Invalid signature'", result.Error)
	}
}

func TestProcessInboundSkippedPayload(t *testing.T) {
	m := New(&stubPool{agent: &stubAgent{}}, nil, "default", nil)
	m.Register("telegram", &stubChannel{configured: true, validResult: true, parseOK: false})

	result := m.ProcessInbound(context.Background(), "telegram", []byte("{}"))
	if !result.Skipped {
		t.Fatalf("expected Skipped = true")
	}
}

func TestProcessInboundHappyPathUsesDefaultAgent(t *testing.T) {
	agent := &stubAgent{reply: "hello there"}
	channel := &stubChannel{
		configured:  true,
		validResult: true,
		parseOK:     true,
		parsed:      &Message{Channel: "telegram", SenderID: "user-1", Text: "hi"},
		webhookBody: []byte(`{"ok":true}`),
	}
	m := New(&stubPool{agent: agent}, nil, "default", nil)
	m.Register("telegram", channel)

	result := m.ProcessInbound(context.Background(), "telegram", []byte("{}"))
	if !result.Success || result.ResponseText != "hello there" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if string(result.WebhookResponse) != `{"ok":true}` {
		t.Fatalf("WebhookResponse = %q", result.WebhookResponse)
	}
	if channel.sendCalls != 0 {
		t.Fatalf("expected no Send call for a non-async channel, got %d", channel.sendCalls)
	}
}

func TestProcessInboundRoutesToNamedAgent(t *testing.T) {
	agent := &stubAgent{reply: "routed"}
	channel := &stubChannel{
		configured:  true,
		validResult: true,
		parseOK:     true,
		parsed:      &Message{Channel: "slack", SenderID: "user-2", Text: "support please"},
	}
	pool := &stubPool{agent: agent}
	m := New(pool, &stubRouter{name: "support-agent"}, "default", nil)
	m.Register("slack", channel)

	result := m.ProcessInbound(context.Background(), "slack", []byte("{}"))
	if result.ResponseText != "routed" {
		t.Fatalf("ResponseText = %q", result.ResponseText)
	}
	if pool.lastName != "support-agent" {
		t.Fatalf("pool asked for agent %q, want 'support-agent'", pool.lastName)
	}
}

func TestProcessInboundAsyncChannelAlsoSends(t *testing.T) {
	agent := &stubAgent{reply: "async reply"}
	channel := &stubChannel{
		configured:  true,
		validResult: true,
		parseOK:     true,
		parsed:      &Message{Channel: "signal", SenderID: "user-3", Text: "ping"},
		async:       true,
		sendResult:  SendResult{Success: true},
	}
	m := New(&stubPool{agent: agent}, nil, "default", nil)
	m.Register("signal", channel)

	m.ProcessInbound(context.Background(), "signal", []byte("{}"))
	if channel.sendCalls != 1 {
		t.Fatalf("expected 1 async Send call, got %d", channel.sendCalls)
	}
	if channel.lastSendText != "async reply" {
		t.Fatalf("lastSendText = %q", channel.lastSendText)
	}
}

func TestProcessInboundAgentChatErrorUsesStableText(t *testing.T) {
	agent := &stubAgent{err: errors.New("provider timeout")}
	channel := &stubChannel{
		configured:  true,
		validResult: true,
		parseOK:     true,
		parsed:      &Message{Channel: "telegram", SenderID: "user-4", Text: "hi"},
	}
	m := New(&stubPool{agent: agent}, nil, "default", nil)
	m.Register("telegram", channel)

	result := m.ProcessInbound(context.Background(), "telegram", []byte("{}"))
	if !result.Success {
		t.Fatalf("expected Success = true even when the agent call fails")
	}
	if result.ResponseText == "" {
		t.Fatalf("expected a stable fallback response text")
	}
}

func TestSendProactiveDelegatesToChannelSend(t *testing.T) {
	channel := &stubChannel{configured: true, sendResult: SendResult{Success: true}}
	m := New(&stubPool{agent: &stubAgent{}}, nil, "default", nil)
	m.Register("telegram", channel)

	if err := m.SendProactive(context.Background(), "telegram", "user-1", "reminder", nil); err != nil {
		t.Fatalf("SendProactive() error = %v", err)
	}
	if channel.sendCalls != 1 {
		t.Fatalf("expected 1 Send call, got %d", channel.sendCalls)
	}
}

func TestSendProactiveFailsForUnconfiguredChannel(t *testing.T) {
	m := New(&stubPool{agent: &stubAgent{}}, nil, "default", nil)
	m.Register("telegram", &stubChannel{configured: false})

	if err := m.SendProactive(context.Background(), "telegram", "user-1", "reminder", nil); err == nil {
		t.Fatalf("expected an error for unconfigured channel")
	}
}

package telegram

import (
	"testing"

	"github.com/go-telegram/bot/models"
)

func TestChannel_Configured(t *testing.T) {
	if (&Channel{}).Configured() {
		t.Fatal("expected unconfigured channel with empty token")
	}
	c := New(Config{Token: "123:abc"})
	if !c.Configured() {
		t.Fatal("expected configured channel with token set")
	}
}

func TestChannel_ValidateAndWebhookResponse(t *testing.T) {
	c := New(Config{Token: "123:abc"})
	if c.Validate([]byte(`{}`)) {
		t.Fatal("telegram channel does not support webhook validation")
	}
	if resp := c.FormatWebhookResponse("hi", nil); resp != nil {
		t.Fatalf("expected nil webhook response, got %q", resp)
	}
	if _, ok := c.ParseInbound([]byte(`{}`)); ok {
		t.Fatal("telegram channel does not parse inbound webhook payloads")
	}
}

func TestChannel_AsyncReply(t *testing.T) {
	c := New(Config{Token: "123:abc"})
	if !c.AsyncReply() {
		t.Fatal("expected telegram channel to require async reply")
	}
}

func TestToGatewayMessage(t *testing.T) {
	update := &models.Update{
		Message: &models.Message{
			ID:   42,
			Text: "hello",
			Chat: models.Chat{ID: 100},
			From: &models.User{ID: 7, FirstName: "Ada"},
		},
	}
	msg := toGatewayMessage(update)
	if msg == nil {
		t.Fatal("expected message, got nil")
	}
	if msg.Text != "hello" || msg.SenderID != "7" || msg.ChannelMetadata["chat_id"] != "100" {
		t.Fatalf("unexpected conversion: %+v", msg)
	}
}

func TestToGatewayMessage_IgnoresNonText(t *testing.T) {
	if msg := toGatewayMessage(&models.Update{Message: &models.Message{ID: 1}}); msg != nil {
		t.Fatalf("expected nil for empty text message, got %+v", msg)
	}
	if msg := toGatewayMessage(&models.Update{}); msg != nil {
		t.Fatalf("expected nil for update with no message, got %+v", msg)
	}
}

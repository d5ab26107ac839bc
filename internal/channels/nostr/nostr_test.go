package nostr

import (
	"context"
	"testing"
)

func TestChannel_NeverConfigured(t *testing.T) {
	c := New(Config{PrivateKey: "deadbeef", Relays: DefaultRelays})
	if c.Configured() {
		t.Fatal("nostr channel must report unconfigured until implemented")
	}
}

func TestChannel_SendUnimplemented(t *testing.T) {
	c := New(Config{})
	result := c.Send(context.Background(), "npub1...", "hi", nil)
	if result.Success {
		t.Fatal("expected unimplemented send to fail")
	}
}

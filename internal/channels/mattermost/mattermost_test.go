package mattermost

import (
	"context"
	"testing"
)

func TestChannel_NeverConfigured(t *testing.T) {
	c := New(Config{ServerURL: "https://mm.example.com", Token: "tok"})
	if c.Configured() {
		t.Fatal("mattermost channel must report unconfigured until implemented")
	}
}

func TestChannel_SendUnimplemented(t *testing.T) {
	c := New(Config{})
	result := c.Send(context.Background(), "channel-id", "hi", nil)
	if result.Success {
		t.Fatal("expected unimplemented send to fail")
	}
}

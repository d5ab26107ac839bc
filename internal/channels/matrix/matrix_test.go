package matrix

import (
	"context"
	"testing"
)

func TestChannel_NeverConfigured(t *testing.T) {
	c := New(Config{HomeserverURL: "https://matrix.org", UserID: "@bot:matrix.org", AccessToken: "tok"})
	if c.Configured() {
		t.Fatal("matrix channel must report unconfigured until implemented")
	}
}

func TestChannel_SendUnimplemented(t *testing.T) {
	c := New(Config{})
	result := c.Send(context.Background(), "!room:matrix.org", "hi", nil)
	if result.Success {
		t.Fatal("expected unimplemented send to fail")
	}
}

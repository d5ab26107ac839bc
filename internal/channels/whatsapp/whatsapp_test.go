package whatsapp

import (
	"context"
	"testing"
)

func TestChannel_NeverConfigured(t *testing.T) {
	c := New(Config{SessionDBPath: "/tmp/session.db"})
	if c.Configured() {
		t.Fatal("whatsapp channel must report unconfigured until implemented")
	}
}

func TestChannel_SendUnimplemented(t *testing.T) {
	c := New(Config{})
	result := c.Send(context.Background(), "1555@s.whatsapp.net", "hi", nil)
	if result.Success {
		t.Fatal("expected unimplemented send to fail")
	}
}

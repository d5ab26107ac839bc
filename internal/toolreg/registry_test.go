package toolreg

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/conduitrun/conduit/internal/convo"
)

func TestRegisterReplacesPriorEntry(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", func(json.RawMessage) (string, error) { return "v1", nil }, convo.ToolSchema{Name: "echo"})
	r.Register("echo", func(json.RawMessage) (string, error) { return "v2", nil }, convo.ToolSchema{Name: "echo"})

	if got := len(r.Schemas()); got != 1 {
		t.Fatalf("expected exactly one entry for 'echo', got %d", got)
	}
	if got := r.Dispatch("echo", nil); got != "v2" {
		t.Fatalf("expected latest registration to win, got %q", got)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry()
	got := r.Dispatch("nope", nil)
	if got != "Error: Unknown tool 'nope'" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestDispatchNeverRaisesOnHandlerError(t *testing.T) {
	r := NewRegistry()
	r.Register("boom", func(json.RawMessage) (string, error) { return "", errors.New("disk full") }, convo.ToolSchema{Name: "boom"})
	got := r.Dispatch("boom", nil)
	if got != "Tool 'boom' failed: disk full" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestDispatchNeverRaisesOnPanic(t *testing.T) {
	r := NewRegistry()
	r.Register("panics", func(json.RawMessage) (string, error) { panic("unexpected") }, convo.ToolSchema{Name: "panics"})
	got := r.Dispatch("panics", nil)
	if got == "" {
		t.Fatal("expected a stable failure string, Dispatch must never panic out")
	}
}

func TestBulkLoadGatesByFlag(t *testing.T) {
	r := NewRegistry()
	installed := map[string]bool{}
	groups := []BuiltinGroup{
		{Name: "file", Enabled: nil, Install: func(r *Registry) { installed["file"] = true }},
		{Name: "terminal", Enabled: func(f Flags) bool { return f.Terminal }, Install: func(r *Registry) { installed["terminal"] = true }},
		{Name: "web", Enabled: func(f Flags) bool { return f.Web }, Install: func(r *Registry) { installed["web"] = true }},
	}
	BulkLoad(r, Flags{Terminal: true}, groups)

	if !installed["file"] || !installed["terminal"] || installed["web"] {
		t.Fatalf("unexpected install set: %+v", installed)
	}
}

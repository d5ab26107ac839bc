package llm

import (
	"encoding/json"
	"testing"

	"github.com/conduitrun/conduit/internal/convo"
)

func TestConvertAnthropicMessagesSplitsSystemOut(t *testing.T) {
	messages := []convo.Message{
		{Role: convo.RoleSystem, Content: convo.NewText("be concise")},
		{Role: convo.RoleUser, Content: convo.NewText("hi")},
	}

	out, system := convertAnthropicMessages(messages)
	if system != "be concise" {
		t.Fatalf("system = %q, want %q", system, "be concise")
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 message after splitting out system, got %d", len(out))
	}
}

func TestConvertAnthropicMessagesToolUseAndResult(t *testing.T) {
	messages := []convo.Message{
		{Role: convo.RoleAssistant, Content: convo.NewBlocks([]convo.Block{
			{Type: convo.BlockToolUse, ID: "call-1", Name: "echo", Arguments: json.RawMessage(`{"x":1}`)},
		})},
		{Role: convo.RoleUser, Content: convo.NewBlocks([]convo.Block{
			{Type: convo.BlockToolResult, ToolUseID: "call-1", Result: "echoed"},
		})},
	}

	out, _ := convertAnthropicMessages(messages)
	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(out))
	}
}

func TestConvertAnthropicToolsCarriesNameAndDescription(t *testing.T) {
	tools := []convo.ToolSchema{
		{Name: "search", Description: "search the web", Parameters: json.RawMessage(`{"type":"object","properties":{}}`)},
	}

	out := convertAnthropicTools(tools)
	if len(out) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(out))
	}
	if out[0].OfTool.Name != "search" {
		t.Fatalf("tool name = %q, want %q", out[0].OfTool.Name, "search")
	}
}

func TestConvertAnthropicToolsMalformedSchemaDoesNotPanic(t *testing.T) {
	tools := []convo.ToolSchema{
		{Name: "broken", Parameters: json.RawMessage(`not json`)},
	}

	out := convertAnthropicTools(tools)
	if len(out) != 1 {
		t.Fatalf("expected 1 tool even with an unparsable schema, got %d", len(out))
	}
}

func TestAnthropicAdapterReportsFamilyAndCapabilities(t *testing.T) {
	adapter := NewAnthropicAdapter("test-key", "claude-test")
	if adapter.Family() != FamilyAnthropic {
		t.Fatalf("Family() = %v, want %v", adapter.Family(), FamilyAnthropic)
	}
	if !adapter.SupportsTools() || !adapter.SupportsVision() || !adapter.SupportsStreaming() {
		t.Fatalf("anthropic adapter should support tools, vision, and streaming")
	}
}

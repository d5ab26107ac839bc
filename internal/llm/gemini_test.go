package llm

import (
	"encoding/json"
	"testing"

	"google.golang.org/genai"

	"github.com/conduitrun/conduit/internal/convo"
)

func TestConvertGeminiMessagesMapsAssistantToModelRole(t *testing.T) {
	messages := []convo.Message{
		{Role: convo.RoleSystem, Content: convo.NewText("be terse")},
		{Role: convo.RoleUser, Content: convo.NewText("hi")},
		{Role: convo.RoleAssistant, Content: convo.NewText("hello")},
	}

	out, system := convertGeminiMessages(messages)
	if system != "be terse" {
		t.Fatalf("system = %q, want %q", system, "be terse")
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 contents after splitting out system, got %d", len(out))
	}
	if out[1].Role != genai.RoleModel {
		t.Fatalf("assistant role = %q, want %q", out[1].Role, genai.RoleModel)
	}
}

func TestConvertGeminiToolsCarriesSchema(t *testing.T) {
	tools := []convo.ToolSchema{
		{Name: "search", Description: "search the web", Parameters: json.RawMessage(`{"type":"object"}`)},
	}

	out := convertGeminiTools(tools)
	if len(out) != 1 {
		t.Fatalf("expected 1 function declaration, got %d", len(out))
	}
	if out[0].Name != "search" {
		t.Fatalf("Name = %q, want %q", out[0].Name, "search")
	}
}

func TestGeminiToLLMResponseConcatenatesTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "hello "},
						{Text: "world"},
					},
				},
			},
		},
	}

	out := geminiToLLMResponse(resp)
	if out.Text != "hello world" {
		t.Fatalf("Text = %q, want %q", out.Text, "hello world")
	}
}

func TestGeminiToLLMResponseNoCandidatesReturnsEmpty(t *testing.T) {
	out := geminiToLLMResponse(&genai.GenerateContentResponse{})
	if out.Text != "" || len(out.ToolCalls) != 0 {
		t.Fatalf("expected an empty response for no candidates, got %+v", out)
	}
}

func TestGeminiToLLMResponseCollectsFunctionCall(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{FunctionCall: &genai.FunctionCall{Name: "search", Args: map[string]any{"q": "go"}}},
					},
				},
			},
		},
	}

	out := geminiToLLMResponse(resp)
	if len(out.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(out.ToolCalls))
	}
	if out.ToolCalls[0].Name != "search" {
		t.Fatalf("Name = %q, want %q", out.ToolCalls[0].Name, "search")
	}
}

func TestGeminiAdapterReportsFamily(t *testing.T) {
	adapter := &GeminiAdapter{model: "gemini-test"}
	if adapter.Family() != FamilyGemini {
		t.Fatalf("Family() = %v, want %v", adapter.Family(), FamilyGemini)
	}
	if adapter.Name() != "gemini" {
		t.Fatalf("Name() = %q, want %q", adapter.Name(), "gemini")
	}
}

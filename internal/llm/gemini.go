package llm

import (
	"context"
	"encoding/json"

	"google.golang.org/genai"

	"github.com/conduitrun/conduit/internal/convo"
)

// GeminiAdapter implements Provider for Google's Gemini API: a separate
// system_instruction field, a FunctionDeclaration list for tools, and
// chunked candidates with parts while streaming.
type GeminiAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiAdapter builds an adapter against the Gemini API.
func NewGeminiAdapter(ctx context.Context, apiKey, model string) (*GeminiAdapter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: client, model: model}, nil
}

func (a *GeminiAdapter) Name() string            { return "gemini" }
func (a *GeminiAdapter) Family() Family           { return FamilyGemini }
func (a *GeminiAdapter) SupportsTools() bool      { return true }
func (a *GeminiAdapter) SupportsVision() bool     { return true }
func (a *GeminiAdapter) SupportsStreaming() bool  { return true }

func (a *GeminiAdapter) Chat(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (convo.LLMResponse, error) {
	contents, system := convertGeminiMessages(messages)
	config := a.buildConfig(system, tools, temperature, maxTokens)

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return convo.LLMResponse{}, err
	}
	return geminiToLLMResponse(resp), nil
}

func (a *GeminiAdapter) Stream(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (<-chan convo.StreamEvent, error) {
	contents, system := convertGeminiMessages(messages)
	config := a.buildConfig(system, tools, temperature, maxTokens)

	iter := a.client.Models.GenerateContentStream(ctx, a.model, contents, config)

	events := make(chan convo.StreamEvent)
	go func() {
		defer close(events)
		for resp, err := range iter {
			if err != nil {
				events <- convo.StreamEvent{Type: convo.StreamDone}
				return
			}
			normalized := geminiToLLMResponse(resp)
			if normalized.Text != "" {
				events <- convo.StreamEvent{Type: convo.StreamText, Text: normalized.Text}
			}
			if len(normalized.ToolCalls) > 0 {
				events <- convo.StreamEvent{Type: convo.StreamToolCalls, ToolCalls: normalized.ToolCalls}
			}
		}
		events <- convo.StreamEvent{Type: convo.StreamDone}
	}()
	return events, nil
}

func (a *GeminiAdapter) buildConfig(system string, tools []convo.ToolSchema, temperature float64, maxTokens int) *genai.GenerateContentConfig {
	temp := float32(temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(maxTokens),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: convertGeminiTools(tools)}}
	}
	return config
}

func convertGeminiMessages(messages []convo.Message) ([]*genai.Content, string) {
	var system string
	var out []*genai.Content

	for _, msg := range messages {
		if msg.Role == convo.RoleSystem {
			system = msg.Content.PlainText()
			continue
		}

		role := genai.RoleUser
		if msg.Role == convo.RoleAssistant {
			role = genai.RoleModel
		}

		var parts []*genai.Part
		if msg.Content.IsText() {
			parts = append(parts, genai.NewPartFromText(msg.Content.Text()))
		} else {
			for _, b := range msg.Content.Blocks() {
				switch b.Type {
				case convo.BlockText:
					parts = append(parts, genai.NewPartFromText(b.Text))
				case convo.BlockToolUse:
					var args map[string]any
					_ = json.Unmarshal(b.Arguments, &args)
					parts = append(parts, genai.NewPartFromFunctionCall(b.Name, args))
				case convo.BlockToolResult:
					parts = append(parts, genai.NewPartFromFunctionResponse(b.ToolUseID, map[string]any{"result": b.Result}))
				}
			}
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}
	return out, system
}

func convertGeminiTools(tools []convo.ToolSchema) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		var schema genai.Schema
		_ = json.Unmarshal(t.Parameters, &schema)
		out = append(out, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  &schema,
		})
	}
	return out
}

func geminiToLLMResponse(resp *genai.GenerateContentResponse) convo.LLMResponse {
	var out convo.LLMResponse
	if len(resp.Candidates) == 0 {
		return out
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.Text += part.Text
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			out.ToolCalls = append(out.ToolCalls, convo.ToolCall{
				Name:      part.FunctionCall.Name,
				Arguments: args,
			})
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = convo.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out
}

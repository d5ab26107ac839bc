package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/conduitrun/conduit/internal/convo"
)

// OpenAIAdapter implements Provider for OpenAI's chat completions API, and
// doubles as the base for the Azure, Copilot-proxy, and OpenRouter adapters,
// which only differ in base URL and auth header.
type OpenAIAdapter struct {
	client *openai.Client
	name   string
}

// NewOpenAIAdapter builds an adapter against the public OpenAI API.
func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{client: openai.NewClient(apiKey), name: "openai"}
}

// NewCompatibleAdapter builds an adapter against any OpenAI-compatible
// endpoint (Azure OpenAI, the Copilot proxy, OpenRouter) by overriding the
// base URL.
func NewCompatibleAdapter(name, apiKey, baseURL string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{client: openai.NewClientWithConfig(cfg), name: name}
}

func (a *OpenAIAdapter) Name() string            { return a.name }
func (a *OpenAIAdapter) Family() Family           { return FamilyOpenAI }
func (a *OpenAIAdapter) SupportsTools() bool      { return true }
func (a *OpenAIAdapter) SupportsVision() bool     { return true }
func (a *OpenAIAdapter) SupportsStreaming() bool  { return true }

func (a *OpenAIAdapter) Chat(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (convo.LLMResponse, error) {
	req, err := a.buildRequest(messages, tools, temperature, maxTokens, false)
	if err != nil {
		return convo.LLMResponse{}, err
	}
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return convo.LLMResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return convo.LLMResponse{}, errors.New("openai: empty response")
	}
	choice := resp.Choices[0]
	return convo.LLMResponse{
		Text:         choice.Message.Content,
		ToolCalls:    convertOpenAIToolCalls(choice.Message.ToolCalls),
		FinishReason: string(choice.FinishReason),
		Usage: convo.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func (a *OpenAIAdapter) Stream(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (<-chan convo.StreamEvent, error) {
	req, err := a.buildRequest(messages, tools, temperature, maxTokens, true)
	if err != nil {
		return nil, err
	}
	stream, err := a.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}

	events := make(chan convo.StreamEvent)
	go func() {
		defer close(events)
		defer stream.Close()

		pending := map[int]*convo.ToolCall{}

		for {
			chunk, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					events <- convo.StreamEvent{Type: convo.StreamToolCalls, ToolCalls: flushToolCalls(pending)}
					events <- convo.StreamEvent{Type: convo.StreamDone}
					return
				}
				events <- convo.StreamEvent{Type: convo.StreamDone}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta

			if delta.Content != "" {
				events <- convo.StreamEvent{Type: convo.StreamText, Text: delta.Content}
			}

			for _, tc := range delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				cur, ok := pending[idx]
				if !ok {
					cur = &convo.ToolCall{}
					pending[idx] = cur
				}
				if tc.ID != "" {
					cur.ID = tc.ID
				}
				if tc.Function.Name != "" {
					cur.Name = tc.Function.Name
				}
				if tc.Function.Arguments != "" {
					cur.Arguments = append(cur.Arguments, []byte(tc.Function.Arguments)...)
				}
			}

			if chunk.Choices[0].FinishReason == openai.FinishReasonToolCalls {
				events <- convo.StreamEvent{Type: convo.StreamToolCalls, ToolCalls: flushToolCalls(pending)}
				pending = map[int]*convo.ToolCall{}
			}
		}
	}()
	return events, nil
}

// flushToolCalls finalizes every pending tool call, normalizing malformed
// argument JSON to an empty object rather than failing the call.
func flushToolCalls(pending map[int]*convo.ToolCall) []convo.ToolCall {
	out := make([]convo.ToolCall, 0, len(pending))
	for _, tc := range pending {
		if tc.ID == "" || tc.Name == "" {
			continue
		}
		if !json.Valid(tc.Arguments) {
			tc.Arguments = json.RawMessage("{}")
		}
		out = append(out, *tc)
	}
	return out
}

func (a *OpenAIAdapter) buildRequest(messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int, stream bool) (openai.ChatCompletionRequest, error) {
	oaiMessages, err := convertToOpenAIMessages(messages)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	req := openai.ChatCompletionRequest{
		Messages:    oaiMessages,
		Stream:      stream,
		Temperature: float32(temperature),
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}
	if len(tools) > 0 {
		req.Tools = convertOpenAITools(tools)
	}
	return req, nil
}

func convertToOpenAIMessages(messages []convo.Message) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case convo.RoleSystem, convo.RoleUser:
			out = append(out, openai.ChatCompletionMessage{
				Role:    string(msg.Role),
				Content: msg.Content.PlainText(),
			})

		case convo.RoleAssistant:
			oaiMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
			if msg.Content.IsText() {
				oaiMsg.Content = msg.Content.Text()
			} else {
				for _, b := range msg.Content.Blocks() {
					if b.Type == convo.BlockText {
						oaiMsg.Content += b.Text
					}
					if b.Type == convo.BlockToolUse {
						oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
							ID:   b.ID,
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      b.Name,
								Arguments: string(b.Arguments),
							},
						})
					}
				}
			}
			out = append(out, oaiMsg)

		case convo.RoleTool:
			for _, b := range msg.Content.Blocks() {
				if b.Type != convo.BlockToolResult {
					continue
				}
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    b.Result,
					ToolCallID: b.ToolUseID,
				})
			}
		}
	}
	return out, nil
}

func convertOpenAITools(tools []convo.ToolSchema) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  json.RawMessage(t.Parameters),
			},
		})
	}
	return out
}

func convertOpenAIToolCalls(in []openai.ToolCall) []convo.ToolCall {
	if len(in) == 0 {
		return nil
	}
	out := make([]convo.ToolCall, 0, len(in))
	for _, tc := range in {
		args := json.RawMessage(tc.Function.Arguments)
		if !json.Valid(args) {
			args = json.RawMessage("{}")
		}
		out = append(out, convo.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	return out
}

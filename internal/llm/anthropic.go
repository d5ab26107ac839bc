package llm

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/conduitrun/conduit/internal/convo"
)

// AnthropicAdapter implements Provider for Anthropic's Messages API over a
// direct HTTPS call. There is no Bedrock adapter in this package.
type AnthropicAdapter struct {
	client anthropic.Client
	model  string
	name   string
}

// NewAnthropicAdapter builds an adapter against the direct Anthropic API.
func NewAnthropicAdapter(apiKey, model string) *AnthropicAdapter {
	return &AnthropicAdapter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		name:   "anthropic",
	}
}

func (a *AnthropicAdapter) Name() string           { return a.name }
func (a *AnthropicAdapter) Family() Family          { return FamilyAnthropic }
func (a *AnthropicAdapter) SupportsTools() bool     { return true }
func (a *AnthropicAdapter) SupportsVision() bool    { return true }
func (a *AnthropicAdapter) SupportsStreaming() bool { return true }

func (a *AnthropicAdapter) Chat(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (convo.LLMResponse, error) {
	params := a.buildParams(messages, tools, temperature, maxTokens)
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return convo.LLMResponse{}, err
	}

	var text string
	var calls []convo.ToolCall
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "tool_use":
			args := json.RawMessage(block.Input)
			if !json.Valid(args) {
				args = json.RawMessage("{}")
			}
			calls = append(calls, convo.ToolCall{ID: block.ID, Name: block.Name, Arguments: args})
		}
	}

	return convo.LLMResponse{
		Text:         text,
		ToolCalls:    calls,
		FinishReason: string(msg.StopReason),
		Usage: convo.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

func (a *AnthropicAdapter) Stream(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (<-chan convo.StreamEvent, error) {
	params := a.buildParams(messages, tools, temperature, maxTokens)
	stream := a.client.Messages.NewStreaming(ctx, params)

	events := make(chan convo.StreamEvent)
	go func() {
		defer close(events)

		var currentTool *convo.ToolCall
		var argBuf []byte

		for stream.Next() {
			event := stream.Current()
			switch event.Type {
			case "content_block_start":
				if block := event.ContentBlock; block.Type == "tool_use" {
					currentTool = &convo.ToolCall{ID: block.ID, Name: block.Name}
					argBuf = nil
				}
			case "content_block_delta":
				if event.Delta.Text != "" {
					events <- convo.StreamEvent{Type: convo.StreamText, Text: event.Delta.Text}
				}
				if event.Delta.PartialJSON != "" && currentTool != nil {
					argBuf = append(argBuf, []byte(event.Delta.PartialJSON)...)
				}
			case "content_block_stop":
				if currentTool != nil {
					if !json.Valid(argBuf) {
						argBuf = []byte("{}")
					}
					currentTool.Arguments = argBuf
					events <- convo.StreamEvent{Type: convo.StreamToolCalls, ToolCalls: []convo.ToolCall{*currentTool}}
					currentTool = nil
				}
			case "message_stop":
				events <- convo.StreamEvent{Type: convo.StreamDone}
			}
		}
		if err := stream.Err(); err != nil {
			events <- convo.StreamEvent{Type: convo.StreamDone}
		}
	}()
	return events, nil
}

func (a *AnthropicAdapter) buildParams(messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
	}

	msgs, system := convertAnthropicMessages(messages)
	params.Messages = msgs
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(tools) > 0 {
		params.Tools = convertAnthropicTools(tools)
	}
	return params
}

func convertAnthropicMessages(messages []convo.Message) ([]anthropic.MessageParam, string) {
	var system string
	var out []anthropic.MessageParam

	for _, msg := range messages {
		if msg.Role == convo.RoleSystem {
			system = msg.Content.PlainText()
			continue
		}

		var blocks []anthropic.ContentBlockParamUnion
		if msg.Content.IsText() {
			blocks = append(blocks, anthropic.NewTextBlock(msg.Content.Text()))
		} else {
			for _, b := range msg.Content.Blocks() {
				switch b.Type {
				case convo.BlockText:
					blocks = append(blocks, anthropic.NewTextBlock(b.Text))
				case convo.BlockToolUse:
					var args any
					_ = json.Unmarshal(b.Arguments, &args)
					blocks = append(blocks, anthropic.NewToolUseBlock(b.ID, args, b.Name))
				case convo.BlockToolResult:
					blocks = append(blocks, anthropic.NewToolResultBlock(b.ToolUseID, b.Result, false))
				}
			}
		}

		if msg.Role == convo.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out, system
}

func convertAnthropicTools(tools []convo.ToolSchema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema anthropic.ToolInputSchemaParam
		_ = json.Unmarshal(t.Parameters, &schema)
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: schema,
			},
		})
	}
	return out
}

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/conduitrun/conduit/internal/convo"
)

// OllamaAdapter implements Provider against a local Ollama server: inline
// role:system messages, tool schemas sent as function wrappers, and
// line-delimited JSON objects for streaming.
type OllamaAdapter struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaAdapter builds an adapter against baseURL (e.g.
// "http://localhost:11434").
func NewOllamaAdapter(baseURL, model string) *OllamaAdapter {
	return &OllamaAdapter{baseURL: baseURL, model: model, client: http.DefaultClient}
}

func (a *OllamaAdapter) Name() string            { return "ollama" }
func (a *OllamaAdapter) Family() Family           { return FamilyOllama }
func (a *OllamaAdapter) SupportsTools() bool      { return true }
func (a *OllamaAdapter) SupportsVision() bool     { return false }
func (a *OllamaAdapter) SupportsStreaming() bool  { return true }

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaToolCall struct {
	Function ollamaFunctionCall `json:"function"`
}

type ollamaFunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type ollamaTool struct {
	Type     string         `json:"type"`
	Function ollamaFunction `json:"function"`
}

type ollamaFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type ollamaRequest struct {
	Model    string           `json:"model"`
	Messages []ollamaMessage  `json:"messages"`
	Tools    []ollamaTool     `json:"tools,omitempty"`
	Stream   bool             `json:"stream"`
	Options  ollamaOptions    `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (a *OllamaAdapter) Chat(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (convo.LLMResponse, error) {
	if ContainsImage(messages) {
		return convo.LLMResponse{}, ErrImagesUnsupported
	}
	req := a.buildRequest(messages, tools, temperature, false)

	body, err := json.Marshal(req)
	if err != nil {
		return convo.LLMResponse{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return convo.LLMResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return convo.LLMResponse{}, err
	}
	defer resp.Body.Close()

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return convo.LLMResponse{}, err
	}

	return convo.LLMResponse{
		Text:      out.Message.Content,
		ToolCalls: convertOllamaToolCalls(out.Message.ToolCalls),
	}, nil
}

func (a *OllamaAdapter) Stream(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (<-chan convo.StreamEvent, error) {
	if ContainsImage(messages) {
		return nil, ErrImagesUnsupported
	}
	req := a.buildRequest(messages, tools, temperature, true)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, err
	}

	events := make(chan convo.StreamEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var chunk ollamaResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Message.Content != "" {
				events <- convo.StreamEvent{Type: convo.StreamText, Text: chunk.Message.Content}
			}
			if len(chunk.Message.ToolCalls) > 0 {
				events <- convo.StreamEvent{Type: convo.StreamToolCalls, ToolCalls: convertOllamaToolCalls(chunk.Message.ToolCalls)}
			}
			if chunk.Done {
				events <- convo.StreamEvent{Type: convo.StreamDone}
				return
			}
		}
		events <- convo.StreamEvent{Type: convo.StreamDone}
	}()
	return events, nil
}

func (a *OllamaAdapter) buildRequest(messages []convo.Message, tools []convo.ToolSchema, temperature float64, stream bool) ollamaRequest {
	out := make([]ollamaMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case convo.RoleSystem, convo.RoleUser:
			out = append(out, ollamaMessage{Role: string(msg.Role), Content: msg.Content.PlainText()})
		case convo.RoleAssistant:
			m := ollamaMessage{Role: "assistant"}
			if msg.Content.IsText() {
				m.Content = msg.Content.Text()
			} else {
				for _, b := range msg.Content.Blocks() {
					if b.Type == convo.BlockText {
						m.Content += b.Text
					}
					if b.Type == convo.BlockToolUse {
						m.ToolCalls = append(m.ToolCalls, ollamaToolCall{
							Function: ollamaFunctionCall{Name: b.Name, Arguments: b.Arguments},
						})
					}
				}
			}
			out = append(out, m)
		case convo.RoleTool:
			for _, b := range msg.Content.Blocks() {
				if b.Type == convo.BlockToolResult {
					out = append(out, ollamaMessage{Role: "tool", Content: b.Result})
				}
			}
		}
	}

	var wireTools []ollamaTool
	for _, t := range tools {
		wireTools = append(wireTools, ollamaTool{
			Type: "function",
			Function: ollamaFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	return ollamaRequest{
		Model:    a.model,
		Messages: out,
		Tools:    wireTools,
		Stream:   stream,
		Options:  ollamaOptions{Temperature: temperature},
	}
}

func convertOllamaToolCalls(in []ollamaToolCall) []convo.ToolCall {
	if len(in) == 0 {
		return nil
	}
	out := make([]convo.ToolCall, 0, len(in))
	for i, tc := range in {
		args := tc.Function.Arguments
		if !json.Valid(args) {
			args = json.RawMessage("{}")
		}
		out = append(out, convo.ToolCall{ID: fmt.Sprintf("ollama-%d", i), Name: tc.Function.Name, Arguments: args})
	}
	return out
}

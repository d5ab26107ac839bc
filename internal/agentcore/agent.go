// Package agentcore implements the bounded tool-calling loop: build a
// working message list from the system prompt and history, call the
// provider, dispatch any tool calls through the registry, and repeat until
// the model stops calling tools or the iteration cap is reached.
package agentcore

import (
	"context"
	"strings"
	"time"

	"github.com/conduitrun/conduit/internal/compactor"
	"github.com/conduitrun/conduit/internal/convo"
	"github.com/conduitrun/conduit/internal/llm"
	"github.com/conduitrun/conduit/internal/toolreg"
)

// MaxIterations bounds the number of tool-call round-trips in a single chat.
const MaxIterations = 10

// fallbackText is committed when the iteration cap is reached without a
// final, tool-free assistant turn.
const fallbackText = "I wasn't able to complete this within the allotted number of steps."

// Agent ties a provider, tool registry, compactor, and persistent history
// together into the bounded tool-calling loop.
type Agent struct {
	Provider    llm.Provider
	Model       string
	Registry    *toolreg.Registry
	Compactor   *compactor.Compactor
	Personality convo.Personality
	Temperature float64
	MaxTokens   int
	Metrics     *Metrics

	history []convo.Message
}

// New builds an Agent. Metrics may be nil.
func New(provider llm.Provider, model string, registry *toolreg.Registry, comp *compactor.Compactor, personality convo.Personality, metrics *Metrics) *Agent {
	return &Agent{
		Provider:    provider,
		Model:       model,
		Registry:    registry,
		Compactor:   comp,
		Personality: personality,
		Temperature: 0.7,
		MaxTokens:   4096,
		Metrics:     metrics,
	}
}

// History returns the persisted conversation turns (user messages and
// committed final assistant texts only — no interior tool-use/tool-result
// pairs, per the replay-safety rule the compactor relies on).
func (a *Agent) History() []convo.Message {
	return a.history
}

// Chat appends a user turn, runs the bounded loop to completion, and
// returns the final assistant text.
func (a *Agent) Chat(ctx context.Context, userText string) (string, error) {
	a.history = append(a.history, convo.Message{Role: convo.RoleUser, Content: convo.NewText(userText)})

	working := a.buildWorking()
	final, err := a.run(ctx, working)
	if err != nil {
		return "", err
	}

	a.history = append(a.history, convo.Message{Role: convo.RoleAssistant, Content: convo.NewText(final)})
	a.history = a.Compactor.Compact(ctx, a.history)
	return final, nil
}

// Stream appends a user turn and runs the tool loop, streaming each provider
// call token by token when the provider supports streaming; turns that end
// in tool calls are streamed too, not only the tool-free final turn. The last
// permitted iteration, and every iteration for a provider without streaming,
// uses the blocking call and emits its text as one event.
func (a *Agent) Stream(ctx context.Context, userText string) (<-chan convo.StreamEvent, error) {
	a.history = append(a.history, convo.Message{Role: convo.RoleUser, Content: convo.NewText(userText)})
	working := a.buildWorking()

	events := make(chan convo.StreamEvent)
	go func() {
		defer close(events)

		for iteration := 0; iteration < MaxIterations; iteration++ {
			if iteration == MaxIterations-1 || !a.Provider.SupportsStreaming() {
				final, err := a.runNonStreaming(ctx, working)
				if err != nil {
					return
				}
				events <- convo.StreamEvent{Type: convo.StreamText, Text: final}
				events <- convo.StreamEvent{Type: convo.StreamDone}
				a.commitFinal(ctx, final)
				return
			}

			resp, text, toolCalls, err := a.streamOnce(ctx, working, events)
			if err != nil {
				return
			}
			if len(toolCalls) == 0 {
				a.commitFinal(ctx, text)
				return
			}

			working = a.appendToolRound(working, resp, toolCalls)
		}
	}()
	return events, nil
}

func (a *Agent) commitFinal(ctx context.Context, final string) {
	a.history = append(a.history, convo.Message{Role: convo.RoleAssistant, Content: convo.NewText(final)})
	a.history = a.Compactor.Compact(ctx, a.history)
}

// streamOnce runs a single streaming provider call, forwarding text deltas
// and accumulating any "late" tool calls the stream produced.
func (a *Agent) streamOnce(ctx context.Context, working []convo.Message, events chan<- convo.StreamEvent) (convo.LLMResponse, string, []convo.ToolCall, error) {
	stream, err := a.Provider.Stream(ctx, working, a.Registry.Schemas(), a.Temperature, a.MaxTokens)
	if err != nil {
		return convo.LLMResponse{}, "", nil, err
	}

	var text string
	var toolCalls []convo.ToolCall
	for event := range stream {
		switch event.Type {
		case convo.StreamText:
			text += event.Text
			events <- event
		case convo.StreamToolCalls:
			toolCalls = append(toolCalls, event.ToolCalls...)
		}
	}
	return convo.LLMResponse{Text: text, ToolCalls: toolCalls}, text, toolCalls, nil
}

func (a *Agent) runNonStreaming(ctx context.Context, working []convo.Message) (string, error) {
	return a.run(ctx, working)
}

// run executes the bounded tool-calling loop to completion and returns the
// final assistant text.
func (a *Agent) run(ctx context.Context, working []convo.Message) (string, error) {
	var lastText string

	for iteration := 0; iteration < MaxIterations; iteration++ {
		resp, err := a.callProvider(ctx, working)
		if err != nil {
			return "", err
		}
		lastText = resp.Text

		if len(resp.ToolCalls) == 0 {
			return resp.Text, nil
		}

		working = a.appendToolRound(working, resp, resp.ToolCalls)
	}

	if lastText != "" {
		return lastText, nil
	}
	return fallbackText, nil
}

func (a *Agent) callProvider(ctx context.Context, working []convo.Message) (convo.LLMResponse, error) {
	start := time.Now()
	resp, err := a.Provider.Chat(ctx, working, a.Registry.Schemas(), a.Temperature, a.MaxTokens)
	if a.Metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		a.Metrics.LLMRequestDuration.WithLabelValues(a.Provider.Name(), a.Model).Observe(time.Since(start).Seconds())
		a.Metrics.LLMRequestCounter.WithLabelValues(a.Provider.Name(), a.Model, status).Inc()
		if err == nil {
			a.Metrics.LLMTokensUsed.WithLabelValues(a.Provider.Name(), a.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
			a.Metrics.LLMTokensUsed.WithLabelValues(a.Provider.Name(), a.Model, "completion").Add(float64(resp.Usage.CompletionTokens))
		}
	}
	return resp, err
}

// appendToolRound appends a provider-shaped assistant-with-tool-calls
// message, dispatches every call through the registry in order, and
// appends each provider-shaped tool-result message.
func (a *Agent) appendToolRound(working []convo.Message, resp convo.LLMResponse, toolCalls []convo.ToolCall) []convo.Message {
	blocks := make([]convo.Block, 0, len(toolCalls)+1)
	if resp.Text != "" {
		blocks = append(blocks, convo.Block{Type: convo.BlockText, Text: resp.Text})
	}
	for _, tc := range toolCalls {
		blocks = append(blocks, convo.Block{Type: convo.BlockToolUse, ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
	}
	working = append(working, convo.Message{Role: convo.RoleAssistant, Content: convo.NewBlocks(blocks)})

	for _, tc := range toolCalls {
		result := a.dispatchTool(tc)
		working = append(working, convo.Message{
			Role:    convo.RoleTool,
			Content: convo.NewBlocks([]convo.Block{{Type: convo.BlockToolResult, ToolUseID: tc.ID, Result: result}}),
		})
	}
	return working
}

func (a *Agent) dispatchTool(tc convo.ToolCall) string {
	start := time.Now()
	result := a.Registry.Dispatch(tc.Name, tc.Arguments)
	if a.Metrics != nil {
		status := "success"
		if strings.HasPrefix(result, "Error:") || strings.Contains(result, "failed:") {
			status = "error"
		}
		a.Metrics.ToolExecutionDuration.WithLabelValues(tc.Name).Observe(time.Since(start).Seconds())
		a.Metrics.ToolExecutionCounter.WithLabelValues(tc.Name, status).Inc()
	}
	return result
}

// buildWorking rebuilds the working message list from scratch: the current
// system prompt followed by persisted history. It is never mutated across
// calls, so skill injection and triggered guides are always reflected.
func (a *Agent) buildWorking() []convo.Message {
	working := make([]convo.Message, 0, len(a.history)+1)
	working = append(working, convo.Message{Role: convo.RoleSystem, Content: convo.NewText(a.Personality.Render())})
	working = append(working, a.history...)
	return working
}

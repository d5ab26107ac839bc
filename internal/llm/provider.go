// Package llm defines the provider adapter contract and the four adapter
// families it normalizes: OpenAI-style, Anthropic-style, Gemini-style, and
// local/Ollama. Tool-message formatting differs per family; the agent core
// asks the adapter for its Family rather than switching on a concrete type,
// per the tagged-sum reshaping the runtime requires.
package llm

import (
	"context"
	"errors"

	"github.com/conduitrun/conduit/internal/convo"
)

// ErrImagesUnsupported is the stable error an adapter returns when asked to
// send a message containing image blocks to a provider that cannot accept
// them.
var ErrImagesUnsupported = errors.New("llm: provider does not support image content")

// ContainsImage reports whether any message carries an image block.
func ContainsImage(messages []convo.Message) bool {
	for _, msg := range messages {
		for _, b := range msg.Content.Blocks() {
			if b.Type == convo.BlockImage {
				return true
			}
		}
	}
	return false
}

// Family tags which of the four adapter shapes a Provider belongs to.
type Family string

const (
	// FamilyOpenAI: inline role:system message, {type:function,function:{…}}
	// tool wire format, chunked deltas per field. Covers OpenAI, Azure
	// OpenAI, the Copilot proxy, and OpenRouter.
	FamilyOpenAI Family = "openai"

	// FamilyAnthropic: separate top-level system field, content-block
	// tool_use/tool_result, content_block_start/delta/stop streaming.
	// Covers Anthropic direct.
	FamilyAnthropic Family = "anthropic"

	// FamilyGemini: separate system_instruction field, FunctionDeclaration
	// list, chunked candidates with parts.
	FamilyGemini Family = "gemini"

	// FamilyOllama: inline role:system, function schemas as wrappers,
	// line-delimited JSON streaming.
	FamilyOllama Family = "ollama"
)

// Provider is the contract every language-model adapter implements.
type Provider interface {
	// Name identifies the configured provider (e.g. "openai", "anthropic").
	Name() string

	// Family reports the wire-format family this adapter belongs to, so the
	// agent core can pick the right message-shaping rule without peeking at
	// a concrete type.
	Family() Family

	SupportsTools() bool
	SupportsVision() bool
	SupportsStreaming() bool

	// Chat performs one blocking completion call.
	Chat(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (convo.LLMResponse, error)

	// Stream performs one completion call, delivering StreamEvents as they
	// arrive. The returned channel is closed after a StreamDone event or an
	// error. Tool-call argument accumulation across deltas is the adapter's
	// responsibility; malformed argument JSON at the finish boundary
	// surfaces as an empty arguments object rather than failing the call.
	Stream(ctx context.Context, messages []convo.Message, tools []convo.ToolSchema, temperature float64, maxTokens int) (<-chan convo.StreamEvent, error)
}

// Summarizer adapts any Provider to the compactor.Summarizer interface using
// a fixed low-temperature, system-less summarization call.
type Summarizer struct {
	Provider Provider
}

// Summarize implements compactor.Summarizer.
func (s Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	messages := []convo.Message{
		{Role: convo.RoleSystem, Content: convo.NewText("You are a conversation summarizer. Be concise and accurate.")},
		{Role: convo.RoleUser, Content: convo.NewText(summarizationPrompt(transcript))},
	}
	resp, err := s.Provider.Chat(ctx, messages, nil, 0.3, 2048)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func summarizationPrompt(transcript string) string {
	return "Summarize the following conversation history into a concise digest.\n\n" +
		"PRESERVE:\n" +
		"- Key facts and data mentioned\n" +
		"- Decisions made and their reasoning\n" +
		"- File paths, URLs, commands used\n" +
		"- Errors encountered and their resolutions\n" +
		"- User preferences expressed\n" +
		"- Task progress and status\n\n" +
		"FORMAT:\n" +
		"- Use bullet points\n" +
		"- Group by topic/task\n" +
		"- Be concise but don't lose critical details\n\n" +
		"CONVERSATION TO SUMMARIZE:\n" + transcript
}

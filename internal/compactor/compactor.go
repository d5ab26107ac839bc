// Package compactor summarizes old conversation history to stay under a
// model's context window, without ever severing a tool_use/tool_result
// pair. The split/backward-walk/render/summarize algorithm is grounded on
// the source system's ContextCompactor.compact.
package compactor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/conduitrun/conduit/internal/convo"
)

// SummaryPrefix marks a message as a compaction digest, so the summarizer
// never re-summarizes its own output.
const SummaryPrefix = "[Summary of earlier conversation]"

const defaultContextWindow = 128_000

// modelContextWindows is a built-in table of known context windows, keyed by
// model name. Longest-prefix match is used when the exact name is absent.
var modelContextWindows = map[string]int{
	"gpt-4o":      128_000,
	"gpt-4o-mini": 128_000,
	"gpt-4-turbo": 128_000,
	"gpt-4":       8_192,
	"o1":          200_000,
	"o1-mini":     128_000,
	"o3":          200_000,
	"o3-mini":     128_000,

	"claude-sonnet-4-5": 200_000,
	"claude-opus-4-5":   200_000,
	"claude-3-5-sonnet": 200_000,
	"claude-3-5-haiku":  200_000,

	"gemini-2.5-flash": 1_048_576,
	"gemini-2.5-pro":   1_048_576,
	"gemini-2.0-flash": 1_048_576,

	"llama3.1":  128_000,
	"llama3.2":  128_000,
	"mistral":   32_000,
	"mixtral":   32_000,
	"codellama": 16_000,
	"phi3":      128_000,
	"qwen2":     32_000,
}

// Config parameterizes a Compactor.
type Config struct {
	Threshold            float64 // compact when estimated tokens exceed Threshold * window, (0,1]
	KeepRecent           int     // always keep the last N messages uncompacted
	ModelName            string
	ContextWindowOverride int // 0 = auto-detect from ModelName
}

// Summarizer performs the dedicated low-temperature provider call that turns
// a rendered transcript into a bullet-point digest. Implemented by the
// provider adapter layer; returns an error if the call fails.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Compactor manages conversation history compaction via LLM summarization.
type Compactor struct {
	summarizer    Summarizer
	config        Config
	contextWindow int
}

// New builds a Compactor, resolving the effective context window immediately.
func New(summarizer Summarizer, config Config) *Compactor {
	return &Compactor{
		summarizer:    summarizer,
		config:        config,
		contextWindow: resolveContextWindow(config),
	}
}

func resolveContextWindow(config Config) int {
	if config.ContextWindowOverride > 0 {
		return config.ContextWindowOverride
	}
	if w, ok := modelContextWindows[config.ModelName]; ok {
		return w
	}
	best, bestLen := defaultContextWindow, 0
	for prefix, w := range modelContextWindows {
		if strings.HasPrefix(config.ModelName, prefix) && len(prefix) > bestLen {
			best, bestLen = w, len(prefix)
		}
	}
	return best
}

// EstimateTokens approximates token usage as characters/4, treating each
// image block as a fixed ~1000-token cost and adding a small per-message
// framing overhead. This is a budget heuristic, not an accountant.
func EstimateTokens(history []convo.Message) int {
	total := 0
	for _, msg := range history {
		if msg.Content.IsText() {
			total += len(msg.Content.Text())
		} else {
			for _, b := range msg.Content.Blocks() {
				switch b.Type {
				case convo.BlockText:
					total += len(b.Text)
				case convo.BlockToolResult:
					total += len(b.Result)
				case convo.BlockImage:
					total += 4000
				}
			}
		}
		total += len(msg.Role) + 4
	}
	return total / 4
}

// NeedsCompaction reports whether history should be compacted under config.
func (c *Compactor) NeedsCompaction(history []convo.Message) bool {
	if len(history) <= c.config.KeepRecent {
		return false
	}
	estimated := EstimateTokens(history)
	threshold := int(float64(c.contextWindow) * c.config.Threshold)
	return estimated > threshold
}

// Compact summarizes older messages in history, returning a new slice with a
// summary message prepended to the preserved recent tail. If compaction is
// not needed, history is returned unchanged. If summarization fails, the
// recent-only tail is returned and a warning is logged.
func (c *Compactor) Compact(ctx context.Context, history []convo.Message) []convo.Message {
	if !c.NeedsCompaction(history) {
		return history
	}

	split := len(history) - c.config.KeepRecent
	split = safeSplitPoint(history, split)
	if split <= 0 {
		return history
	}

	old := history[:split]
	recent := history[split:]

	transcript := formatForSummary(old)
	summary, err := c.summarizer.Summarize(ctx, transcript)
	if err != nil || summary == "" {
		slog.Warn("compaction summary failed; keeping recent messages only", "error", err)
		return recent
	}
	if !strings.HasPrefix(summary, SummaryPrefix) {
		summary = SummaryPrefix + "\n" + summary
	}

	out := make([]convo.Message, 0, 1+len(recent))
	out = append(out, convo.Message{Role: convo.RoleUser, Content: convo.NewText(summary)})
	out = append(out, recent...)
	return out
}

// safeSplitPoint walks idx backwards while the message there is an assistant
// message carrying tool calls, or a tool-result message — so the split never
// severs a tool_use/tool_result pair or stranded a result without its call.
func safeSplitPoint(history []convo.Message, idx int) int {
	for idx > 0 {
		msg := history[idx]
		if msg.IsAssistantWithToolCalls() {
			idx--
			continue
		}
		if msg.IsToolResult() {
			idx--
			continue
		}
		break
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// formatForSummary renders messages into readable transcript text for the
// summarization call: prior summaries get an explicit marker so the model
// never re-summarizes its own digest, tool_use blocks render as
// "[called <tool>]" stubs, and tool_result content is truncated.
func formatForSummary(messages []convo.Message) string {
	var lines []string
	for _, msg := range messages {
		role := strings.ToUpper(string(msg.Role))

		if msg.Content.IsText() {
			text := msg.Content.Text()
			if strings.HasPrefix(text, SummaryPrefix) {
				lines = append(lines, "[PREVIOUS SUMMARY]\n"+text+"\n")
				continue
			}
			display := text
			if len(display) > 2000 {
				display = display[:2000] + "..."
			}
			lines = append(lines, role+": "+display)
			continue
		}

		var parts []string
		for _, b := range msg.Content.Blocks() {
			switch b.Type {
			case convo.BlockText:
				parts = append(parts, b.Text)
			case convo.BlockToolUse:
				parts = append(parts, "[called "+b.Name+"]")
			case convo.BlockToolResult:
				result := b.Result
				if len(result) > 500 {
					result = result[:500]
				}
				parts = append(parts, "[result: "+result+"]")
			}
		}
		if len(parts) > 0 {
			lines = append(lines, role+": "+strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}

package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/avatarops-ai/avatarops/pkg/types"
)

type SummarizerConfig struct {
	Model string `toml:"model"`
	// MaxTranscriptTokens bounds the transcript handed to the completion
	// service. Oldest messages are dropped first.
	MaxTranscriptTokens int `toml:"max_transcript_tokens"`
	// Timeout bounds the completion round-trip. On expiry the deterministic
	// fallback is used.
	Timeout time.Duration `toml:"timeout"`
}

func (c SummarizerConfig) withDefaults() SummarizerConfig {
	if c.Model == "" {
		c.Model = openai.GPT4oMini
	}
	if c.MaxTranscriptTokens == 0 {
		c.MaxTranscriptTokens = 6000
	}
	if c.Timeout == 0 {
		c.Timeout = 20 * time.Second
	}
	return c
}

// Summarizer turns an ordered message log into a bounded continuation
// summary. The completer is best-effort: any failure, timeout or absence
// resolves to the deterministic fallback. Summarize never returns an error.
type Summarizer struct {
	completer ChatCompleter
	cfg       SummarizerConfig
}

// NewSummarizer accepts a nil completer, which forces the fallback path.
func NewSummarizer(completer ChatCompleter, cfg SummarizerConfig) *Summarizer {
	return &Summarizer{
		completer: completer,
		cfg:       cfg.withDefaults(),
	}
}

// Summarize returns "" for an empty log without touching the completion
// service. Callers must treat "" as "use the base prompt unmodified".
func (s *Summarizer) Summarize(ctx context.Context, messages []types.Message) string {
	if len(messages) == 0 {
		return ""
	}

	if s.completer == nil {
		slog.Warn("summarizer has no completion credential, using template summary")
		return FallbackSummary(messages)
	}

	summary, err := s.complete(ctx, messages)
	if err != nil {
		slog.Error("conversation summary completion failed, using template summary",
			slog.String("error", err.Error()), slog.Int("messages", len(messages)))
		return FallbackSummary(messages)
	}
	if summary == "" {
		return FallbackSummary(messages)
	}
	return summary
}

func (s *Summarizer) complete(ctx context.Context, messages []types.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	bounded := BoundTranscript(messages, s.cfg.Model, s.cfg.MaxTranscriptTokens)

	userPrompt := fmt.Sprintf(`Please create a summary of this conversation that can be used to continue it later:

%s

Format the summary as:
%s
%s

[Your intelligent summary here - include key topics, decisions, preferences, and important context]

Continue this conversation naturally, referring to the above context when relevant.
%s`, RenderTranscript(bounded), SUMMARY_BLOCK_BEGIN, summaryHeader(messages), SUMMARY_BLOCK_END)

	resp, err := s.completer.Complete(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: PROMPT_SUMMARIZE_CONVERSATION},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

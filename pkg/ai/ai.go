package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"

	"github.com/avatarops-ai/avatarops/pkg/types"
)

// ChatCompleter is the single operation the summarizer needs from an LLM
// provider. Implemented by the openai driver, replaced with fakes in tests.
type ChatCompleter interface {
	Complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const (
	SUMMARY_BLOCK_BEGIN = "=== CONVERSATION CONTEXT ==="
	SUMMARY_BLOCK_END   = "=== END CONTEXT ==="
)

const PROMPT_SUMMARIZE_CONVERSATION = `You are a helpful assistant that creates concise conversation summaries.
Your task is to analyze the conversation and create a summary that will help continue the conversation naturally.
Focus on: key topics discussed, decisions made, user preferences, and important context.
Keep the summary under 300 words and format it clearly.`

// RenderTranscript flattens an ordered message log into "User:"/"Assistant:"
// lines for the completion request.
func RenderTranscript(messages []types.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(roleLabel(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

func roleLabel(role types.MessageRole) string {
	if role == types.MESSAGE_ROLE_ASSISTANT {
		return "Assistant"
	}
	return "User"
}

// BoundTranscript drops the oldest messages until the transcript fits within
// maxTokens for the given model. The most recent context matters most for
// continuation, so truncation is always head-first.
func BoundTranscript(messages []types.Message, model string, maxTokens int) []types.Message {
	if maxTokens <= 0 || len(messages) == 0 {
		return messages
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return messages
		}
	}

	total := 0
	counts := make([]int, len(messages))
	for i, m := range messages {
		counts[i] = len(tkm.Encode(m.Content, nil, nil)) + 4
		total += counts[i]
	}

	start := 0
	for start < len(messages)-1 && total > maxTokens {
		total -= counts[start]
		start++
	}
	return messages[start:]
}

func summaryHeader(messages []types.Message) string {
	start := messages[0].Timestamp
	end := messages[len(messages)-1].Timestamp
	durationMin := (end - start + 30_000) / 60_000

	return fmt.Sprintf("Date: %s\nDuration: %d minutes\nMessages: %d",
		formatDate(start), durationMin, len(messages))
}

func formatDate(tsMillis int64) string {
	return time.UnixMilli(tsMillis).Format("02 Jan 2006")
}

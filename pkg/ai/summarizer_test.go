package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	calls    int
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.response}},
		},
	}, nil
}

func Test_Summarize_EmptyLog(t *testing.T) {
	completer := &fakeCompleter{response: "should not be used"}
	s := NewSummarizer(completer, SummarizerConfig{})

	assert.Equal(t, "", s.Summarize(context.Background(), nil))
	assert.Equal(t, 0, completer.calls, "empty log must not reach the completion service")
}

func Test_Summarize_PrimaryPath(t *testing.T) {
	want := SUMMARY_BLOCK_BEGIN + "\nThe visitor loves jazz.\n" + SUMMARY_BLOCK_END
	completer := &fakeCompleter{response: want}
	s := NewSummarizer(completer, SummarizerConfig{})

	got := s.Summarize(context.Background(), testMessages())
	assert.Equal(t, want, got)
	assert.Equal(t, 1, completer.calls)
}

func Test_Summarize_UpstreamFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream unavailable")}
	s := NewSummarizer(completer, SummarizerConfig{})

	got := s.Summarize(context.Background(), testMessages())

	assert.NotEmpty(t, got)
	assert.Contains(t, got, SUMMARY_BLOCK_BEGIN)
	assert.Contains(t, got, SUMMARY_BLOCK_END)
}

func Test_Summarize_EmptyCompletion(t *testing.T) {
	completer := &fakeCompleter{response: ""}
	s := NewSummarizer(completer, SummarizerConfig{})

	got := s.Summarize(context.Background(), testMessages())
	assert.Contains(t, got, SUMMARY_BLOCK_BEGIN, "empty completion falls back to the template summary")
}

func Test_Summarize_NoCredential(t *testing.T) {
	s := NewSummarizer(nil, SummarizerConfig{})

	got := s.Summarize(context.Background(), testMessages())
	assert.Contains(t, got, SUMMARY_BLOCK_BEGIN)
	assert.Contains(t, got, "jazz")
}

func Test_RenderTranscript(t *testing.T) {
	rendered := RenderTranscript(testMessages())
	lines := strings.Split(rendered, "\n\n")

	assert.Equal(t, "User: I like jazz", lines[0])
	assert.Equal(t, "Assistant: Great, noted.", lines[1])
}

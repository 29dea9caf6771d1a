package srv

import (
	"log/slog"

	"github.com/avatarops-ai/avatarops/pkg/ai"
	"github.com/avatarops-ai/avatarops/pkg/ai/openai"
)

// AISrv exposes the conversation summarizer. The completion credential is
// injected here at construction time; a missing token simply pins the
// summarizer to its deterministic fallback.
type AISrv struct {
	summarizer *ai.Summarizer
}

func ApplyAI(token, endpoint string, cfg ai.SummarizerConfig) ApplyFunc {
	return func(s *Srv) {
		var completer ai.ChatCompleter
		if token != "" {
			completer = openai.New(token, endpoint)
		} else {
			slog.Warn("no completion credential configured, conversation summaries use the template fallback")
		}
		s.ai = &AISrv{
			summarizer: ai.NewSummarizer(completer, cfg),
		}
	}
}

func (s *AISrv) Summarizer() *ai.Summarizer {
	return s.summarizer
}

package ai

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/avatarops-ai/avatarops/pkg/types"
)

const (
	topicMinWordLen    = 4
	topicKeepCount     = 5
	recentContextCount = 4
	recentContextChars = 150
)

// stopWords filters filler terms out of topic extraction.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`the a an and or but in on at to for of with by from as is
		was are were been be have has had do does did will would could should may
		might must can i you he she it we they this that what which who when where
		why how all each every both few more most other some such no not only own
		same so than too very just about hello hi thanks thank please yes ok okay`) {
		stopWords[w] = struct{}{}
	}
}

var wordSplitter = regexp.MustCompile(`\W+`)

// FallbackSummary builds a deterministic, dependency-free continuation summary
// from the message log. Used whenever the completion service cannot.
func FallbackSummary(messages []types.Message) string {
	if len(messages) == 0 {
		return ""
	}

	userCount := lo.CountBy(messages, func(m types.Message) bool {
		return m.Role == types.MESSAGE_ROLE_USER
	})

	var b strings.Builder
	b.WriteString(SUMMARY_BLOCK_BEGIN)
	b.WriteString("\n")
	b.WriteString(summaryHeader(messages))
	b.WriteString(fmt.Sprintf(" (%d from user, %d from assistant)", userCount, len(messages)-userCount))
	b.WriteString("\n\nKey Topics Discussed:\n")
	for _, topic := range extractKeyTopics(messages) {
		b.WriteString("- ")
		b.WriteString(topic)
		b.WriteString("\n")
	}
	b.WriteString("\nRecent Context:\n")
	b.WriteString(recentContext(messages))
	b.WriteString("\n\nContinue this conversation naturally, referring to the above context when relevant.\n")
	b.WriteString(SUMMARY_BLOCK_END)
	return b.String()
}

// extractKeyTopics ranks content words by frequency after dropping stop words
// and short tokens. Ties break alphabetically so the output is stable.
func extractKeyTopics(messages []types.Message) []string {
	counts := make(map[string]int)
	for _, m := range messages {
		for _, word := range wordSplitter.Split(strings.ToLower(m.Content), -1) {
			if len(word) < topicMinWordLen {
				continue
			}
			if _, skip := stopWords[word]; skip {
				continue
			}
			counts[word]++
		}
	}

	if len(counts) == 0 {
		return []string{"General conversation"}
	}

	words := lo.Keys(counts)
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > topicKeepCount {
		words = words[:topicKeepCount]
	}
	return words
}

func recentContext(messages []types.Message) string {
	recent := messages
	if len(recent) > recentContextCount {
		recent = recent[len(recent)-recentContextCount:]
	}

	lines := lo.Map(recent, func(m types.Message, _ int) string {
		content := m.Content
		if runes := []rune(content); len(runes) > recentContextChars {
			content = string(runes[:recentContextChars]) + "..."
		}
		return roleLabel(m.Role) + ": " + content
	})
	return strings.Join(lines, "\n")
}
